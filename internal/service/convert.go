package service

import (
	"github.com/mmynk/splitsmart/internal/calculator"
	"github.com/mmynk/splitsmart/internal/models"
	"github.com/mmynk/splitsmart/pkg/api"
)

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	}
}

func toAPIUsers(users []*models.User) []api.User {
	out := make([]api.User, len(users))
	for i, u := range users {
		out[i] = toAPIUser(u)
	}
	return out
}

func toAPIUserRefs(refs []models.UserRef) []api.UserRef {
	out := make([]api.UserRef, len(refs))
	for i, r := range refs {
		out[i] = api.UserRef{ID: r.ID, Username: r.Username, FullName: r.FullName}
	}
	return out
}

func toAPIGroup(g *models.Group) api.Group {
	return api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
	}
}

func toAPIExpense(e *models.Expense) api.Expense {
	out := api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PaidBy:      e.PaidBy,
		PayerName:   e.PayerName,
		Amount:      e.Amount,
		Description: e.Description,
		Date:        e.Date,
		Shares:      make([]api.Share, len(e.Shares)),
	}
	if e.GroupID != nil {
		name := e.GroupName
		out.GroupName = &name
	}
	for i, sh := range e.Shares {
		out.Shares[i] = api.Share{
			ID:        sh.ID,
			UserID:    sh.UserID,
			Username:  sh.Username,
			Amount:    sh.Amount,
			IsSettled: sh.IsSettled,
		}
	}
	return out
}

func toAPIExpenses(expenses []*models.Expense) []api.Expense {
	out := make([]api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	return out
}

func toShareInputs(in []api.ShareInput) []models.ShareInput {
	if in == nil {
		return nil
	}
	out := make([]models.ShareInput, len(in))
	for i, sh := range in {
		out[i] = models.ShareInput{UserID: sh.UserID, Amount: sh.Amount}
	}
	return out
}

func toAPISettlement(s *models.Settlement, users map[int64]*models.User) api.Settlement {
	out := api.Settlement{
		ID:         s.ID,
		GroupID:    s.GroupID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount,
		Date:       s.Date,
	}
	if u, ok := users[s.FromUserID]; ok {
		out.FromUsername = u.Username
	}
	if u, ok := users[s.ToUserID]; ok {
		out.ToUsername = u.Username
	}
	return out
}

func toAPISheet(sheet *calculator.GroupSheet) *api.GetGroupBalancesResponse {
	out := &api.GetGroupBalancesResponse{
		Members: make([]api.MemberBalance, len(sheet.Members)),
		Debts:   make([]api.Debt, len(sheet.Debts)),
	}
	for i, m := range sheet.Members {
		out.Members[i] = api.MemberBalance{UserID: m.UserID, Username: m.Username, NetBalance: m.NetBalance}
	}
	for i, d := range sheet.Debts {
		out.Debts[i] = api.Debt{FromUserID: d.From, ToUserID: d.To, Amount: d.Amount}
	}
	return out
}
