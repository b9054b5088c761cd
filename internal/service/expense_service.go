package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsmart/internal/expense"
	"github.com/mmynk/splitsmart/internal/models"
	"github.com/mmynk/splitsmart/internal/settlement"
	"github.com/mmynk/splitsmart/pkg/api"
)

// UserLookup resolves many users at once.
type UserLookup interface {
	GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error)
}

// ExpenseService implements expenses and settlements.
type ExpenseService struct {
	engine    *expense.Engine
	processor *settlement.Processor
	users     UserLookup
}

func NewExpenseService(engine *expense.Engine, processor *settlement.Processor, users UserLookup) *ExpenseService {
	return &ExpenseService{engine: engine, processor: processor, users: users}
}

// CreateExpense records an expense paid by the caller.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	id, err := s.engine.Create(ctx, expense.CreateInput{
		GroupID:        req.Msg.GroupID,
		PayerID:        userID,
		Amount:         req.Msg.Amount,
		Description:    req.Msg.Description,
		Shares:         toShareInputs(req.Msg.Shares),
		SplitEvenly:    req.Msg.SplitEvenly,
		ParticipantIDs: req.Msg.ParticipantIDs,
	})
	if err != nil {
		return nil, toConnectError("CreateExpense", err)
	}
	return connect.NewResponse(&api.CreateExpenseResponse{ID: id}), nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.engine.GetByID(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		return nil, toConnectError("GetExpense", err)
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(e)}), nil
}

// UpdateExpense edits an expense the caller paid.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.Empty], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	err = s.engine.Update(ctx, expense.UpdateInput{
		ExpenseID:   req.Msg.ExpenseID,
		CallerID:    userID,
		Amount:      req.Msg.Amount,
		Description: req.Msg.Description,
		Shares:      toShareInputs(req.Msg.Shares),
	})
	if err != nil {
		return nil, toConnectError("UpdateExpense", err)
	}
	return connect.NewResponse(&api.Empty{}), nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.Empty], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Delete(ctx, req.Msg.ExpenseID, userID); err != nil {
		return nil, toConnectError("DeleteExpense", err)
	}
	return connect.NewResponse(&api.Empty{}), nil
}

func (s *ExpenseService) ListGroupExpenses(ctx context.Context, req *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	expenses, err := s.engine.ListGroupExpenses(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError("ListGroupExpenses", err)
	}
	return connect.NewResponse(&api.ListGroupExpensesResponse{Expenses: toAPIExpenses(expenses)}), nil
}

// ListExpensesWithUser returns direct expenses between the caller and another user.
func (s *ExpenseService) ListExpensesWithUser(ctx context.Context, req *connect.Request[api.ListExpensesWithUserRequest]) (*connect.Response[api.ListExpensesWithUserResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	expenses, err := s.engine.ListExpensesWithUser(ctx, userID, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError("ListExpensesWithUser", err)
	}
	return connect.NewResponse(&api.ListExpensesWithUserResponse{Expenses: toAPIExpenses(expenses)}), nil
}

// Settle pays ToUserID on behalf of the caller and marks the matching shares settled.
func (s *ExpenseService) Settle(ctx context.Context, req *connect.Request[api.SettleRequest]) (*connect.Response[api.SettleResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	result, err := s.processor.Settle(ctx, settlement.SettleInput{
		GroupID:    req.Msg.GroupID,
		FromUserID: userID,
		ToUserID:   req.Msg.ToUserID,
		Amount:     req.Msg.Amount,
	})
	if err != nil {
		return nil, toConnectError("Settle", err)
	}
	return connect.NewResponse(&api.SettleResponse{
		SettlementID:  result.Settlement.ID,
		SettledShares: len(result.SettledShareIDs),
		SettledTotal:  result.SettledTotal,
	}), nil
}

// ListSettlements returns a group's settlements, or the caller's direct ones.
func (s *ExpenseService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	settlements, err := s.processor.List(ctx, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError("ListSettlements", err)
	}

	seen := make(map[int64]bool)
	var ids []int64
	for _, st := range settlements {
		for _, id := range []int64{st.FromUserID, st.ToUserID} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, toConnectError("ListSettlements", err)
	}

	out := make([]api.Settlement, len(settlements))
	for i, st := range settlements {
		out[i] = toAPISettlement(st, users)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}
