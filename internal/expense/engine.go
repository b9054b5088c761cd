// Package expense validates and mutates expenses and their shares.
//
// Every mutation ends in exactly one store call, and the store makes that
// call atomic, so an expense is never observable without its shares.
package expense

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsmart/internal/access"
	"github.com/mmynk/splitsmart/internal/apperr"
	"github.com/mmynk/splitsmart/internal/calculator"
	"github.com/mmynk/splitsmart/internal/metrics"
	"github.com/mmynk/splitsmart/internal/models"
	"github.com/mmynk/splitsmart/internal/money"
)

// Store is the subset of the ledger store the engine uses.
type Store interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID int64) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense, replaceShares bool) error
	DeleteExpense(ctx context.Context, expenseID int64) error
	ListExpensesByGroup(ctx context.Context, groupID int64) ([]*models.Expense, error)
	ListExpensesBetween(ctx context.Context, userID, otherID int64) ([]*models.Expense, error)
}

// Engine implements expense create, update, delete and reads.
type Engine struct {
	store   Store
	guard   *access.Guard
	metrics *metrics.Metrics
}

// NewEngine creates an engine. m may be nil.
func NewEngine(store Store, guard *access.Guard, m *metrics.Metrics) *Engine {
	return &Engine{store: store, guard: guard, metrics: m}
}

// CreateInput describes a new expense. Either Shares or SplitEvenly with
// ParticipantIDs must be given.
type CreateInput struct {
	GroupID     *int64
	PayerID     int64
	Amount      *decimal.Decimal
	Description string
	Shares      []models.ShareInput

	SplitEvenly    bool
	ParticipantIDs []int64
}

// UpdateInput carries the fields to change. Nil fields are left as they are.
type UpdateInput struct {
	ExpenseID   int64
	CallerID    int64
	Amount      *decimal.Decimal
	Description *string
	Shares      []models.ShareInput
}

// Create validates the input and persists the expense with all its shares.
// It returns the new expense id.
func (e *Engine) Create(ctx context.Context, in CreateInput) (int64, error) {
	description := strings.TrimSpace(in.Description)
	if in.Amount == nil || description == "" {
		return 0, apperr.Validation("amount and description are required")
	}
	if err := checkAmount(*in.Amount); err != nil {
		return 0, err
	}

	shares := in.Shares
	if in.SplitEvenly {
		var err error
		if shares, err = calculator.SplitEvenly(*in.Amount, in.ParticipantIDs); err != nil {
			return 0, err
		}
	}
	if err := validateShares(*in.Amount, shares); err != nil {
		return 0, err
	}
	if err := e.authorizeParticipants(ctx, in.GroupID, in.PayerID, shares); err != nil {
		return 0, err
	}

	expense := &models.Expense{
		GroupID:     in.GroupID,
		PaidBy:      in.PayerID,
		Amount:      money.Round(*in.Amount),
		Description: description,
		Shares:      toShares(shares),
	}
	if err := e.store.CreateExpense(ctx, expense); err != nil {
		return 0, apperr.Storage("create expense", err)
	}

	e.metrics.ExpenseCreated()
	slog.Info("Expense created",
		"expense_id", expense.ID,
		groupAttr(expense.GroupID),
		"paid_by", expense.PaidBy,
		"shares", len(expense.Shares),
	)
	return expense.ID, nil
}

// Update changes an expense. Only the payer may update it. When shares are
// given they replace the existing set under the same validation as Create;
// without shares the existing ones must still add up to the amount.
func (e *Engine) Update(ctx context.Context, in UpdateInput) error {
	expense, err := e.store.GetExpense(ctx, in.ExpenseID)
	if err != nil {
		return apperr.Storage("get expense", err)
	}
	if expense.PaidBy != in.CallerID {
		return apperr.Unauthorized("only the payer can update this expense")
	}

	if in.Amount != nil {
		if err := checkAmount(*in.Amount); err != nil {
			return err
		}
		expense.Amount = *in.Amount
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			return apperr.Validation("description must not be empty")
		}
		expense.Description = d
	}

	replace := in.Shares != nil
	if replace {
		if err := validateShares(expense.Amount, in.Shares); err != nil {
			return err
		}
		if err := e.authorizeParticipants(ctx, expense.GroupID, expense.PaidBy, in.Shares); err != nil {
			return err
		}
		expense.Shares = toShares(in.Shares)
	}
	expense.Amount = money.Round(expense.Amount)

	if err := e.store.UpdateExpense(ctx, expense, replace); err != nil {
		return apperr.Storage("update expense", err)
	}

	slog.Info("Expense updated", "expense_id", expense.ID, "shares_replaced", replace)
	return nil
}

// Delete removes an expense and its shares. Only the payer may delete it.
func (e *Engine) Delete(ctx context.Context, expenseID, callerID int64) error {
	expense, err := e.store.GetExpense(ctx, expenseID)
	if err != nil {
		return apperr.Storage("get expense", err)
	}
	if expense.PaidBy != callerID {
		return apperr.Unauthorized("only the payer can delete this expense")
	}

	if err := e.store.DeleteExpense(ctx, expenseID); err != nil {
		return apperr.Storage("delete expense", err)
	}

	slog.Info("Expense deleted", "expense_id", expenseID, "shares", len(expense.Shares))
	return nil
}

// GetByID returns an expense with payer name, group name and shares.
// Group expenses are visible to members, direct ones to the payer and
// share holders.
func (e *Engine) GetByID(ctx context.Context, expenseID, callerID int64) (*models.Expense, error) {
	expense, err := e.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, apperr.Storage("get expense", err)
	}

	if expense.GroupID != nil {
		err = e.guard.RequireGroupMember(ctx, *expense.GroupID, callerID)
	} else {
		err = e.guard.RequireExpenseParticipant(ctx, expenseID, callerID)
	}
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// ListGroupExpenses returns a group's expenses, newest first. The caller
// must be a member.
func (e *Engine) ListGroupExpenses(ctx context.Context, groupID, callerID int64) ([]*models.Expense, error) {
	if err := e.guard.RequireGroupMember(ctx, groupID, callerID); err != nil {
		return nil, err
	}
	expenses, err := e.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, apperr.Storage("list group expenses", err)
	}
	return expenses, nil
}

// ListExpensesWithUser returns the direct expenses between the caller and
// otherID: one of them paid and the other holds a share.
func (e *Engine) ListExpensesWithUser(ctx context.Context, callerID, otherID int64) ([]*models.Expense, error) {
	if callerID == otherID {
		return nil, apperr.Validation("cannot list expenses with yourself")
	}
	expenses, err := e.store.ListExpensesBetween(ctx, callerID, otherID)
	if err != nil {
		return nil, apperr.Storage("list direct expenses", err)
	}
	return expenses, nil
}

func checkAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperr.Validation("amount must not be negative")
	}
	if !money.InRange(amount) {
		return apperr.Validationf("amount must not exceed %s", money.Format(money.MaxAmount))
	}
	return nil
}

// validateShares checks the share set against amount as they will be
// stored: every share and the amount rounded to cents.
func validateShares(amount decimal.Decimal, shares []models.ShareInput) error {
	if len(shares) == 0 {
		return apperr.Validation("shares are required")
	}

	seen := make(map[int64]bool, len(shares))
	amounts := make([]decimal.Decimal, 0, len(shares))
	for _, sh := range shares {
		if sh.UserID <= 0 {
			return apperr.Validation("share user is required")
		}
		if sh.Amount.IsNegative() {
			return apperr.Validation("share amount must not be negative")
		}
		if !money.InRange(sh.Amount) {
			return apperr.Validationf("share amount must not exceed %s", money.Format(money.MaxAmount))
		}
		if seen[sh.UserID] {
			return apperr.Validationf("duplicate share for user %d", sh.UserID)
		}
		seen[sh.UserID] = true
		amounts = append(amounts, money.Round(sh.Amount))
	}

	if !money.WithinTolerance(money.Sum(amounts...), money.Round(amount)) {
		return apperr.Validation("shares must sum to total")
	}
	return nil
}

// authorizeParticipants enforces who may appear on an expense. In a group,
// the payer and every share holder must be members. A direct expense
// involves exactly two users, and the other one must be the payer's friend.
func (e *Engine) authorizeParticipants(ctx context.Context, groupID *int64, payerID int64, shares []models.ShareInput) error {
	ids := make([]int64, 0, len(shares)+1)
	ids = append(ids, payerID)
	for _, sh := range shares {
		ids = append(ids, sh.UserID)
	}

	if groupID != nil {
		return e.guard.RequireGroupMembers(ctx, *groupID, ids...)
	}

	others := make(map[int64]bool)
	for _, id := range ids {
		if id != payerID {
			others[id] = true
		}
	}
	if len(others) != 1 {
		return apperr.Validation("a direct expense must involve exactly one other user")
	}
	for other := range others {
		if err := e.guard.RequireFriend(ctx, payerID, other); err != nil {
			return err
		}
	}
	return nil
}

func toShares(in []models.ShareInput) []models.ExpenseShare {
	out := make([]models.ExpenseShare, len(in))
	for i, sh := range in {
		out[i] = models.ExpenseShare{UserID: sh.UserID, Amount: money.Round(sh.Amount)}
	}
	return out
}

// groupAttr logs the group of an expense, or marks it direct.
func groupAttr(groupID *int64) slog.Attr {
	if groupID == nil {
		return slog.String("scope", "direct")
	}
	return slog.Int64("group_id", *groupID)
}
