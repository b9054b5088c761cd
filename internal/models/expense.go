package models

import "github.com/shopspring/decimal"

// Expense is a payment made by one user on behalf of its share holders.
type Expense struct {
	// ID is the unique identifier for the expense.
	ID int64

	// GroupID is the owning group. Nil for a direct expense between two users.
	GroupID *int64

	// PaidBy is the user who paid. Only the payer may edit or delete the expense.
	PaidBy int64

	// Amount is the total paid. Always equals the sum of Shares within 0.01.
	Amount decimal.Decimal

	// Description is the required human label (e.g., "Dinner").
	Description string

	// Date is the Unix timestamp of the expense.
	Date int64

	// Shares is each participant's part of the expense. Never empty.
	Shares []ExpenseShare

	// PayerName and GroupName are filled on reads only.
	PayerName string
	GroupName string
}

// IsDirect reports whether the expense is outside any group.
func (e *Expense) IsDirect() bool {
	return e.GroupID == nil
}

// ExpenseShare is one participant's part of an expense.
// Unique per (ExpenseID, UserID).
type ExpenseShare struct {
	ID        int64
	ExpenseID int64
	UserID    int64
	Amount    decimal.Decimal

	// IsSettled only ever moves from false to true.
	IsSettled bool

	// Username is filled on reads only.
	Username string
}

// ShareInput is a requested share before it is persisted.
type ShareInput struct {
	UserID int64
	Amount decimal.Decimal
}
