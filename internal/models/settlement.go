package models

import "github.com/shopspring/decimal"

// Settlement represents a payment between two users to clear debts.
// It is an audit record; balances change only through the shares it marks settled.
type Settlement struct {
	// ID is the unique identifier for the settlement.
	ID int64

	// GroupID is the group this settlement belongs to. Nil for a direct settlement.
	GroupID *int64

	// FromUserID is the user who paid (debtor settling up).
	FromUserID int64

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID int64

	// Amount is the payment amount as entered. It is not reconciled
	// against the shares marked settled.
	Amount decimal.Decimal

	// Date is the Unix timestamp when the settlement was recorded.
	Date int64
}

// SettlementResult reports what recording a settlement changed.
type SettlementResult struct {
	Settlement *Settlement

	// SettledShareIDs are the shares flipped to settled by this settlement.
	SettledShareIDs []int64

	// SettledTotal is the sum of the flipped shares.
	SettledTotal decimal.Decimal
}
