package models

import "github.com/shopspring/decimal"

// Balance is a derived net position. Positive means the user is owed money,
// negative means the user owes money.
type Balance struct {
	// Owed is what others owe the user (unsettled shares of expenses the user paid).
	Owed decimal.Decimal

	// Owing is what the user owes others (the user's unsettled shares of others' expenses).
	Owing decimal.Decimal
}

// Net returns Owed minus Owing.
func (b Balance) Net() decimal.Decimal {
	return b.Owed.Sub(b.Owing)
}

// GroupWithBalance is a group the user belongs to and the user's balance in it.
type GroupWithBalance struct {
	Group       Group
	MemberCount int
	Balance     decimal.Decimal
}

// FriendWithBalance is a friend of the user and the direct balance with them.
type FriendWithBalance struct {
	Friend  UserRef
	Balance decimal.Decimal
}

// DebtEdge is an unsettled amount owed by From to To.
type DebtEdge struct {
	From   int64
	To     int64
	Amount decimal.Decimal
}

// MemberBalance is one member's net position within a group.
type MemberBalance struct {
	UserID     int64
	Username   string
	NetBalance decimal.Decimal
}
