// Package storage provides abstractions for the persistent ledger.
package storage

import (
	"context"

	"github.com/mmynk/splitsmart/internal/models"
)

// BalanceQuery selects the unsettled shares that make up one user's balance.
//
// Owed sums shares of expenses UserID paid, held by someone else.
// Owing sums UserID's shares of expenses someone else paid.
type BalanceQuery struct {
	UserID int64

	// GroupID restricts to one group's expenses.
	GroupID *int64

	// Direct restricts to expenses outside any group. Ignored when GroupID is set.
	Direct bool

	// CounterpartyID restricts to shares between UserID and this user (0 = anyone).
	CounterpartyID int64
}

// Store defines the ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the engines. Every method that writes more than one row
// is atomic: either all rows are written or none are.
type Store interface {
	UserStore
	GroupStore
	FriendStore
	ExpenseStore
	BalanceStore
	SettlementStore

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]*models.User, error)
	UpdateUserProfile(ctx context.Context, id int64, fullName, email string) error
}

// GroupStore persists groups and memberships.
type GroupStore interface {
	// CreateGroup inserts the group and one membership per member atomically.
	CreateGroup(ctx context.Context, group *models.Group, memberIDs []int64) error
	GetGroup(ctx context.Context, groupID int64) (*models.Group, error)
	ListGroupsForUser(ctx context.Context, userID int64) ([]models.GroupWithBalance, error)
	AddGroupMember(ctx context.Context, groupID, userID int64) error
	ListGroupMembers(ctx context.Context, groupID int64) ([]models.UserRef, error)
	IsGroupMember(ctx context.Context, groupID, userID int64) (bool, error)
}

// FriendStore persists symmetric friendships.
type FriendStore interface {
	// AddFriendship inserts both directed edges atomically.
	AddFriendship(ctx context.Context, userID, friendID int64) error
	// RemoveFriendship deletes both directed edges atomically.
	RemoveFriendship(ctx context.Context, userID, friendID int64) error
	IsFriend(ctx context.Context, userID, otherID int64) (bool, error)
	ListFriends(ctx context.Context, userID int64) ([]models.UserRef, error)
}

// ExpenseStore persists expenses and their shares as one unit.
type ExpenseStore interface {
	// CreateExpense inserts the expense and all its shares in one transaction.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	// GetExpense returns the expense with payer name, group name and shares.
	GetExpense(ctx context.Context, expenseID int64) (*models.Expense, error)
	// UpdateExpense rewrites amount and description; when replaceShares is set
	// the existing shares are deleted and expense.Shares inserted, atomically.
	UpdateExpense(ctx context.Context, expense *models.Expense, replaceShares bool) error
	// DeleteExpense deletes the shares, then the expense, atomically.
	DeleteExpense(ctx context.Context, expenseID int64) error
	ListExpensesByGroup(ctx context.Context, groupID int64) ([]*models.Expense, error)
	ListExpensesBetween(ctx context.Context, userID, otherID int64) ([]*models.Expense, error)
	IsExpenseParticipant(ctx context.Context, expenseID, userID int64) (bool, error)
}

// BalanceStore aggregates unsettled shares.
type BalanceStore interface {
	// Balance computes owed and owing inside one read transaction.
	Balance(ctx context.Context, q BalanceQuery) (models.Balance, error)
	// GroupDebts returns unsettled debtor→creditor totals inside a group.
	GroupDebts(ctx context.Context, groupID int64) ([]models.DebtEdge, error)
	// GroupLedger returns the group's members and GroupDebts from one read transaction.
	GroupLedger(ctx context.Context, groupID int64) ([]models.UserRef, []models.DebtEdge, error)
}

// SettlementStore records settlements.
type SettlementStore interface {
	// RecordSettlement inserts the settlement and marks every matching
	// unsettled share settled in one transaction. For group settlements both
	// parties must be members; otherwise an authorization error is returned
	// and nothing is written.
	RecordSettlement(ctx context.Context, settlement *models.Settlement) (*models.SettlementResult, error)
	ListSettlements(ctx context.Context, groupID *int64, userID int64) ([]*models.Settlement, error)
}
