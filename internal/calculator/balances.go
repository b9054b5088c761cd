// Package calculator derives balances from unsettled expense shares.
//
// Balances are never stored. Every figure here is recomputed from the
// ledger on read, each one inside a single store snapshot.
package calculator

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitsmart/internal/access"
	"github.com/mmynk/splitsmart/internal/apperr"
	"github.com/mmynk/splitsmart/internal/models"
	"github.com/mmynk/splitsmart/internal/storage"
)

// Store is the subset of the ledger store the calculator reads.
type Store interface {
	Balance(ctx context.Context, q storage.BalanceQuery) (models.Balance, error)
	GroupLedger(ctx context.Context, groupID int64) ([]models.UserRef, []models.DebtEdge, error)
	ListGroupsForUser(ctx context.Context, userID int64) ([]models.GroupWithBalance, error)
	ListFriends(ctx context.Context, userID int64) ([]models.UserRef, error)
}

// Calculator computes group and friend balances.
type Calculator struct {
	store       Store
	guard       *access.Guard
	concurrency int
}

// New creates a calculator. concurrency bounds the per-entity fan-out of
// the list operations; values below 1 mean 1.
func New(store Store, guard *access.Guard, concurrency int) *Calculator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Calculator{store: store, guard: guard, concurrency: concurrency}
}

// GroupSheet is every member's net position in a group plus the payments
// that would clear them.
type GroupSheet struct {
	Members []models.MemberBalance
	Debts   []models.DebtEdge
}

// GroupBalance returns what userID is owed minus what userID owes inside
// groupID. The caller must be a member.
func (c *Calculator) GroupBalance(ctx context.Context, groupID, userID int64) (decimal.Decimal, error) {
	if err := c.guard.RequireGroupMember(ctx, groupID, userID); err != nil {
		return decimal.Zero, err
	}
	return c.balance(ctx, storage.BalanceQuery{UserID: userID, GroupID: &groupID})
}

// GroupBalanceWith is GroupBalance restricted to shares between userID and otherID.
func (c *Calculator) GroupBalanceWith(ctx context.Context, groupID, userID, otherID int64) (decimal.Decimal, error) {
	if err := c.guard.RequireGroupMember(ctx, groupID, userID); err != nil {
		return decimal.Zero, err
	}
	return c.balance(ctx, storage.BalanceQuery{UserID: userID, GroupID: &groupID, CounterpartyID: otherID})
}

// FriendBalance returns the direct (non-group) balance between userID and
// friendID from userID's point of view. They must be friends.
func (c *Calculator) FriendBalance(ctx context.Context, userID, friendID int64) (decimal.Decimal, error) {
	if err := c.guard.RequireFriend(ctx, userID, friendID); err != nil {
		return decimal.Zero, err
	}
	return c.friendBalance(ctx, userID, friendID)
}

func (c *Calculator) friendBalance(ctx context.Context, userID, friendID int64) (decimal.Decimal, error) {
	return c.balance(ctx, storage.BalanceQuery{UserID: userID, Direct: true, CounterpartyID: friendID})
}

func (c *Calculator) balance(ctx context.Context, q storage.BalanceQuery) (decimal.Decimal, error) {
	b, err := c.store.Balance(ctx, q)
	if err != nil {
		return decimal.Zero, apperr.Storage("compute balance", err)
	}
	return b.Net(), nil
}

// ListGroupsWithBalances returns every group of userID with member count
// and the user's balance in it. Balances are computed concurrently; the
// first failure fails the whole listing.
func (c *Calculator) ListGroupsWithBalances(ctx context.Context, userID int64) ([]models.GroupWithBalance, error) {
	groups, err := c.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Storage("list groups", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i := range groups {
		groupID := groups[i].Group.ID
		g.Go(func() error {
			bal, err := c.balance(gctx, storage.BalanceQuery{UserID: userID, GroupID: &groupID})
			if err != nil {
				return err
			}
			groups[i].Balance = bal
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListFriendsWithBalances returns every friend of userID with the direct
// balance between them.
func (c *Calculator) ListFriendsWithBalances(ctx context.Context, userID int64) ([]models.FriendWithBalance, error) {
	friends, err := c.store.ListFriends(ctx, userID)
	if err != nil {
		return nil, apperr.Storage("list friends", err)
	}

	out := make([]models.FriendWithBalance, len(friends))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, f := range friends {
		out[i].Friend = f
		g.Go(func() error {
			bal, err := c.friendBalance(gctx, userID, f.ID)
			if err != nil {
				return err
			}
			out[i].Balance = bal
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// GroupBalances computes the balance sheet of a group. The caller must be a member.
// Every member appears, including those with a zero balance.
func (c *Calculator) GroupBalances(ctx context.Context, groupID, callerID int64) (*GroupSheet, error) {
	if err := c.guard.RequireGroupMember(ctx, groupID, callerID); err != nil {
		return nil, err
	}

	members, edges, err := c.store.GroupLedger(ctx, groupID)
	if err != nil {
		return nil, apperr.Storage("read group ledger", err)
	}

	net := NetBalances(edges)
	sheet := &GroupSheet{Members: make([]models.MemberBalance, 0, len(members))}
	for _, m := range members {
		sheet.Members = append(sheet.Members, models.MemberBalance{
			UserID:     m.ID,
			Username:   m.Username,
			NetBalance: net[m.ID],
		})
	}
	sort.SliceStable(sheet.Members, func(i, j int) bool {
		return sheet.Members[i].NetBalance.GreaterThan(sheet.Members[j].NetBalance)
	})
	sheet.Debts = SimplifyDebts(net)
	return sheet, nil
}
