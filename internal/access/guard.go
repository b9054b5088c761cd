// Package access gates group, expense and friend visibility and mutation.
//
// Every check answers a yes/no question against the ledger store. The
// Require* variants turn a "no" into an authorization error so callers
// never fall back to a silent empty result.
package access

import (
	"context"

	"github.com/mmynk/splitsmart/internal/apperr"
)

// Store is the subset of the ledger store the guard reads.
type Store interface {
	IsGroupMember(ctx context.Context, groupID, userID int64) (bool, error)
	IsExpenseParticipant(ctx context.Context, expenseID, userID int64) (bool, error)
	IsFriend(ctx context.Context, userID, otherID int64) (bool, error)
}

// Guard answers authorization questions for the engines.
type Guard struct {
	store Store
}

// NewGuard creates a guard backed by store.
func NewGuard(store Store) *Guard {
	return &Guard{store: store}
}

// IsGroupMember reports whether userID belongs to groupID.
func (g *Guard) IsGroupMember(ctx context.Context, groupID, userID int64) (bool, error) {
	ok, err := g.store.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return false, apperr.Storage("check group membership", err)
	}
	return ok, nil
}

// IsExpenseParticipant reports whether userID paid for or holds a share in expenseID.
func (g *Guard) IsExpenseParticipant(ctx context.Context, expenseID, userID int64) (bool, error) {
	ok, err := g.store.IsExpenseParticipant(ctx, expenseID, userID)
	if err != nil {
		return false, apperr.Storage("check expense participation", err)
	}
	return ok, nil
}

// IsFriend reports whether userID and otherID are friends.
func (g *Guard) IsFriend(ctx context.Context, userID, otherID int64) (bool, error) {
	ok, err := g.store.IsFriend(ctx, userID, otherID)
	if err != nil {
		return false, apperr.Storage("check friendship", err)
	}
	return ok, nil
}

// RequireGroupMember fails with an authorization error unless userID is a member.
func (g *Guard) RequireGroupMember(ctx context.Context, groupID, userID int64) error {
	ok, err := g.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Unauthorized("not a member of this group")
	}
	return nil
}

// RequireGroupMembers checks every user in userIDs.
func (g *Guard) RequireGroupMembers(ctx context.Context, groupID int64, userIDs ...int64) error {
	for _, id := range userIDs {
		ok, err := g.IsGroupMember(ctx, groupID, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Unauthorized("all participants must be members of the group")
		}
	}
	return nil
}

// RequireExpenseParticipant fails unless userID paid for or shares in the expense.
func (g *Guard) RequireExpenseParticipant(ctx context.Context, expenseID, userID int64) error {
	ok, err := g.IsExpenseParticipant(ctx, expenseID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Unauthorized("not authorized")
	}
	return nil
}

// RequireFriend fails unless userID and otherID are friends.
func (g *Guard) RequireFriend(ctx context.Context, userID, otherID int64) error {
	ok, err := g.IsFriend(ctx, userID, otherID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Unauthorized("not friends with this user")
	}
	return nil
}
