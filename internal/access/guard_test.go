package access

import (
	"context"
	"errors"
	"testing"

	"github.com/mmynk/splitsmart/internal/apperr"
)

type fakeStore struct {
	members      map[[2]int64]bool
	participants map[[2]int64]bool
	friends      map[[2]int64]bool
	err          error
}

func (f *fakeStore) IsGroupMember(_ context.Context, groupID, userID int64) (bool, error) {
	return f.members[[2]int64{groupID, userID}], f.err
}

func (f *fakeStore) IsExpenseParticipant(_ context.Context, expenseID, userID int64) (bool, error) {
	return f.participants[[2]int64{expenseID, userID}], f.err
}

func (f *fakeStore) IsFriend(_ context.Context, userID, otherID int64) (bool, error) {
	return f.friends[[2]int64{userID, otherID}], f.err
}

func TestGuard(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{
		members:      map[[2]int64]bool{{1, 10}: true, {1, 11}: true},
		participants: map[[2]int64]bool{{5, 10}: true},
		friends:      map[[2]int64]bool{{10, 11}: true},
	}
	g := NewGuard(store)

	tests := []struct {
		name      string
		check     func() error
		wantAuthz bool
	}{
		{"member", func() error { return g.RequireGroupMember(ctx, 1, 10) }, false},
		{"non-member", func() error { return g.RequireGroupMember(ctx, 1, 12) }, true},
		{"all members", func() error { return g.RequireGroupMembers(ctx, 1, 10, 11) }, false},
		{"one outsider", func() error { return g.RequireGroupMembers(ctx, 1, 10, 12) }, true},
		{"participant", func() error { return g.RequireExpenseParticipant(ctx, 5, 10) }, false},
		{"non-participant", func() error { return g.RequireExpenseParticipant(ctx, 5, 11) }, true},
		{"friend", func() error { return g.RequireFriend(ctx, 10, 11) }, false},
		{"stranger", func() error { return g.RequireFriend(ctx, 10, 12) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check()
			if tt.wantAuthz && !apperr.IsUnauthorized(err) {
				t.Errorf("Expected authorization error, got %v", err)
			}
			if !tt.wantAuthz && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestGuard_StoreFailure(t *testing.T) {
	g := NewGuard(&fakeStore{err: errors.New("disk I/O error")})

	err := g.RequireGroupMember(context.Background(), 1, 1)
	if !errors.Is(err, apperr.ErrStorage) {
		t.Fatalf("Expected storage error, got %v", err)
	}
	if apperr.IsUnauthorized(err) {
		t.Error("Store failure must not be reported as an authorization error")
	}
}
