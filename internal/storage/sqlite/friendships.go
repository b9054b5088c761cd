package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/splitsmart/internal/apperr"
	"github.com/mmynk/splitsmart/internal/models"
)

// AddFriendship inserts (userID, friendID) and (friendID, userID) together.
func (s *SQLiteStore) AddFriendship(ctx context.Context, userID, friendID int64) error {
	now := time.Now().Unix()
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, edge := range [][2]int64{{userID, friendID}, {friendID, userID}} {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO friendships (user_id, friend_id, created_at) VALUES (?, ?, ?)`,
				edge[0], edge[1], now,
			)
			switch {
			case isUniqueViolation(err):
				return apperr.Validation("already friends with this user")
			case isForeignKeyViolation(err):
				return apperr.NotFound("user not found")
			case err != nil:
				return fmt.Errorf("failed to insert friendship: %w", err)
			}
		}
		return nil
	})
}

// RemoveFriendship deletes both directed edges. If the first edge is
// missing nothing is deleted.
func (s *SQLiteStore) RemoveFriendship(ctx context.Context, userID, friendID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM friendships WHERE user_id = ? AND friend_id = ?`, userID, friendID)
		if err != nil {
			return fmt.Errorf("failed to delete friendship: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("friendship not found")
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM friendships WHERE user_id = ? AND friend_id = ?`, friendID, userID); err != nil {
			return fmt.Errorf("failed to delete reverse friendship: %w", err)
		}
		return nil
	})
}

// IsFriend reports whether the edge (userID, otherID) exists.
func (s *SQLiteStore) IsFriend(ctx context.Context, userID, otherID int64) (bool, error) {
	var exists bool
	err := s.rdb.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM friendships WHERE user_id = ? AND friend_id = ?)`,
		userID, otherID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

// ListFriends returns the user's friends ordered by username.
func (s *SQLiteStore) ListFriends(ctx context.Context, userID int64) ([]models.UserRef, error) {
	return queryUserRefs(ctx, s.rdb,
		`SELECT u.id, u.username, u.full_name FROM users u
		 JOIN friendships f ON u.id = f.friend_id
		 WHERE f.user_id = ?
		 ORDER BY u.username`,
		userID,
	)
}
