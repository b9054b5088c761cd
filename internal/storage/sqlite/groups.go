package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/splitsmart/internal/apperr"
	"github.com/mmynk/splitsmart/internal/models"
)

// CreateGroup persists a new group and its memberships in one transaction.
// The creator is always added; duplicate member IDs are ignored.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group, memberIDs []int64) error {
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO "groups" (name, description, created_by, created_at) VALUES (?, ?, ?, ?)`,
			group.Name, group.Description, group.CreatedBy, group.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}
		groupID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read group id: %w", err)
		}

		seen := make(map[int64]bool, len(memberIDs)+1)
		for _, userID := range append([]int64{group.CreatedBy}, memberIDs...) {
			if seen[userID] {
				continue
			}
			seen[userID] = true
			if err := insertMember(ctx, tx, groupID, userID, group.CreatedAt); err != nil {
				return err
			}
		}

		group.ID = groupID
		return nil
	})
}

func insertMember(ctx context.Context, q querier, groupID, userID, joinedAt int64) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)`,
		groupID, userID, joinedAt,
	)
	switch {
	case isUniqueViolation(err):
		return apperr.Validation("user is already a member of this group")
	case isForeignKeyViolation(err):
		return apperr.NotFoundf("user not found: %d", userID)
	case err != nil:
		return fmt.Errorf("failed to insert group member: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID int64) (*models.Group, error) {
	group := &models.Group{}
	err := s.rdb.QueryRowContext(ctx,
		`SELECT id, name, description, created_by, created_at FROM "groups" WHERE id = ?`,
		groupID,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt)
	if err != nil {
		return nil, notFound(err, "group not found: %d", groupID)
	}
	return group, nil
}

// ListGroupsForUser returns the user's groups with member counts, newest first.
// Balance is left zero for the caller to fill.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID int64) ([]models.GroupWithBalance, error) {
	rows, err := s.rdb.QueryContext(ctx,
		`SELECT g.id, g.name, g.description, g.created_by, g.created_at,
		        (SELECT COUNT(*) FROM group_members WHERE group_id = g.id) AS member_count
		 FROM "groups" g
		 JOIN group_members gm ON g.id = gm.group_id
		 WHERE gm.user_id = ?
		 ORDER BY g.created_at DESC, g.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []models.GroupWithBalance
	for rows.Next() {
		var g models.GroupWithBalance
		if err := rows.Scan(&g.Group.ID, &g.Group.Name, &g.Group.Description,
			&g.Group.CreatedBy, &g.Group.CreatedAt, &g.MemberCount); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// AddGroupMember adds one user to a group.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, groupID, userID int64) error {
	return insertMember(ctx, s.db, groupID, userID, time.Now().Unix())
}

// ListGroupMembers returns the members of a group ordered by username.
func (s *SQLiteStore) ListGroupMembers(ctx context.Context, groupID int64) ([]models.UserRef, error) {
	return listMembers(ctx, s.rdb, groupID)
}

func listMembers(ctx context.Context, q querier, groupID int64) ([]models.UserRef, error) {
	return queryUserRefs(ctx, q,
		`SELECT u.id, u.username, u.full_name FROM users u
		 JOIN group_members gm ON u.id = gm.user_id
		 WHERE gm.group_id = ?
		 ORDER BY u.username`,
		groupID,
	)
}

// IsGroupMember reports whether userID belongs to groupID.
func (s *SQLiteStore) IsGroupMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var exists bool
	err := s.rdb.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?)`,
		groupID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check group membership: %w", err)
	}
	return exists, nil
}

func queryUserRefs(ctx context.Context, q querier, query string, args ...any) ([]models.UserRef, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var refs []models.UserRef
	for rows.Next() {
		var r models.UserRef
		if err := rows.Scan(&r.ID, &r.Username, &r.FullName); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return refs, nil
}
