package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/splitsmart/internal/apperr"
	"github.com/mmynk/splitsmart/internal/models"
	"github.com/mmynk/splitsmart/internal/money"
)

// RecordSettlement persists a settlement and marks every matching unsettled
// share settled, in one transaction.
//
// A share matches when it belongs to the payer (FromUserID), its expense was
// paid by the receiver (ToUserID), and the expense is in the same group (or
// outside any group for a direct settlement). The amount is stored as given.
func (s *SQLiteStore) RecordSettlement(ctx context.Context, settlement *models.Settlement) (*models.SettlementResult, error) {
	if settlement.Date == 0 {
		settlement.Date = time.Now().Unix()
	}

	result := &models.SettlementResult{Settlement: settlement, SettledTotal: money.Zero}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if settlement.GroupID != nil {
			var members int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id IN (?, ?)`,
				*settlement.GroupID, settlement.FromUserID, settlement.ToUserID,
			).Scan(&members); err != nil {
				return fmt.Errorf("failed to check group membership: %w", err)
			}
			if members != 2 {
				return apperr.Unauthorized("both users must be members of the group")
			}
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO settlements (group_id, from_user_id, to_user_id, amount_cents, date) VALUES (?, ?, ?, ?, ?)`,
			nullableID(settlement.GroupID), settlement.FromUserID, settlement.ToUserID,
			money.ToCents(settlement.Amount), settlement.Date,
		)
		if isForeignKeyViolation(err) {
			return apperr.NotFound("user not found")
		}
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}
		if settlement.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read settlement id: %w", err)
		}

		ids, totalCents, err := matchingShares(ctx, tx, settlement)
		if err != nil {
			return err
		}
		if err := markSettled(ctx, tx, ids); err != nil {
			return err
		}

		result.SettledShareIDs = ids
		result.SettledTotal = money.FromCents(totalCents)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func matchingShares(ctx context.Context, tx *sql.Tx, st *models.Settlement) ([]int64, int64, error) {
	query := `SELECT es.id, es.amount_cents FROM expense_shares es
		JOIN expenses e ON es.expense_id = e.id
		WHERE es.user_id = ? AND e.paid_by = ? AND es.is_settled = 0`
	args := []any{st.FromUserID, st.ToUserID}
	if st.GroupID != nil {
		query += ` AND e.group_id = ?`
		args = append(args, *st.GroupID)
	} else {
		query += ` AND e.group_id IS NULL`
	}
	query += ` ORDER BY es.id`

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select shares to settle: %w", err)
	}
	defer rows.Close()

	var ids []int64
	var total int64
	for rows.Next() {
		var id, cents int64
		if err := rows.Scan(&id, &cents); err != nil {
			return nil, 0, fmt.Errorf("failed to scan share: %w", err)
		}
		ids = append(ids, id)
		total += cents
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate shares: %w", err)
	}
	return ids, total, nil
}

// markSettled flips the given shares with bound parameters, never string-built ids.
func markSettled(ctx context.Context, tx *sql.Tx, ids []int64) error {
	for _, chunk := range chunks(ids) {
		if _, err := tx.ExecContext(ctx,
			`UPDATE expense_shares SET is_settled = 1 WHERE id IN (`+placeholders(len(chunk))+`)`,
			int64Args(chunk)...,
		); err != nil {
			return fmt.Errorf("failed to mark shares settled: %w", err)
		}
	}
	return nil
}

// ListSettlements returns the settlements of a group, or the direct
// settlements involving userID when groupID is nil. Newest first.
func (s *SQLiteStore) ListSettlements(ctx context.Context, groupID *int64, userID int64) ([]*models.Settlement, error) {
	query := `SELECT id, group_id, from_user_id, to_user_id, amount_cents, date FROM settlements`
	var args []any
	if groupID != nil {
		query += ` WHERE group_id = ?`
		args = append(args, *groupID)
	} else {
		query += ` WHERE group_id IS NULL AND (from_user_id = ? OR to_user_id = ?)`
		args = append(args, userID, userID)
	}
	query += ` ORDER BY date DESC, id DESC`

	rows, err := s.rdb.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		st := &models.Settlement{}
		var gid sql.NullInt64
		var cents int64
		if err := rows.Scan(&st.ID, &gid, &st.FromUserID, &st.ToUserID, &cents, &st.Date); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		st.GroupID = idPtr(gid)
		st.Amount = money.FromCents(cents)
		settlements = append(settlements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}
