package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mmynk/splitsmart/internal/models"
	"github.com/mmynk/splitsmart/internal/money"
	"github.com/mmynk/splitsmart/internal/storage"
)

// scopeClause returns the expense filter for a balance query.
func scopeClause(q storage.BalanceQuery) (string, []any) {
	switch {
	case q.GroupID != nil:
		return " AND e.group_id = ?", []any{*q.GroupID}
	case q.Direct:
		return " AND e.group_id IS NULL", nil
	default:
		return "", nil
	}
}

// Balance sums owed and owing in one read transaction, so both sides come
// from the same snapshot. A failure of either query fails the whole call.
func (s *SQLiteStore) Balance(ctx context.Context, q storage.BalanceQuery) (models.Balance, error) {
	scope, scopeArgs := scopeClause(q)

	var owed strings.Builder
	owed.WriteString(`SELECT COALESCE(SUM(es.amount_cents), 0)
		FROM expense_shares es JOIN expenses e ON es.expense_id = e.id
		WHERE e.paid_by = ? AND es.user_id != ? AND es.is_settled = 0`)
	owed.WriteString(scope)
	owedArgs := append([]any{q.UserID, q.UserID}, scopeArgs...)
	if q.CounterpartyID != 0 {
		owed.WriteString(" AND es.user_id = ?")
		owedArgs = append(owedArgs, q.CounterpartyID)
	}

	var owing strings.Builder
	owing.WriteString(`SELECT COALESCE(SUM(es.amount_cents), 0)
		FROM expense_shares es JOIN expenses e ON es.expense_id = e.id
		WHERE es.user_id = ? AND e.paid_by != ? AND es.is_settled = 0`)
	owing.WriteString(scope)
	owingArgs := append([]any{q.UserID, q.UserID}, scopeArgs...)
	if q.CounterpartyID != 0 {
		owing.WriteString(" AND e.paid_by = ?")
		owingArgs = append(owingArgs, q.CounterpartyID)
	}

	var owedCents, owingCents int64
	err := s.readTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, owed.String(), owedArgs...).Scan(&owedCents); err != nil {
			return fmt.Errorf("failed to sum owed shares: %w", err)
		}
		if err := tx.QueryRowContext(ctx, owing.String(), owingArgs...).Scan(&owingCents); err != nil {
			return fmt.Errorf("failed to sum owing shares: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Balance{}, err
	}

	return models.Balance{
		Owed:  money.FromCents(owedCents),
		Owing: money.FromCents(owingCents),
	}, nil
}

// GroupDebts returns, per (debtor, creditor) pair, the unsettled total the
// debtor owes the creditor inside the group.
func (s *SQLiteStore) GroupDebts(ctx context.Context, groupID int64) ([]models.DebtEdge, error) {
	return groupDebts(ctx, s.rdb, groupID)
}

// GroupLedger returns the members of a group and its unsettled debts,
// read from one snapshot.
func (s *SQLiteStore) GroupLedger(ctx context.Context, groupID int64) ([]models.UserRef, []models.DebtEdge, error) {
	var members []models.UserRef
	var edges []models.DebtEdge
	err := s.readTx(ctx, func(tx *sql.Tx) error {
		var err error
		if members, err = listMembers(ctx, tx, groupID); err != nil {
			return err
		}
		edges, err = groupDebts(ctx, tx, groupID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return members, edges, nil
}

func groupDebts(ctx context.Context, q querier, groupID int64) ([]models.DebtEdge, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT es.user_id, e.paid_by, SUM(es.amount_cents)
		 FROM expense_shares es JOIN expenses e ON es.expense_id = e.id
		 WHERE e.group_id = ? AND es.is_settled = 0 AND es.user_id != e.paid_by
		 GROUP BY es.user_id, e.paid_by
		 ORDER BY es.user_id, e.paid_by`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate group debts: %w", err)
	}
	defer rows.Close()

	var edges []models.DebtEdge
	for rows.Next() {
		var edge models.DebtEdge
		var cents int64
		if err := rows.Scan(&edge.From, &edge.To, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan group debt: %w", err)
		}
		edge.Amount = money.FromCents(cents)
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group debts: %w", err)
	}
	return edges, nil
}
