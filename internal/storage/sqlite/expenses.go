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

const expenseSelect = `
	SELECT e.id, e.group_id, e.paid_by, e.amount_cents, e.description, e.date,
	       u.username, COALESCE(g.name, '')
	FROM expenses e
	JOIN users u ON e.paid_by = u.id
	LEFT JOIN "groups" g ON e.group_id = g.id`

func scanExpense(row scanner) (*models.Expense, error) {
	e := &models.Expense{}
	var groupID sql.NullInt64
	var cents int64
	if err := row.Scan(&e.ID, &groupID, &e.PaidBy, &cents, &e.Description, &e.Date,
		&e.PayerName, &e.GroupName); err != nil {
		return nil, err
	}
	e.GroupID = idPtr(groupID)
	e.Amount = money.FromCents(cents)
	return e, nil
}

// CreateExpense persists an expense and all of its shares in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.Date == 0 {
		expense.Date = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (group_id, paid_by, amount_cents, description, date) VALUES (?, ?, ?, ?, ?)`,
			nullableID(expense.GroupID), expense.PaidBy, money.ToCents(expense.Amount), expense.Description, expense.Date,
		)
		if isForeignKeyViolation(err) {
			return apperr.NotFound("group or payer not found")
		}
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		expenseID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read expense id: %w", err)
		}

		if err := insertShares(ctx, tx, expenseID, expense.Shares); err != nil {
			return err
		}
		expense.ID = expenseID
		return nil
	})
}

func insertShares(ctx context.Context, tx *sql.Tx, expenseID int64, shares []models.ExpenseShare) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO expense_shares (expense_id, user_id, amount_cents, is_settled) VALUES (?, ?, ?, 0)`)
	if err != nil {
		return fmt.Errorf("failed to prepare share insert: %w", err)
	}
	defer stmt.Close()

	for i := range shares {
		share := &shares[i]
		res, err := stmt.ExecContext(ctx, expenseID, share.UserID, money.ToCents(share.Amount))
		switch {
		case isUniqueViolation(err):
			return apperr.Validationf("duplicate share for user %d", share.UserID)
		case isForeignKeyViolation(err):
			return apperr.NotFoundf("user not found: %d", share.UserID)
		case err != nil:
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
		if share.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read share id: %w", err)
		}
		share.ExpenseID = expenseID
		share.IsSettled = false
	}
	return nil
}

// GetExpense retrieves an expense by ID with its shares, read from one snapshot.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID int64) (*models.Expense, error) {
	var expense *models.Expense
	err := s.readTx(ctx, func(tx *sql.Tx) error {
		var err error
		expense, err = scanExpense(tx.QueryRowContext(ctx, expenseSelect+` WHERE e.id = ?`, expenseID))
		if err != nil {
			return notFound(err, "expense not found")
		}
		shares, err := loadShares(ctx, tx, []int64{expenseID})
		if err != nil {
			return err
		}
		expense.Shares = shares[expenseID]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// UpdateExpense rewrites amount and description and optionally replaces all shares.
// Without replacement the existing shares must still add up to the new amount.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense, replaceShares bool) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE expenses SET amount_cents = ?, description = ? WHERE id = ?`,
			money.ToCents(expense.Amount), expense.Description, expense.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("expense not found")
		}

		if !replaceShares {
			var sumCents int64
			if err := tx.QueryRowContext(ctx,
				`SELECT COALESCE(SUM(amount_cents), 0) FROM expense_shares WHERE expense_id = ?`,
				expense.ID,
			).Scan(&sumCents); err != nil {
				return fmt.Errorf("failed to sum expense shares: %w", err)
			}
			if !money.WithinTolerance(money.FromCents(sumCents), expense.Amount) {
				return apperr.Validation("shares must sum to total")
			}
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM expense_shares WHERE expense_id = ?`, expense.ID); err != nil {
			return fmt.Errorf("failed to delete expense shares: %w", err)
		}
		return insertShares(ctx, tx, expense.ID, expense.Shares)
	})
}

// DeleteExpense removes the shares, then the expense, in one transaction.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM expense_shares WHERE expense_id = ?`, expenseID); err != nil {
			return fmt.Errorf("failed to delete expense shares: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, expenseID)
		if err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("expense not found")
		}
		return nil
	})
}

// ListExpensesByGroup returns a group's expenses, newest first, with shares attached.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID int64) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		expenseSelect+` WHERE e.group_id = ? ORDER BY e.date DESC, e.id DESC`,
		groupID,
	)
}

// ListExpensesBetween returns direct expenses where one user paid and the other holds a share.
func (s *SQLiteStore) ListExpensesBetween(ctx context.Context, userID, otherID int64) ([]*models.Expense, error) {
	return s.listExpenses(ctx,
		expenseSelect+`
		WHERE e.group_id IS NULL
		  AND e.id IN (
		    SELECT es.expense_id FROM expense_shares es
		    JOIN expenses x ON es.expense_id = x.id
		    WHERE (x.paid_by = ? AND es.user_id = ?) OR (x.paid_by = ? AND es.user_id = ?)
		  )
		ORDER BY e.date DESC, e.id DESC`,
		userID, otherID, otherID, userID,
	)
}

// listExpenses runs the expense query and one batched share query in the same snapshot.
func (s *SQLiteStore) listExpenses(ctx context.Context, query string, args ...any) ([]*models.Expense, error) {
	var expenses []*models.Expense
	err := s.readTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to list expenses: %w", err)
		}
		defer rows.Close()

		var ids []int64
		for rows.Next() {
			e, err := scanExpense(rows)
			if err != nil {
				return fmt.Errorf("failed to scan expense: %w", err)
			}
			expenses = append(expenses, e)
			ids = append(ids, e.ID)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate expenses: %w", err)
		}
		rows.Close()

		shares, err := loadShares(ctx, tx, ids)
		if err != nil {
			return err
		}
		for _, e := range expenses {
			e.Shares = shares[e.ID]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

// loadShares fetches the shares of many expenses with bound IN lists.
func loadShares(ctx context.Context, q querier, expenseIDs []int64) (map[int64][]models.ExpenseShare, error) {
	out := make(map[int64][]models.ExpenseShare, len(expenseIDs))
	for _, chunk := range chunks(expenseIDs) {
		rows, err := q.QueryContext(ctx,
			`SELECT es.id, es.expense_id, es.user_id, es.amount_cents, es.is_settled, u.username
			 FROM expense_shares es
			 JOIN users u ON es.user_id = u.id
			 WHERE es.expense_id IN (`+placeholders(len(chunk))+`)
			 ORDER BY es.expense_id, es.id`,
			int64Args(chunk)...,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get expense shares: %w", err)
		}
		for rows.Next() {
			var sh models.ExpenseShare
			var cents int64
			if err := rows.Scan(&sh.ID, &sh.ExpenseID, &sh.UserID, &cents, &sh.IsSettled, &sh.Username); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan expense share: %w", err)
			}
			sh.Amount = money.FromCents(cents)
			out[sh.ExpenseID] = append(out[sh.ExpenseID], sh)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
		}
	}
	return out, nil
}

// IsExpenseParticipant reports whether userID paid the expense or holds a share in it.
func (s *SQLiteStore) IsExpenseParticipant(ctx context.Context, expenseID, userID int64) (bool, error) {
	var exists bool
	err := s.rdb.QueryRowContext(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM expense_shares WHERE expense_id = ? AND user_id = ?
		   UNION ALL
		   SELECT 1 FROM expenses WHERE id = ? AND paid_by = ?
		 )`,
		expenseID, userID, expenseID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check expense participation: %w", err)
	}
	return exists, nil
}
