package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/splitsmart/internal/apperr"
	"github.com/mmynk/splitsmart/internal/models"
)

const userColumns = `id, username, email, password_hash, full_name, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.CreatedAt,
	)
	return user, err
}

// CreateUser inserts a new user and fills in its ID.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, full_name, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.FullName, user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return apperr.Validation("user already exists")
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(s.rdb.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "user not found: %d", id)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.rdb.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return nil, notFound(err, "user not found with this email")
	}
	return user, nil
}

// GetUserByUsernameOrEmail finds a user matching either field.
func (s *SQLiteStore) GetUserByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	user, err := scanUser(s.rdb.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? OR email = ? LIMIT 1`, username, email))
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return user, nil
}

// GetUsersByIDs retrieves multiple users by their IDs.
// Returns a map of user ID to User object.
// Users that don't exist are omitted from the result.
func (s *SQLiteStore) GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error) {
	users := make(map[int64]*models.User, len(ids))
	for _, chunk := range chunks(ids) {
		rows, err := s.rdb.QueryContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders(len(chunk))+`)`,
			int64Args(chunk)...,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get users by IDs: %w", err)
		}
		for rows.Next() {
			user, err := scanUser(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan user: %w", err)
			}
			users[user.ID] = user
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("error iterating users: %w", err)
		}
	}
	return users, nil
}

// ListUsers returns every user ordered by username.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
}

// SearchUsers matches query as a substring of username or email.
func (s *SQLiteStore) SearchUsers(ctx context.Context, query string, limit int) ([]*models.User, error) {
	term := "%" + query + "%"
	return s.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE username LIKE ? OR email LIKE ? ORDER BY username LIMIT ?`,
		term, term, limit,
	)
}

func (s *SQLiteStore) queryUsers(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	rows, err := s.rdb.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// UpdateUserProfile rewrites the mutable profile fields.
func (s *SQLiteStore) UpdateUserProfile(ctx context.Context, id int64, fullName, email string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET full_name = ?, email = ? WHERE id = ?`,
		fullName, email, id,
	)
	if isUniqueViolation(err) {
		return apperr.Validation("email already registered")
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}
