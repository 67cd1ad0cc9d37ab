package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"userstore/internal/domain"
	"userstore/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
);
`

const selectUserColumns = `SELECT id, username, email, password FROM users`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// Reset drops and recreates the users table. Repeated runs always leave an
// empty table behind.
func (r *UserRepository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DROP TABLE IF EXISTS users`); err != nil {
		return fmt.Errorf("drop users table: %w", err)
	}
	return r.Init(ctx)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, email, password)
VALUES (?, ?, ?)`,
		user.Username,
		user.Email,
		user.Password,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrConstraintViolation
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user last insert id: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUserColumns+` WHERE username = ?`, username)

	var user domain.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

// All returns every record in insertion order.
func (r *UserRepository) All(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUserColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (r *UserRepository) UpdateEmail(ctx context.Context, id int64, email string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET email = ? WHERE id = ?`, email, id); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConstraintViolation
		}
		return fmt.Errorf("update user email: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// SearchSubstring matches records whose username or email contains partial at
// any position. instr rather than LIKE: sqlite LIKE folds ASCII case and the
// match must be case sensitive.
func (r *UserRepository) SearchSubstring(ctx context.Context, partial string) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUserColumns+`
WHERE instr(username, ?) > 0 OR instr(email, ?) > 0
ORDER BY id`,
		partial,
		partial,
	)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func (r *UserRepository) Page(ctx context.Context, limit, offset int) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUserColumns+` ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("page users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func collectUsers(rows *sql.Rows) ([]domain.User, error) {
	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Password); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// sqlite reports UNIQUE failures as "UNIQUE constraint failed: users.<column>".
func isUniqueViolation(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}
