package repository

import (
	"context"
	"errors"

	"userstore/internal/domain"
)

// ErrConstraintViolation reports a UNIQUE collision on username or email.
var ErrConstraintViolation = errors.New("username or email already exists")

// UserRepository defines persistence operations for User records.
//
// Single-record lookups return (nil, nil) when no row matches: absence is a
// normal outcome checked by the caller, not an error.
type UserRepository interface {
	Init(ctx context.Context) error
	Reset(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	All(ctx context.Context) ([]domain.User, error)
	UpdateEmail(ctx context.Context, id int64, email string) error
	Delete(ctx context.Context, id int64) error
	SearchSubstring(ctx context.Context, partial string) ([]domain.User, error)
	Page(ctx context.Context, limit, offset int) ([]domain.User, error)
}
