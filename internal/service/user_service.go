package service

import (
	"context"
	"errors"
	"fmt"

	"userstore/internal/domain"
	"userstore/internal/repository"
)

// The record seeded by Initialize.
const (
	seedUsername = "bob"
	seedEmail    = "bob@mail.com"
	seedPassword = "bobpass"
)

// ErrAlreadyTaken is returned by Create when the username or email collides
// with an existing record.
var ErrAlreadyTaken = errors.New("username or email already taken")

// UserService exposes the record operations behind the CLI commands. Lookups
// that find nothing return a nil record (or found=false) rather than an
// error; absence is a normal outcome.
type UserService interface {
	Initialize(ctx context.Context) (*domain.User, error)
	Get(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ChangeEmail(ctx context.Context, username, newEmail string) (*domain.User, string, error)
	Create(ctx context.Context, username, email, password string) (*domain.User, error)
	Delete(ctx context.Context, username string) (bool, error)
	FindPartial(ctx context.Context, partial string) ([]domain.User, error)
	ListPage(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

// Initialize drops and recreates the schema, then seeds the default user.
// Running it again discards the previous contents first, so the seed record
// exists exactly once afterwards.
func (s *userService) Initialize(ctx context.Context) (*domain.User, error) {
	if err := s.users.Reset(ctx); err != nil {
		return nil, err
	}
	return s.Create(ctx, seedUsername, seedEmail, seedPassword)
}

func (s *userService) Get(ctx context.Context, username string) (*domain.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.All(ctx)
}

// ChangeEmail updates the named user's address and returns the updated record
// along with the address it replaced. A uniqueness collision on the new
// address propagates to the caller untranslated.
func (s *userService) ChangeEmail(ctx context.Context, username, newEmail string) (*domain.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil || user == nil {
		return nil, "", err
	}

	old := user.Email
	if err := s.users.UpdateEmail(ctx, user.ID, newEmail); err != nil {
		return nil, "", err
	}
	user.Email = newEmail
	return user, old, nil
}

// Create persists a new record. All three values are stored exactly as
// given; nothing is trimmed or normalized.
func (s *userService) Create(ctx context.Context, username, email, password string) (*domain.User, error) {
	if username == "" {
		return nil, errors.New("username is required")
	}
	if email == "" {
		return nil, errors.New("email is required")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}

	user := &domain.User{
		Username: username,
		Email:    email,
		Password: password,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConstraintViolation) {
			return nil, ErrAlreadyTaken
		}
		return nil, err
	}
	return user, nil
}

// Delete removes the named user. The bool reports whether a record existed;
// when it is false nothing was mutated.
func (s *userService) Delete(ctx context.Context, username string) (bool, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *userService) FindPartial(ctx context.Context, partial string) ([]domain.User, error) {
	return s.users.SearchSubstring(ctx, partial)
}

func (s *userService) ListPage(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit < 1 {
		return nil, fmt.Errorf("limit must be at least 1, got %d", limit)
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset must not be negative, got %d", offset)
	}
	return s.users.Page(ctx, limit, offset)
}
