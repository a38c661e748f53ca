package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bluepay/internal/core"
	"bluepay/internal/ledger"
)

// ErrBadCredentials is returned for unknown usernames and wrong passwords
// alike, so login failures never reveal which half was wrong.
var ErrBadCredentials = errors.New("invalid username or password")

// Service implements registration and login on top of a user store.
type Service struct {
	users ledger.UserStore
}

func NewService(users ledger.UserStore) *Service {
	return &Service{users: users}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (core.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return core.User{}, core.NewValidationError("username", "must not be empty")
	}
	if len(password) < 4 {
		return core.User{}, core.NewValidationError("password", "too short (min 4 characters)")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "User registered", "id", u.ID, "username", u.Username)
	return u, nil
}

// Login verifies credentials and returns the matching user.
func (s *Service) Login(ctx context.Context, username, password string) (core.User, error) {
	u, err := s.users.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, ErrBadCredentials
		}
		return core.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !CheckPassword(u.Password, password) {
		return core.User{}, ErrBadCredentials
	}
	return u, nil
}

// UserByID loads the user behind a resolved session.
func (s *Service) UserByID(ctx context.Context, id int64) (core.User, error) {
	return s.users.UserByID(ctx, id)
}
