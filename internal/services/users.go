package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// UserService handles registration, login and profile reads.
type UserService struct {
	store      *storage.Repository
	tokens     *auth.TokenManager
	bcryptCost int
	now        func() time.Time
}

func NewUserService(store *storage.Repository, tokens *auth.TokenManager, bcryptCost int) *UserService {
	return &UserService{
		store:      store,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

var errDuplicateUser = fmt.Errorf("%w: username or email already exists", core.ErrInvalidArgument)

// Register creates a user and issues a token for it.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (core.User, string, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return core.User{}, "", fmt.Errorf("%w: username, email and password are required", core.ErrInvalidArgument)
	}

	exists, err := s.store.UserExists(ctx, username, email)
	if err != nil {
		return core.User{}, "", fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return core.User{}, "", errDuplicateUser
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return core.User{}, "", err
	}

	user := core.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return core.User{}, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return core.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID)
	return user, token, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (core.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return core.User{}, "", core.ErrUnauthenticated
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return core.User{}, "", core.ErrUnauthenticated
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return core.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	slog.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return user, token, nil
}

// Profile returns the authenticated user's record.
func (s *UserService) Profile(ctx context.Context, userID string) (core.User, error) {
	return s.store.GetUserByID(ctx, userID)
}
