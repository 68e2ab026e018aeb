package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aidar/project-tracker/internal/domain"
)

// AuthService handles login and registration
type AuthService struct {
	users  *UserService
	hasher PasswordHasher
	tokens *TokenManager
}

// NewAuthService creates a new AuthService
func NewAuthService(users *UserService, hasher PasswordHasher, tokens *TokenManager) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Login verifies credentials and issues a token. The username is the account email.
// Unknown user and wrong password both fail with a not-found kind error.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", domain.NewValidationError("username", "username is required")
	}
	if password == "" {
		return "", domain.NewValidationError("password", "password is required")
	}

	user, err := s.users.FindByEmail(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.ErrUserNotFound
	}

	if !s.hasher.Verify(user.Password, password) {
		return "", domain.ErrInvalidCredentials
	}

	return s.tokens.Issue(username)
}

// Register hashes the password, creates the user and issues a token for its email
func (s *AuthService) Register(ctx context.Context, input *domain.RegisterInput) (string, error) {
	if err := input.Validate(); err != nil {
		return "", err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return "", err
	}

	user, err := s.users.Create(ctx, &domain.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hash,
		Role:     input.Role,
	})
	if err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID, "role", user.Role)

	return s.tokens.Issue(user.Email)
}

// Authenticate validates a bearer token and resolves its claim to a user
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, claims.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}

	return user, nil
}
