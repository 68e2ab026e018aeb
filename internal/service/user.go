package service

import (
	"context"
	"errors"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/repository"
)

// UserService owns user accounts (the user directory)
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// Create stores a new user. A taken email yields domain.ErrEmailExists,
// any other storage failure is wrapped as an internal error.
func (s *UserService) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailExists) {
			return nil, err
		}
		return nil, domain.Internal("failed to create user", err)
	}
	return user, nil
}

// FindAll returns every user including password hashes.
// Callers must sanitize before exposing the result.
func (s *UserService) FindAll(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.List(ctx)
}

// FindOne retrieves a user by ID
func (s *UserService) FindOne(ctx context.Context, userID int64) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// FindByEmail retrieves a user by email. Absence is not an error: it returns nil, nil.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	return user, err
}

// Remove deletes a user after checking it exists
func (s *UserService) Remove(ctx context.Context, userID int64) error {
	if _, err := s.FindOne(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, userID)
}
