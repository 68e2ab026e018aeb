package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/repository/memory"
)

func newAuthFixture(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	users := NewUserService(store.Users())
	tokens := NewTokenManager("test-secret", time.Hour)
	return NewAuthService(users, NewBcryptHasher(bcrypt.MinCost), tokens), store
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	svc, store := newAuthFixture(t)

	input := &domain.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "s3cret", Role: domain.RoleAdmin}
	token, err := svc.Register(ctx, input)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", claims.Username)

	stored, err := store.Users().GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", stored.Password, "password must be hashed")
	assert.Equal(t, domain.RoleAdmin, stored.Role)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, &domain.RegisterInput{Name: "Other", Email: "ann@example.com", Password: "x", Role: domain.RoleMember})
		assert.ErrorIs(t, err, domain.ErrEmailExists)

		all, err := store.Users().List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := svc.Register(ctx, &domain.RegisterInput{Name: "Eve", Email: "eve@example.com", Password: "x", Role: "root"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(ctx, &domain.RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "s3cret", Role: domain.RoleMember})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		token, err := svc.Login(ctx, "ann@example.com", "s3cret")
		require.NoError(t, err)

		user, err := svc.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", user.Email)
	})

	t.Run("unknown user and wrong password share a kind", func(t *testing.T) {
		_, errUnknown := svc.Login(ctx, "nobody@example.com", "s3cret")
		_, errWrong := svc.Login(ctx, "ann@example.com", "wrong")

		assert.ErrorIs(t, errUnknown, domain.ErrUserNotFound)
		assert.ErrorIs(t, errWrong, domain.ErrInvalidCredentials)
		assert.Equal(t, domain.KindResourceNotFound, domain.KindOf(errUnknown))
		assert.Equal(t, domain.KindOf(errUnknown), domain.KindOf(errWrong))
		assert.NotEqual(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Login(ctx, "", "x")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthFixture(t)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "not-a-token")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("valid token for deleted account", func(t *testing.T) {
		token, err := svc.tokens.Issue("ghost@example.com")
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
