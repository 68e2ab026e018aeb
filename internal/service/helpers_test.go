package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/repository/memory"
)

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

// seedUsers создает пользователей по порядку: первый получает ID 1 и т.д.
func seedUsers(t *testing.T, store *memory.Store, users ...domain.User) {
	t.Helper()
	for i := range users {
		u := users[i]
		if u.Password == "" {
			u.Password = "hash-" + u.Email
		}
		require.NoError(t, store.Users().Create(context.Background(), &u))
	}
}

// newProjectFixture: admin=1, bob=2 (member), carol=3 (member)
func newProjectFixture(t *testing.T) (*ProjectService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	seedUsers(t, store,
		domain.User{Name: "Alice", Email: "alice@example.com", Role: domain.RoleAdmin},
		domain.User{Name: "Bob", Email: "bob@example.com", Role: domain.RoleMember},
		domain.User{Name: "Carol", Email: "carol@example.com", Role: domain.RoleMember},
	)
	return NewProjectService(store.Projects(), store.Users()), store
}

func alphaInput() *domain.CreateProjectInput {
	return &domain.CreateProjectInput{
		Name:    "Alpha",
		UserIDs: []int64{2, 3},
		Tasks: []domain.TaskInput{
			{Title: "T1", Status: "todo", AssignedToID: int64Ptr(2)},
		},
	}
}
