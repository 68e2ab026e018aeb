package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/repository"
	"github.com/aidar/project-tracker/internal/repository/memory"
)

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("admin creates project with participants and tasks", func(t *testing.T) {
		svc, store := newProjectFixture(t)

		project, err := svc.Create(ctx, alphaInput(), 1)
		require.NoError(t, err)

		assert.Equal(t, "Alpha", project.Name)
		assert.Equal(t, int64(1), project.CreatorID)
		assert.Len(t, project.Users, 2)
		require.Len(t, project.Tasks, 1)
		assert.Equal(t, "T1", project.Tasks[0].Title)
		assert.Equal(t, int64(2), *project.Tasks[0].AssignedToID)
		assert.Equal(t, project.ID, project.Tasks[0].ProjectID)
		assert.Equal(t, 1, store.ProjectCount())

		for _, u := range project.Users {
			assert.Empty(t, u.Password)
		}
		assert.Empty(t, project.Creator.Password)
	})

	t.Run("same name for same creator is a duplicate", func(t *testing.T) {
		svc, store := newProjectFixture(t)

		_, err := svc.Create(ctx, alphaInput(), 1)
		require.NoError(t, err)

		_, err = svc.Create(ctx, alphaInput(), 1)
		assert.ErrorIs(t, err, domain.ErrProjectExists)
		assert.Equal(t, domain.KindDuplicateResource, domain.KindOf(err))
		assert.Equal(t, 1, store.ProjectCount())
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		svc, store := newProjectFixture(t)

		_, err := svc.Create(ctx, alphaInput(), 2)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Equal(t, 0, store.ProjectCount())
	})

	t.Run("unknown requester is forbidden", func(t *testing.T) {
		svc, store := newProjectFixture(t)

		_, err := svc.Create(ctx, alphaInput(), 99)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Equal(t, 0, store.ProjectCount())
	})

	t.Run("missing participant aborts without writes", func(t *testing.T) {
		svc, store := newProjectFixture(t)

		input := alphaInput()
		input.UserIDs = []int64{2, 42}

		_, err := svc.Create(ctx, input, 1)
		require.ErrorIs(t, err, domain.ErrReferenceNotFound)

		var refErr *domain.ReferenceNotFoundError
		require.True(t, errors.As(err, &refErr))
		assert.Equal(t, int64(42), refErr.UserID)
		assert.Equal(t, 0, store.ProjectCount())
	})

	t.Run("missing assignee aborts without writes", func(t *testing.T) {
		svc, store := newProjectFixture(t)

		input := alphaInput()
		input.Tasks = append(input.Tasks, domain.TaskInput{Title: "T2", Status: "todo", AssignedToID: int64Ptr(77)})

		_, err := svc.Create(ctx, input, 1)
		var refErr *domain.ReferenceNotFoundError
		require.True(t, errors.As(err, &refErr))
		assert.Equal(t, int64(77), refErr.UserID)
		assert.Equal(t, 0, store.ProjectCount())
	})

	t.Run("invalid input is rejected before any lookup", func(t *testing.T) {
		svc, store := newProjectFixture(t)

		_, err := svc.Create(ctx, &domain.CreateProjectInput{Name: ""}, 1)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, 0, store.ProjectCount())
	})

	t.Run("project without participants and tasks", func(t *testing.T) {
		svc, _ := newProjectFixture(t)

		project, err := svc.Create(ctx, &domain.CreateProjectInput{Name: "Solo", Description: strPtr("just me")}, 1)
		require.NoError(t, err)
		assert.Empty(t, project.Users)
		assert.Empty(t, project.Tasks)
		assert.Equal(t, "just me", *project.Description)
	})

	t.Run("gateway failure becomes internal error", func(t *testing.T) {
		svc, store := newProjectFixture(t)
		store.FailNext(errors.New("connection reset by peer"))

		_, err := svc.Create(ctx, alphaInput(), 1)
		require.ErrorIs(t, err, domain.ErrInternal)
		assert.Contains(t, err.Error(), "connection reset by peer")
		assert.Equal(t, 0, store.ProjectCount())
	})

	t.Run("user deleted between check and write maps to missing reference", func(t *testing.T) {
		_, store := newProjectFixture(t)
		svc := NewProjectService(store.Projects(), staleUsers{UserRepository: store.Users()})

		input := alphaInput()
		input.UserIDs = []int64{2, 3, 8}

		_, err := svc.Create(ctx, input, 1)
		assert.ErrorIs(t, err, domain.ErrReferenceNotFound)
		assert.Equal(t, 0, store.ProjectCount())
	})
}

// staleUsers отвечает, что любой пользователь существует, имитируя удаление после проверки
type staleUsers struct {
	repository.UserRepository
}

func (s staleUsers) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	if u, err := s.UserRepository.GetByID(ctx, userID); err == nil {
		return u, nil
	}
	return &domain.User{ID: userID, Role: domain.RoleMember}, nil
}

func TestProjectService_FindAll(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProjectFixture(t)

	_, err := svc.Create(ctx, alphaInput(), 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, &domain.CreateProjectInput{Name: "Beta"}, 1)
	require.NoError(t, err)

	first, err := svc.FindAll(ctx)
	require.NoError(t, err)
	second, err := svc.FindAll(ctx)
	require.NoError(t, err)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)

	body, err := json.Marshal(first)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "password")
	assert.NotContains(t, string(body), "hash-")
}

func TestProjectService_FindAllByUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := newProjectFixture(t)

	_, err := svc.Create(ctx, &domain.CreateProjectInput{
		Name:    "Alpha",
		UserIDs: []int64{2},
		Tasks: []domain.TaskInput{
			{Title: "for bob", Status: "todo", AssignedToID: int64Ptr(2)},
			{Title: "for carol", Status: "todo", AssignedToID: int64Ptr(3)},
			{Title: "unassigned", Status: "todo"},
		},
	}, 1)
	require.NoError(t, err)
	_, err = svc.Create(ctx, &domain.CreateProjectInput{Name: "Gamma", UserIDs: []int64{3}}, 1)
	require.NoError(t, err)

	t.Run("participant sees only own tasks", func(t *testing.T) {
		projects, err := svc.FindAllByUser(ctx, 2)
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "Alpha", projects[0].Name)
		require.Len(t, projects[0].Tasks, 1)
		assert.Equal(t, "for bob", projects[0].Tasks[0].Title)
		assert.Len(t, projects[0].Users, 1)
	})

	t.Run("task assignee who is not a participant does not see the project", func(t *testing.T) {
		projects, err := svc.FindAllByUser(ctx, 3)
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "Gamma", projects[0].Name)
		assert.Empty(t, projects[0].Tasks)
	})

	t.Run("creator sees all own projects", func(t *testing.T) {
		projects, err := svc.FindAllByUser(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, projects, 2)
		for _, p := range projects {
			assert.Empty(t, p.Tasks, "creator has no assigned tasks")
			assert.Empty(t, p.Creator.Password)
		}
	})
}

func TestProjectService_Update(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*ProjectService, *memory.Store, *domain.Project) {
		svc, store := newProjectFixture(t)
		project, err := svc.Create(ctx, alphaInput(), 1)
		require.NoError(t, err)
		return svc, store, project
	}

	t.Run("upserts tasks by id", func(t *testing.T) {
		svc, store, p := setup(t)
		before := store.TaskCount(p.ID)
		existing := p.Tasks[0].ID

		updated, err := svc.Update(ctx, p.ID, &domain.UpdateProjectInput{
			Tasks: []domain.TaskInput{
				{ID: &existing, Title: "T1 renamed", Status: "done"},
				{Title: "T2", Status: "todo", AssignedToID: int64Ptr(3)},
			},
		}, 1)
		require.NoError(t, err)

		assert.Equal(t, before+1, store.TaskCount(p.ID))
		require.Len(t, updated.Tasks, 2)
		assert.Equal(t, "T1 renamed", updated.Tasks[0].Title)
		assert.Equal(t, "done", updated.Tasks[0].Status)
		assert.Equal(t, int64(2), *updated.Tasks[0].AssignedToID, "omitted assignee keeps old value")
		assert.Equal(t, "T2", updated.Tasks[1].Title)
		assert.Equal(t, "Alpha", updated.Name, "omitted name is unchanged")
	})

	t.Run("unknown task id is inserted", func(t *testing.T) {
		svc, store, p := setup(t)
		before := store.TaskCount(p.ID)

		_, err := svc.Update(ctx, p.ID, &domain.UpdateProjectInput{
			Tasks: []domain.TaskInput{{ID: int64Ptr(999), Title: "new", Status: "todo"}},
		}, 1)
		require.NoError(t, err)
		assert.Equal(t, before+1, store.TaskCount(p.ID))
	})

	t.Run("task id of another project is inserted, not stolen", func(t *testing.T) {
		svc, _, p := setup(t)
		other, err := svc.Create(ctx, &domain.CreateProjectInput{
			Name:  "Other",
			Tasks: []domain.TaskInput{{Title: "foreign", Status: "todo"}},
		}, 1)
		require.NoError(t, err)
		foreign := other.Tasks[0].ID

		_, err = svc.Update(ctx, p.ID, &domain.UpdateProjectInput{
			Tasks: []domain.TaskInput{{ID: &foreign, Title: "mine", Status: "todo"}},
		}, 1)
		require.NoError(t, err)

		all, err := svc.FindAll(ctx)
		require.NoError(t, err)
		for _, proj := range all {
			if proj.ID == other.ID {
				require.Len(t, proj.Tasks, 1)
				assert.Equal(t, "foreign", proj.Tasks[0].Title)
			}
		}
	})

	t.Run("user ids replace participants", func(t *testing.T) {
		svc, _, p := setup(t)

		updated, err := svc.Update(ctx, p.ID, &domain.UpdateProjectInput{
			Name:        strPtr("Alpha v2"),
			Description: strPtr("second iteration"),
			UserIDs:     []int64{3},
		}, 1)
		require.NoError(t, err)

		require.Len(t, updated.Users, 1)
		assert.Equal(t, int64(3), updated.Users[0].ID)
		assert.Equal(t, "Alpha v2", updated.Name)
		assert.Equal(t, "second iteration", *updated.Description)
	})

	t.Run("empty user ids clear participants", func(t *testing.T) {
		svc, _, p := setup(t)

		updated, err := svc.Update(ctx, p.ID, &domain.UpdateProjectInput{UserIDs: []int64{}}, 1)
		require.NoError(t, err)
		assert.Empty(t, updated.Users)
	})

	t.Run("non-creator is forbidden and nothing changes", func(t *testing.T) {
		svc, store, p := setup(t)
		before := store.TaskCount(p.ID)

		_, err := svc.Update(ctx, p.ID, &domain.UpdateProjectInput{
			Name:  strPtr("hijacked"),
			Tasks: []domain.TaskInput{{Title: "x", Status: "todo"}},
		}, 2)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Equal(t, before, store.TaskCount(p.ID))

		all, err := svc.FindAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Alpha", all[0].Name)
	})

	t.Run("missing project", func(t *testing.T) {
		svc, _, _ := setup(t)

		_, err := svc.Update(ctx, 404, &domain.UpdateProjectInput{Name: strPtr("x")}, 1)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
		assert.Equal(t, domain.KindResourceNotFound, domain.KindOf(err))
	})

	t.Run("missing participant leaves project untouched", func(t *testing.T) {
		svc, _, p := setup(t)

		_, err := svc.Update(ctx, p.ID, &domain.UpdateProjectInput{
			Name:    strPtr("renamed"),
			UserIDs: []int64{2, 50},
		}, 1)
		assert.ErrorIs(t, err, domain.ErrReferenceNotFound)

		all, err := svc.FindAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Alpha", all[0].Name)
		assert.Len(t, all[0].Users, 2)
	})

	t.Run("missing assignee in patch", func(t *testing.T) {
		svc, _, p := setup(t)

		_, err := svc.Update(ctx, p.ID, &domain.UpdateProjectInput{
			Tasks: []domain.TaskInput{{Title: "x", Status: "todo", AssignedToID: int64Ptr(51)}},
		}, 1)
		assert.ErrorIs(t, err, domain.ErrReferenceNotFound)
	})
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("creator deletes project and its tasks", func(t *testing.T) {
		svc, store := newProjectFixture(t)
		project, err := svc.Create(ctx, alphaInput(), 1)
		require.NoError(t, err)
		keep, err := svc.Create(ctx, &domain.CreateProjectInput{Name: "Keep"}, 1)
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, project.ID, 1))

		assert.Equal(t, 0, store.TaskCount(project.ID))
		all, err := svc.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, keep.ID, all[0].ID)
	})

	t.Run("non-creator is forbidden", func(t *testing.T) {
		svc, store := newProjectFixture(t)
		project, err := svc.Create(ctx, alphaInput(), 1)
		require.NoError(t, err)

		err = svc.Delete(ctx, project.ID, 2)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Equal(t, 1, store.ProjectCount())
		assert.Equal(t, 1, store.TaskCount(project.ID))
	})

	t.Run("missing project", func(t *testing.T) {
		svc, _ := newProjectFixture(t)

		err := svc.Delete(ctx, 5, 1)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})
}
