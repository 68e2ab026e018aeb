package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/aidar/project-tracker/internal/domain"
	"github.com/aidar/project-tracker/internal/repository"
)

// maxParallelLookups bounds the fan-out of user existence checks
const maxParallelLookups = 8

// ProjectService handles business logic for projects and their tasks
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// Create creates a project with participants and tasks on behalf of an admin.
// Checks run in order: input, duplicate name, admin role, referenced users.
// Nothing is written unless every check passes.
func (s *ProjectService) Create(ctx context.Context, input *domain.CreateProjectInput, requesterID int64) (*domain.Project, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	// Check if the creator already has a project with this name
	exists, err := s.projectRepo.ExistsForCreator(ctx, input.Name, requesterID)
	if err != nil {
		return nil, domain.Internal("failed to check project name", err)
	}
	if exists {
		return nil, domain.ErrProjectExists
	}

	// Only admins may create projects; an unknown requester is treated as non-admin
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, domain.Internal("failed to load requester", err)
	}
	if !requester.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	if err := s.ensureUsersExist(ctx, input.ReferencedUserIDs()); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.Create(ctx, requesterID, input)
	if err != nil {
		return nil, domain.Internal("failed to create project", err)
	}

	slog.InfoContext(ctx, "Project created",
		"project_id", project.ID,
		"creator_id", requesterID,
		"participants", len(project.Users),
		"tasks", len(project.Tasks),
	)

	return project.Sanitized(), nil
}

// FindAll returns every project with creator, participants and tasks, passwords stripped
func (s *ProjectService) FindAll(ctx context.Context) ([]*domain.Project, error) {
	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, domain.Internal("failed to list projects", err)
	}
	return domain.SanitizeProjects(projects), nil
}

// FindAllByUser returns projects the user created or participates in.
// Each project carries only the tasks assigned to that user.
func (s *ProjectService) FindAllByUser(ctx context.Context, userID int64) ([]*domain.Project, error) {
	projects, err := s.projectRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.Internal("failed to list user projects", err)
	}
	return domain.SanitizeProjects(projects), nil
}

// Update applies a partial update. Only the creator may update a project.
// UserIDs, when present, replaces the participant set; tasks are upserted by ID.
func (s *ProjectService) Update(ctx context.Context, projectID int64, patch *domain.UpdateProjectInput, requesterID int64) (*domain.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if err := s.authorizeCreator(ctx, projectID, requesterID); err != nil {
		return nil, err
	}

	if err := s.ensureUsersExist(ctx, patch.ReferencedUserIDs()); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.Update(ctx, projectID, patch)
	if err != nil {
		return nil, domain.Internal("failed to update project", err)
	}

	slog.InfoContext(ctx, "Project updated", "project_id", projectID, "tasks", len(project.Tasks))

	return project.Sanitized(), nil
}

// Delete removes a project together with its tasks. Only the creator may delete it.
func (s *ProjectService) Delete(ctx context.Context, projectID, requesterID int64) error {
	if err := s.authorizeCreator(ctx, projectID, requesterID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return domain.Internal("failed to delete project", err)
	}

	slog.InfoContext(ctx, "Project deleted", "project_id", projectID)
	return nil
}

func (s *ProjectService) authorizeCreator(ctx context.Context, projectID, requesterID int64) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return domain.Internal("failed to load project", err)
	}
	if !project.IsCreator(requesterID) {
		return domain.ErrForbidden
	}
	return nil
}

// ensureUsersExist looks up every id in parallel and fails with the first missing one.
// Lookups already in flight are allowed to finish; they are read-only.
func (s *ProjectService) ensureUsersExist(ctx context.Context, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}

	var g errgroup.Group
	g.SetLimit(maxParallelLookups)

	for _, id := range userIDs {
		g.Go(func() error {
			if _, err := s.userRepo.GetByID(ctx, id); err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return domain.NewReferenceNotFoundError(id)
				}
				return domain.Internal("failed to check user", err)
			}
			return nil
		})
	}

	return g.Wait()
}
