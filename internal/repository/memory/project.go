package memory

import (
	"context"

	"github.com/aidar/project-tracker/internal/domain"
)

// ProjectRepository реализует repository.ProjectRepository в памяти
type ProjectRepository struct {
	store *Store
}

// ExistsForCreator проверяет, есть ли у создателя проект с таким именем
func (r *ProjectRepository) ExistsForCreator(ctx context.Context, name string, creatorID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.nameTaken(name, creatorID, 0), nil
}

// Create проверяет все ссылки и только затем записывает проект, участников и задачи
func (r *ProjectRepository) Create(ctx context.Context, creatorID int64, input *domain.CreateProjectInput) (*domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	if s.nameTaken(input.Name, creatorID, 0) {
		return nil, domain.ErrProjectExists
	}
	if _, ok := s.users[creatorID]; !ok {
		return nil, domain.ErrForbidden
	}
	userIDs := domain.UniqueIDs(input.UserIDs)
	if err := s.checkReferences(userIDs, input.Tasks); err != nil {
		return nil, err
	}

	s.nextProjID++
	row := &projectRow{
		id:          s.nextProjID,
		name:        input.Name,
		description: copyString(input.Description),
		creatorID:   creatorID,
		userIDs:     append([]int64{}, userIDs...),
	}
	s.projects[row.id] = row
	for i := range input.Tasks {
		s.insertTask(row.id, &input.Tasks[i])
	}

	return s.build(row, nil), nil
}

// GetByID получает проект со всеми связями
func (r *ProjectRepository) GetByID(ctx context.Context, projectID int64) (*domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.projects[projectID]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return s.build(row, nil), nil
}

// List возвращает все проекты по возрастанию ID
func (r *ProjectRepository) List(ctx context.Context) ([]*domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make([]*domain.Project, 0, len(s.projects))
	for _, id := range sortedKeys(s.projects) {
		projects = append(projects, s.build(s.projects[id], nil))
	}
	return projects, nil
}

// ListByUser возвращает проекты пользователя только с его задачами
func (r *ProjectRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := []*domain.Project{}
	for _, id := range sortedKeys(s.projects) {
		project := s.build(s.projects[id], &userID)
		if !project.IsCreator(userID) && !project.HasParticipant(userID) {
			continue
		}
		projects = append(projects, project)
	}
	return projects, nil
}

// Update применяет патч целиком или не применяет ничего
func (r *ProjectRepository) Update(ctx context.Context, projectID int64, patch *domain.UpdateProjectInput) (*domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	row, ok := s.projects[projectID]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	if patch.Name != nil && s.nameTaken(*patch.Name, row.creatorID, row.id) {
		return nil, domain.ErrProjectExists
	}
	userIDs := domain.UniqueIDs(patch.UserIDs)
	if err := s.checkReferences(userIDs, patch.Tasks); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		row.name = *patch.Name
	}
	if patch.Description != nil {
		row.description = copyString(patch.Description)
	}
	if patch.UserIDs != nil {
		row.userIDs = append([]int64{}, userIDs...)
	}
	for i := range patch.Tasks {
		task := &patch.Tasks[i]
		if task.ID != nil {
			if existing, ok := s.tasks[*task.ID]; ok && existing.ProjectID == row.id {
				existing.Title = task.Title
				existing.Status = task.Status
				if task.Description != nil {
					d := *task.Description
					existing.Description = &d
				}
				if task.AssignedToID != nil {
					a := *task.AssignedToID
					existing.AssignedToID = &a
				}
				continue
			}
		}
		s.insertTask(row.id, task)
	}

	return s.build(row, nil), nil
}

// Delete удаляет задачи проекта и сам проект
func (r *ProjectRepository) Delete(ctx context.Context, projectID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}
	if _, ok := s.projects[projectID]; !ok {
		return domain.ErrProjectNotFound
	}
	for id, t := range s.tasks {
		if t.ProjectID == projectID {
			delete(s.tasks, id)
		}
	}
	delete(s.projects, projectID)
	return nil
}

func (s *Store) nameTaken(name string, creatorID, exceptID int64) bool {
	for _, p := range s.projects {
		if p.id != exceptID && p.creatorID == creatorID && p.name == name {
			return true
		}
	}
	return false
}

func (s *Store) checkReferences(userIDs []int64, tasks []domain.TaskInput) error {
	for _, id := range userIDs {
		if _, ok := s.users[id]; !ok {
			return domain.NewReferenceNotFoundError(id)
		}
	}
	for _, t := range tasks {
		if t.AssignedToID == nil {
			continue
		}
		if _, ok := s.users[*t.AssignedToID]; !ok {
			return domain.NewReferenceNotFoundError(*t.AssignedToID)
		}
	}
	return nil
}

func (s *Store) insertTask(projectID int64, in *domain.TaskInput) {
	s.nextTaskID++
	task := &domain.Task{
		ID:           s.nextTaskID,
		Title:        in.Title,
		Description:  in.Description,
		Status:       in.Status,
		AssignedToID: in.AssignedToID,
		ProjectID:    projectID,
	}
	s.tasks[task.ID] = copyTask(task)
}

// build собирает проект; assignee ограничивает список задач
func (s *Store) build(row *projectRow, assignee *int64) *domain.Project {
	p := &domain.Project{
		ID:          row.id,
		Name:        row.name,
		Description: copyString(row.description),
		CreatorID:   row.creatorID,
		Users:       []*domain.User{},
		Tasks:       []*domain.Task{},
	}
	if creator, ok := s.users[row.creatorID]; ok {
		p.Creator = copyUser(creator)
	}
	for _, id := range row.userIDs {
		if u, ok := s.users[id]; ok {
			p.Users = append(p.Users, copyUser(u))
		}
	}
	for _, id := range sortedKeys(s.tasks) {
		t := s.tasks[id]
		if t.ProjectID != row.id {
			continue
		}
		if assignee != nil && (t.AssignedToID == nil || *t.AssignedToID != *assignee) {
			continue
		}
		p.Tasks = append(p.Tasks, copyTask(t))
	}
	return p
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
