package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/project-tracker/internal/domain"
)

// querier общий интерфейс пула и транзакции
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProjectRepository реализует repository.ProjectRepository для PostgreSQL
type ProjectRepository struct {
	db *pgxpool.Pool
}

// NewProjectRepository создает новый экземпляр ProjectRepository
func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectSelect = `
	SELECT p.id, p.name, p.description, p.creator_id,
	       u.id, u.name, u.email, u.password, u.role
	FROM projects p
	INNER JOIN users u ON u.id = p.creator_id
`

// ExistsForCreator проверяет, есть ли у создателя проект с таким именем
func (r *ProjectRepository) ExistsForCreator(ctx context.Context, name string, creatorID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM projects WHERE name = $1 AND creator_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, name, creatorID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// Create создает проект, связи с участниками и задачи в одной транзакции
func (r *ProjectRepository) Create(ctx context.Context, creatorID int64, input *domain.CreateProjectInput) (*domain.Project, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx) // Ignore error as it will fail if transaction was committed
	}()

	query := `
		INSERT INTO projects (name, description, creator_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var projectID int64
	err = tx.QueryRow(ctx, query, input.Name, input.Description, creatorID).Scan(&projectID)
	if err != nil {
		if pgErr, ok := pgError(err, codeUniqueViolation); ok && pgErr.ConstraintName == constraintProjectsCreatorName {
			return nil, domain.ErrProjectExists
		}
		if _, ok := pgError(err, codeForeignKeyViolation); ok {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}

	if err := insertParticipants(ctx, tx, projectID, domain.UniqueIDs(input.UserIDs)); err != nil {
		return nil, err
	}

	for i := range input.Tasks {
		if err := insertTask(ctx, tx, projectID, &input.Tasks[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, projectID)
}

// GetByID получает проект со всеми связями
func (r *ProjectRepository) GetByID(ctx context.Context, projectID int64) (*domain.Project, error) {
	projects, err := r.query(ctx, r.db, projectSelect+` WHERE p.id = $1`, nil, projectID)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, domain.ErrProjectNotFound
	}
	return projects[0], nil
}

// List возвращает все проекты
func (r *ProjectRepository) List(ctx context.Context) ([]*domain.Project, error) {
	return r.query(ctx, r.db, projectSelect+` ORDER BY p.id`, nil)
}

// ListByUser возвращает проекты пользователя с его задачами
func (r *ProjectRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Project, error) {
	query := projectSelect + `
		WHERE p.creator_id = $1
		   OR EXISTS (SELECT 1 FROM project_users pu WHERE pu.project_id = p.id AND pu.user_id = $1)
		ORDER BY p.id
	`
	return r.query(ctx, r.db, query, &userID, userID)
}

// Update применяет патч к проекту в одной транзакции
func (r *ProjectRepository) Update(ctx context.Context, projectID int64, patch *domain.UpdateProjectInput) (*domain.Project, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		UPDATE projects
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query, projectID, patch.Name, patch.Description)
	if err != nil {
		if pgErr, ok := pgError(err, codeUniqueViolation); ok && pgErr.ConstraintName == constraintProjectsCreatorName {
			return nil, domain.ErrProjectExists
		}
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, domain.ErrProjectNotFound
	}

	// Список участников заменяется целиком
	if patch.UserIDs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM project_users WHERE project_id = $1`, projectID); err != nil {
			return nil, err
		}
		if err := insertParticipants(ctx, tx, projectID, domain.UniqueIDs(patch.UserIDs)); err != nil {
			return nil, err
		}
	}

	// Задачи: совпавший ID обновляется, остальные создаются, неупомянутые не трогаются
	for i := range patch.Tasks {
		task := &patch.Tasks[i]
		if task.ID != nil {
			updated, err := updateTask(ctx, tx, projectID, task)
			if err != nil {
				return nil, err
			}
			if updated {
				continue
			}
		}
		if err := insertTask(ctx, tx, projectID, task); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, projectID)
}

// Delete удаляет задачи, связи с участниками и проект в одной транзакции
func (r *ProjectRepository) Delete(ctx context.Context, projectID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Задачи удаляются до проекта, чтобы не нарушить внешний ключ
	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE project_id = $1`, projectID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM project_users WHERE project_id = $1`, projectID); err != nil {
		return err
	}

	result, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}

	return tx.Commit(ctx)
}

func insertParticipants(ctx context.Context, q querier, projectID int64, userIDs []int64) error {
	query := `INSERT INTO project_users (project_id, user_id) VALUES ($1, $2)`
	for _, userID := range userIDs {
		if _, err := q.Exec(ctx, query, projectID, userID); err != nil {
			if _, ok := pgError(err, codeForeignKeyViolation); ok {
				return domain.NewReferenceNotFoundError(userID)
			}
			return err
		}
	}
	return nil
}

func insertTask(ctx context.Context, q querier, projectID int64, task *domain.TaskInput) error {
	query := `
		INSERT INTO tasks (title, description, status, assigned_to_id, project_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := q.Exec(ctx, query, task.Title, task.Description, task.Status, task.AssignedToID, projectID)
	return mapAssigneeError(err, task)
}

// updateTask обновляет задачу только если она принадлежит проекту
func updateTask(ctx context.Context, q querier, projectID int64, task *domain.TaskInput) (bool, error) {
	query := `
		UPDATE tasks
		SET title = $1,
		    description = COALESCE($2, description),
		    status = $3,
		    assigned_to_id = COALESCE($4, assigned_to_id)
		WHERE id = $5 AND project_id = $6
	`
	result, err := q.Exec(ctx, query, task.Title, task.Description, task.Status, task.AssignedToID, *task.ID, projectID)
	if err != nil {
		return false, mapAssigneeError(err, task)
	}
	return result.RowsAffected() > 0, nil
}

func mapAssigneeError(err error, task *domain.TaskInput) error {
	if err == nil {
		return nil
	}
	if _, ok := pgError(err, codeForeignKeyViolation); ok && task.AssignedToID != nil {
		return domain.NewReferenceNotFoundError(*task.AssignedToID)
	}
	return err
}

// query выбирает проекты и догружает участников и задачи.
// Если taskAssignee задан, у проектов остаются только задачи этого пользователя.
func (r *ProjectRepository) query(ctx context.Context, q querier, sql string, taskAssignee *int64, args ...any) ([]*domain.Project, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	projects := []*domain.Project{}
	byID := make(map[int64]*domain.Project)
	for rows.Next() {
		var p domain.Project
		var creator domain.User
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.CreatorID,
			&creator.ID, &creator.Name, &creator.Email, &creator.Password, &creator.Role,
		); err != nil {
			rows.Close()
			return nil, err
		}
		p.Creator = &creator
		p.Users = []*domain.User{}
		p.Tasks = []*domain.Task{}
		projects = append(projects, &p)
		byID[p.ID] = &p
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(projects) == 0 {
		return projects, nil
	}

	ids := make([]int64, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}

	if err := loadParticipants(ctx, q, byID, ids); err != nil {
		return nil, err
	}
	if err := loadTasks(ctx, q, byID, ids, taskAssignee); err != nil {
		return nil, err
	}

	return projects, nil
}

func loadParticipants(ctx context.Context, q querier, byID map[int64]*domain.Project, ids []int64) error {
	query := `
		SELECT pu.project_id, u.id, u.name, u.email, u.password, u.role
		FROM project_users pu
		INNER JOIN users u ON u.id = pu.user_id
		WHERE pu.project_id = ANY($1)
		ORDER BY pu.project_id, u.id
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var projectID int64
		var user domain.User
		if err := rows.Scan(&projectID, &user.ID, &user.Name, &user.Email, &user.Password, &user.Role); err != nil {
			return err
		}
		if p, ok := byID[projectID]; ok {
			p.Users = append(p.Users, &user)
		}
	}

	return rows.Err()
}

func loadTasks(ctx context.Context, q querier, byID map[int64]*domain.Project, ids []int64, assignee *int64) error {
	query := `
		SELECT id, title, description, status, assigned_to_id, project_id
		FROM tasks
		WHERE project_id = ANY($1)
		  AND ($2::bigint IS NULL OR assigned_to_id = $2)
		ORDER BY project_id, id
	`

	rows, err := q.Query(ctx, query, ids, assignee)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(&task.ID, &task.Title, &task.Description, &task.Status, &task.AssignedToID, &task.ProjectID); err != nil {
			return err
		}
		if p, ok := byID[task.ProjectID]; ok {
			p.Tasks = append(p.Tasks, &task)
		}
	}

	return rows.Err()
}
