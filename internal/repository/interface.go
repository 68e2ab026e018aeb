package repository

import (
	"context"

	"github.com/aidar/project-tracker/internal/domain"
)

// UserRepository определяет методы для работы с данными пользователей
type UserRepository interface {
	// Create создает пользователя и заполняет его ID.
	// Возвращает domain.ErrEmailExists при нарушении уникальности email.
	Create(ctx context.Context, user *domain.User) error

	// GetByID получает пользователя по ID
	GetByID(ctx context.Context, userID int64) (*domain.User, error)

	// GetByEmail получает пользователя по email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List возвращает всех пользователей вместе с хешами паролей
	List(ctx context.Context) ([]*domain.User, error)

	// Delete удаляет пользователя
	Delete(ctx context.Context, userID int64) error
}

// ProjectRepository определяет методы для работы с проектами и их задачами
type ProjectRepository interface {
	// ExistsForCreator проверяет, есть ли у создателя проект с таким именем
	ExistsForCreator(ctx context.Context, name string, creatorID int64) (bool, error)

	// Create в одной транзакции создает проект, связи с участниками и задачи
	Create(ctx context.Context, creatorID int64, input *domain.CreateProjectInput) (*domain.Project, error)

	// GetByID получает проект с создателем, участниками и всеми задачами
	GetByID(ctx context.Context, projectID int64) (*domain.Project, error)

	// List возвращает все проекты с создателем, участниками и задачами
	List(ctx context.Context) ([]*domain.Project, error)

	// ListByUser возвращает проекты, где пользователь создатель или участник.
	// В каждом проекте остаются только задачи, назначенные этому пользователю.
	ListByUser(ctx context.Context, userID int64) ([]*domain.Project, error)

	// Update в одной транзакции применяет патч: поля, замену участников и upsert задач
	Update(ctx context.Context, projectID int64, patch *domain.UpdateProjectInput) (*domain.Project, error)

	// Delete удаляет задачи проекта, связи с участниками и сам проект
	Delete(ctx context.Context, projectID int64) error
}
