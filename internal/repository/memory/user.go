package memory

import (
	"context"

	"github.com/aidar/project-tracker/internal/domain"
)

// UserRepository реализует repository.UserRepository в памяти
type UserRepository struct {
	store *Store
}

// Create создает пользователя, проверяя уникальность email
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return domain.ErrEmailExists
		}
	}

	s.nextUserID++
	user.ID = s.nextUserID
	s.users[user.ID] = copyUser(user)
	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return copyUser(u), nil
}

// GetByEmail получает пользователя по email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// List возвращает всех пользователей по возрастанию ID
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*domain.User, 0, len(s.users))
	for _, id := range sortedKeys(s.users) {
		users = append(users, copyUser(s.users[id]))
	}
	return users, nil
}

// Delete удаляет пользователя так же, как внешние ключи схемы:
// создателя удалить нельзя, участие удаляется, назначения обнуляются.
func (r *UserRepository) Delete(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}
	if _, ok := s.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	for _, p := range s.projects {
		if p.creatorID == userID {
			return domain.ErrUserInUse
		}
	}

	for _, p := range s.projects {
		kept := p.userIDs[:0]
		for _, id := range p.userIDs {
			if id != userID {
				kept = append(kept, id)
			}
		}
		p.userIDs = kept
	}
	for _, t := range s.tasks {
		if t.AssignedToID != nil && *t.AssignedToID == userID {
			t.AssignedToID = nil
		}
	}
	delete(s.users, userID)
	return nil
}
