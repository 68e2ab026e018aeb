// Package memory содержит реализацию репозиториев в памяти с теми же
// ограничениями целостности, что и схема PostgreSQL. Используется в тестах.
package memory

import (
	"sort"
	"sync"

	"github.com/aidar/project-tracker/internal/domain"
)

// Store хранит пользователей, проекты и задачи под одним мьютексом
type Store struct {
	mu           sync.RWMutex
	users        map[int64]*domain.User
	projects     map[int64]*projectRow
	tasks        map[int64]*domain.Task
	nextUserID   int64
	nextProjID   int64
	nextTaskID   int64
	failNextWith error
}

type projectRow struct {
	id          int64
	name        string
	description *string
	creatorID   int64
	userIDs     []int64
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		users:    make(map[int64]*domain.User),
		projects: make(map[int64]*projectRow),
		tasks:    make(map[int64]*domain.Task),
	}
}

// FailNext заставляет следующую операцию записи вернуть err
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextWith = err
}

func (s *Store) takeFailure() error {
	err := s.failNextWith
	s.failNextWith = nil
	return err
}

// Users возвращает репозиторий пользователей поверх хранилища
func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

// Projects возвращает репозиторий проектов поверх хранилища
func (s *Store) Projects() *ProjectRepository {
	return &ProjectRepository{store: s}
}

// ProjectCount возвращает количество проектов
func (s *Store) ProjectCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}

// TaskCount возвращает количество задач проекта
func (s *Store) TaskCount(projectID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			count++
		}
	}
	return count
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func copyTask(t *domain.Task) *domain.Task {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.AssignedToID != nil {
		a := *t.AssignedToID
		c.AssignedToID = &a
	}
	return &c
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
