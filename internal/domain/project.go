package domain

import (
	"fmt"
	"strings"
)

// Project представляет проект с участниками и задачами
type Project struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	CreatorID   int64   `json:"creatorId"`
	Creator     *User   `json:"creator,omitempty"`
	Users       []*User `json:"users"`
	Tasks       []*Task `json:"tasks"`
}

// IsCreator проверяет, является ли пользователь создателем проекта
func (p *Project) IsCreator(userID int64) bool {
	return p.CreatorID == userID
}

// HasParticipant проверяет, связан ли пользователь с проектом как участник
func (p *Project) HasParticipant(userID int64) bool {
	for _, u := range p.Users {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// Sanitized возвращает копию проекта, в которой у всех пользователей очищены пароли
func (p *Project) Sanitized() *Project {
	if p == nil {
		return nil
	}
	clean := *p
	clean.Creator = p.Creator.Sanitized()
	clean.Users = SanitizeUsers(p.Users)
	if clean.Tasks == nil {
		clean.Tasks = []*Task{}
	}
	return &clean
}

// SanitizeProjects очищает пароли во всех проектах списка
func SanitizeProjects(projects []*Project) []*Project {
	result := make([]*Project, 0, len(projects))
	for _, p := range projects {
		result = append(result, p.Sanitized())
	}
	return result
}

// Task представляет задачу внутри проекта
type Task struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Status       string  `json:"status"`
	AssignedToID *int64  `json:"assignedToId"`
	ProjectID    int64   `json:"projectId"`
}

// TaskInput описывает задачу в запросах на создание и обновление проекта.
// ID учитывается только при обновлении: совпадающий ID обновляет задачу, иначе создается новая.
type TaskInput struct {
	ID           *int64  `json:"id,omitempty"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	Status       string  `json:"status"`
	AssignedToID *int64  `json:"assignedToId,omitempty"`
}

func (t *TaskInput) validate(index int) error {
	field := fmt.Sprintf("tasks[%d]", index)
	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError(field+".title", "task title is required")
	}
	if strings.TrimSpace(t.Status) == "" {
		return NewValidationError(field+".status", "task status is required")
	}
	return nil
}

// CreateProjectInput содержит данные для создания проекта
type CreateProjectInput struct {
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	UserIDs     []int64     `json:"userIds,omitempty"`
	Tasks       []TaskInput `json:"tasks,omitempty"`
}

// Validate проверяет входные данные до обращения к хранилищу
func (in *CreateProjectInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	for i := range in.Tasks {
		if err := in.Tasks[i].validate(i); err != nil {
			return err
		}
	}
	return nil
}

// ReferencedUserIDs возвращает уникальные ID участников и исполнителей задач в порядке появления
func (in *CreateProjectInput) ReferencedUserIDs() []int64 {
	return referencedUserIDs(in.UserIDs, in.Tasks)
}

// UpdateProjectInput содержит частичное обновление проекта.
// nil означает "не менять"; UserIDs, если задан, полностью заменяет состав участников.
type UpdateProjectInput struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	UserIDs     []int64     `json:"userIds,omitempty"`
	Tasks       []TaskInput `json:"tasks,omitempty"`
}

// Validate проверяет патч до обращения к хранилищу
func (in *UpdateProjectInput) Validate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return NewValidationError("name", "name must not be empty")
	}
	for i := range in.Tasks {
		if err := in.Tasks[i].validate(i); err != nil {
			return err
		}
	}
	return nil
}

// ReferencedUserIDs возвращает уникальные ID новых участников и исполнителей задач
func (in *UpdateProjectInput) ReferencedUserIDs() []int64 {
	return referencedUserIDs(in.UserIDs, in.Tasks)
}

func referencedUserIDs(userIDs []int64, tasks []TaskInput) []int64 {
	seen := make(map[int64]struct{}, len(userIDs)+len(tasks))
	ids := make([]int64, 0, len(userIDs)+len(tasks))
	add := func(id int64) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, t := range tasks {
		if t.AssignedToID != nil {
			add(*t.AssignedToID)
		}
	}
	for _, id := range userIDs {
		add(id)
	}
	return ids
}

// UniqueIDs убирает повторы, сохраняя порядок
func UniqueIDs(ids []int64) []int64 {
	if ids == nil {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
