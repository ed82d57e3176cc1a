package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"todo-tracker/internal/model"
)

// TodoInput represents data required to create a todo.
type TodoInput struct {
	Text     string          `json:"text"`
	DueDate  *int64          `json:"dueDate,omitempty"`
	Category *string         `json:"category,omitempty"`
	Priority *model.Priority `json:"priority,omitempty"`
	Notes    *string         `json:"notes,omitempty"`
}

// MutationService creates, updates and deletes records. Every call needs a
// resolved user, and update/delete re-check ownership before touching the store.
type MutationService struct {
	todos      TodoStore
	categories CategoryStore
	log        *slog.Logger
}

func NewMutationService(todos TodoStore, categories CategoryStore, log *slog.Logger) *MutationService {
	return &MutationService{todos: todos, categories: categories, log: log}
}

func (s *MutationService) CreateTodo(ctx context.Context, user model.UserID, input TodoInput) (*model.Todo, error) {
	if user.IsAnonymous() {
		return nil, model.ErrUnauthenticated
	}
	if err := validateText("text", input.Text); err != nil {
		return nil, err
	}
	if err := validatePriority(input.Priority); err != nil {
		return nil, err
	}

	todo := model.Todo{
		Text:      input.Text,
		Completed: false,
		UserID:    user,
		DueDate:   input.DueDate,
		Category:  input.Category,
		Priority:  input.Priority,
		Notes:     input.Notes,
	}
	if err := s.todos.Insert(ctx, &todo); err != nil {
		return nil, err
	}

	s.log.Debug("todo created", "todo_id", todo.ID, "user_id", user)
	return &todo, nil
}

// UpdateTodo merges patch into the caller's todo. Fields left nil keep their value.
func (s *MutationService) UpdateTodo(ctx context.Context, user model.UserID, id string, patch model.TodoPatch) error {
	if user.IsAnonymous() {
		return model.ErrUnauthenticated
	}
	if patch.Text != nil {
		if err := validateText("text", *patch.Text); err != nil {
			return err
		}
	}
	if err := validatePriority(patch.Priority); err != nil {
		return err
	}

	if _, err := ownedBy(ctx, s.todos.Get, user, "todo", id); err != nil {
		return err
	}
	if _, err := s.todos.Patch(ctx, id, patch); err != nil {
		return mapStoreErr(err, "todo", id)
	}

	s.log.Debug("todo updated", "todo_id", id, "user_id", user)
	return nil
}

func (s *MutationService) DeleteTodo(ctx context.Context, user model.UserID, id string) error {
	if user.IsAnonymous() {
		return model.ErrUnauthenticated
	}
	if _, err := ownedBy(ctx, s.todos.Get, user, "todo", id); err != nil {
		return err
	}
	if err := s.todos.Delete(ctx, id); err != nil {
		return mapStoreErr(err, "todo", id)
	}

	s.log.Debug("todo deleted", "todo_id", id, "user_id", user)
	return nil
}

func (s *MutationService) CreateCategory(ctx context.Context, user model.UserID, name, color string) (*model.Category, error) {
	if user.IsAnonymous() {
		return nil, model.ErrUnauthenticated
	}
	if err := validateText("name", name); err != nil {
		return nil, err
	}

	category := model.Category{
		Name:   name,
		Color:  color,
		UserID: user,
	}
	if err := s.categories.Insert(ctx, &category); err != nil {
		return nil, err
	}

	s.log.Debug("category created", "category_id", category.ID, "user_id", user)
	return &category, nil
}

// DeleteCategory removes the category only; todos labelled with its name are left as they are.
func (s *MutationService) DeleteCategory(ctx context.Context, user model.UserID, id string) error {
	if user.IsAnonymous() {
		return model.ErrUnauthenticated
	}
	if _, err := ownedBy(ctx, s.categories.Get, user, "category", id); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return mapStoreErr(err, "category", id)
	}

	s.log.Debug("category deleted", "category_id", id, "user_id", user)
	return nil
}

func validateText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", model.ErrInvalidArgument, field)
	}
	return nil
}

func validatePriority(p *model.Priority) error {
	if p == nil {
		return nil
	}
	_, err := model.ParsePriority(string(*p))
	return err
}

// mapStoreErr keeps a record deleted between the ownership check and the write
// indistinguishable from any other missing record.
func mapStoreErr(err error, kind, id string) error {
	if errors.Is(err, model.ErrNotFound) {
		return notFound(kind, id)
	}
	return err
}
