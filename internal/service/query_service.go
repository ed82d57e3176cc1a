package service

import (
	"context"
	"fmt"

	"todo-tracker/internal/model"
)

// QueryService answers read requests. Every result is filtered to the caller's
// own records; an anonymous caller gets empty results rather than an error.
type QueryService struct {
	todos      TodoStore
	categories CategoryStore
}

func NewQueryService(todos TodoStore, categories CategoryStore) *QueryService {
	return &QueryService{todos: todos, categories: categories}
}

func (s *QueryService) ListTodos(ctx context.Context, user model.UserID) ([]model.Todo, error) {
	if user.IsAnonymous() {
		return []model.Todo{}, nil
	}
	return s.todos.ListByUser(ctx, user)
}

func (s *QueryService) ListTodosByCompleted(ctx context.Context, user model.UserID, completed bool) ([]model.Todo, error) {
	if user.IsAnonymous() {
		return []model.Todo{}, nil
	}
	return s.todos.ListByUserAndCompleted(ctx, user, completed)
}

// ListTodosByDueDate returns todos due within [start, end], both inclusive, in
// epoch milliseconds. Todos without a due date are never included.
func (s *QueryService) ListTodosByDueDate(ctx context.Context, user model.UserID, start, end int64) ([]model.Todo, error) {
	if start > end {
		return nil, fmt.Errorf("%w: start %d is after end %d", model.ErrInvalidRange, start, end)
	}
	if user.IsAnonymous() {
		return []model.Todo{}, nil
	}
	return s.todos.ListByUserAndDueDate(ctx, user, start, end)
}

func (s *QueryService) GetTodo(ctx context.Context, user model.UserID, id string) (*model.Todo, error) {
	return ownedBy(ctx, s.todos.Get, user, "todo", id)
}

func (s *QueryService) ListCategories(ctx context.Context, user model.UserID) ([]model.Category, error) {
	if user.IsAnonymous() {
		return []model.Category{}, nil
	}
	return s.categories.ListByUser(ctx, user)
}

func (s *QueryService) GetCategory(ctx context.Context, user model.UserID, id string) (*model.Category, error) {
	return ownedBy(ctx, s.categories.Get, user, "category", id)
}
