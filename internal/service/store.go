package service

import (
	"context"

	"todo-tracker/internal/model"
)

// TodoStore is the record store for todos. Get, Patch and Delete return
// model.ErrNotFound for an unknown id.
type TodoStore interface {
	Insert(ctx context.Context, todo *model.Todo) error
	Get(ctx context.Context, id string) (*model.Todo, error)
	ListByUser(ctx context.Context, userID model.UserID) ([]model.Todo, error)
	ListByUserAndCompleted(ctx context.Context, userID model.UserID, completed bool) ([]model.Todo, error)
	// ListByUserAndDueDate returns todos whose due date lies in [start, end].
	ListByUserAndDueDate(ctx context.Context, userID model.UserID, start, end int64) ([]model.Todo, error)
	Patch(ctx context.Context, id string, patch model.TodoPatch) (*model.Todo, error)
	Delete(ctx context.Context, id string) error
}

// CategoryStore is the record store for categories.
type CategoryStore interface {
	Insert(ctx context.Context, category *model.Category) error
	Get(ctx context.Context, id string) (*model.Category, error)
	ListByUser(ctx context.Context, userID model.UserID) ([]model.Category, error)
	Delete(ctx context.Context, id string) error
}
