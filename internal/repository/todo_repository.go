package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"todo-tracker/internal/model"
)

// TodoRepository stores todos in SQL. Its indexes are declared on model.Todo.
type TodoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Insert(ctx context.Context, todo *model.Todo) error {
	todo.ID = uuid.NewString()
	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (r *TodoRepository) Get(ctx context.Context, id string) (*model.Todo, error) {
	var todo model.Todo
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&todo).Error
	switch {
	case err == nil:
		return &todo, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, model.ErrNotFound
	default:
		return nil, fmt.Errorf("get todo: %w", err)
	}
}

func (r *TodoRepository) ListByUser(ctx context.Context, userID model.UserID) ([]model.Todo, error) {
	todos := []model.Todo{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (r *TodoRepository) ListByUserAndCompleted(ctx context.Context, userID model.UserID, completed bool) ([]model.Todo, error) {
	todos := []model.Todo{}
	if err := r.db.WithContext(ctx).Where("user_id = ? AND completed = ?", userID, completed).
		Order("created_at ASC, id ASC").
		Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("list todos by completed: %w", err)
	}
	return todos, nil
}

func (r *TodoRepository) ListByUserAndDueDate(ctx context.Context, userID model.UserID, start, end int64) ([]model.Todo, error) {
	todos := []model.Todo{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND due_date IS NOT NULL AND due_date >= ? AND due_date <= ?", userID, start, end).
		Order("due_date ASC, created_at ASC").
		Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("list todos by due date: %w", err)
	}
	return todos, nil
}

// Patch merges the supplied fields in a single UPDATE and returns the stored row.
func (r *TodoRepository) Patch(ctx context.Context, id string, patch model.TodoPatch) (*model.Todo, error) {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if patch.Text != nil {
		updates["text"] = *patch.Text
	}
	if patch.Completed != nil {
		updates["completed"] = *patch.Completed
	}
	if patch.DueDate != nil {
		updates["due_date"] = *patch.DueDate
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.Priority != nil {
		updates["priority"] = string(*patch.Priority)
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}

	var todo model.Todo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Todo{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("patch todo: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return model.ErrNotFound
		}
		if err := tx.Where("id = ?", id).First(&todo).Error; err != nil {
			return fmt.Errorf("reload todo: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *TodoRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Todo{})
	if res.Error != nil {
		return fmt.Errorf("delete todo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
