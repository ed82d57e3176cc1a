package service

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"todo-tracker/internal/model"
	"todo-tracker/internal/repository"
	"todo-tracker/internal/repository/memory"
)

const (
	alice model.UserID = "user-alice"
	bob   model.UserID = "user-bob"
)

type backend struct {
	name string
	open func(t *testing.T) (TodoStore, CategoryStore)
}

func backends() []backend {
	return []backend{
		{
			name: "memory",
			open: func(*testing.T) (TodoStore, CategoryStore) {
				return memory.NewTodoStore(), memory.NewCategoryStore()
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) (TodoStore, CategoryStore) {
				t.Helper()
				db, err := repository.NewDB(filepath.Join(t.TempDir(), "todos.db"))
				require.NoError(t, err)
				t.Cleanup(func() {
					if sqlDB, err := db.DB(); err == nil {
						_ = sqlDB.Close()
					}
				})
				return repository.NewTodoRepository(db), repository.NewCategoryRepository(db)
			},
		},
	}
}

type services struct {
	todos     TodoStore
	queries   *QueryService
	mutations *MutationService
}

func newServices(t *testing.T, b backend) services {
	t.Helper()
	todos, categories := b.open(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return services{
		todos:     todos,
		queries:   NewQueryService(todos, categories),
		mutations: NewMutationService(todos, categories, log),
	}
}

// forEachBackend runs fn once per record store implementation.
func forEachBackend(t *testing.T, fn func(t *testing.T, s services)) {
	for _, b := range backends() {
		b := b
		t.Run(b.name, func(t *testing.T) {
			fn(t, newServices(t, b))
		})
	}
}

func strPtr(v string) *string {
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}

func priorityPtr(p model.Priority) *model.Priority {
	return &p
}
