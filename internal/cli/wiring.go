package cli

import (
	"io"
	"log/slog"
	"os"

	"gorm.io/gorm"

	"todo-tracker/internal/config"
	"todo-tracker/internal/repository"
	"todo-tracker/internal/repository/memory"
	"todo-tracker/internal/service"
)

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

type stores struct {
	db         *gorm.DB
	todos      service.TodoStore
	categories service.CategoryStore
}

// openStores builds the record store selected by cfg.StoreDriver. db is nil
// for the memory driver.
func openStores(cfg config.Config) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		return &stores{
			todos:      memory.NewTodoStore(),
			categories: memory.NewCategoryStore(),
		}, nil
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &stores{
		db:         db,
		todos:      repository.NewTodoRepository(db),
		categories: repository.NewCategoryRepository(db),
	}, nil
}

func (s *stores) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func loadConfig(opts *RootOptions) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, newLogger(os.Stderr, cfg.LogLevel), nil
}
