package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config keeps runtime settings for the API server and the bot.
type Config struct {
	LogLevel       string        `yaml:"log_level"`
	StoreDriver    string        `yaml:"store_driver"`
	DatabaseURL    string        `yaml:"database_url"`
	HTTPAddress    string        `yaml:"http_address"`
	JWTSecret      string        `yaml:"jwt_secret"`
	TelegramToken  string        `yaml:"telegram_token"`
	ReportInterval time.Duration `yaml:"report_interval"`
	ReportTime     string        `yaml:"report_time"`
}

func defaults() Config {
	return Config{
		LogLevel:       "INFO",
		StoreDriver:    StoreSQLite,
		DatabaseURL:    "todo_tracker.db",
		HTTPAddress:    ":8080",
		ReportInterval: 0,
		ReportTime:     "08:00",
	}
}

// Load builds the configuration from defaults, the optional YAML file at path,
// a .env file in the working directory and finally the environment.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %q: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return cfg, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)
	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	switch cfg.StoreDriver {
	case StoreSQLite, StoreMemory:
	default:
		return cfg, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString("LOG_LEVEL", &cfg.LogLevel)
	setString("STORE_DRIVER", &cfg.StoreDriver)
	setString("DATABASE_URL", &cfg.DatabaseURL)
	setString("HTTP_ADDRESS", &cfg.HTTPAddress)
	setString("JWT_SECRET", &cfg.JWTSecret)
	setString("TELEGRAM_TOKEN", &cfg.TelegramToken)
	setString("REPORT_TIME", &cfg.ReportTime)

	if raw := strings.TrimSpace(os.Getenv("REPORT_INTERVAL_HOURS")); raw != "" {
		interval, err := parseInterval(raw)
		if err != nil {
			return err
		}
		cfg.ReportInterval = interval
	}
	return nil
}

func parseInterval(raw string) (time.Duration, error) {
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("REPORT_INTERVAL_HOURS must be a non-negative number, got %q", raw)
	}
	return time.Duration(hours * float64(time.Hour)), nil
}

// ValidateHTTP checks the settings the API server needs.
func (c Config) ValidateHTTP() error {
	if c.HTTPAddress == "" {
		return errors.New("http address is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// ValidateBot checks the settings the Telegram bot needs.
func (c Config) ValidateBot() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}
	if c.StoreDriver != StoreSQLite {
		return fmt.Errorf("the bot keeps chat accounts in SQL and needs store driver %q", StoreSQLite)
	}
	return nil
}
