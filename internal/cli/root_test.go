package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-tracker/internal/config"
	"todo-tracker/internal/identity"
	"todo-tracker/internal/model"
	"todo-tracker/internal/service"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "todotracker", cmd.Use)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "config.yaml", configFlag.DefValue)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"serve", "bot", "token"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "command %s should exist", name)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Chdir(t.TempDir())

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "u1", "--ttl", "1h"})
	require.NoError(t, cmd.Execute())

	tokens, err := identity.NewJWTManager("cli-secret")
	require.NoError(t, err)
	user, err := tokens.ValidateAccessToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, model.UserID("u1"), user)
}

func TestServe_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Chdir(t.TempDir())

	err := runServe(context.Background(), &RootOptions{ConfigPath: ""})
	require.Error(t, err)
}

func TestBot_RequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Chdir(t.TempDir())

	err := runBot(context.Background(), &RootOptions{ConfigPath: ""})
	require.Error(t, err)
}

func TestOpenStores(t *testing.T) {
	st, err := openStores(config.Config{StoreDriver: config.StoreMemory})
	require.NoError(t, err)
	assert.Nil(t, st.db)
	require.NoError(t, st.Close())

	st, err = openStores(config.Config{StoreDriver: config.StoreSQLite, DatabaseURL: t.TempDir() + "/todos.db"})
	require.NoError(t, err)
	assert.NotNil(t, st.db)
	require.NoError(t, st.Close())
}

func TestScheduleReports(t *testing.T) {
	noop := func(context.Context) error { return nil }
	log := newLogger(&bytes.Buffer{}, "ERROR")

	s := service.NewSchedulerService(time.UTC, log)
	require.NoError(t, scheduleReports(s, config.Config{ReportInterval: time.Hour, ReportTime: "08:00"}, noop))
	assert.Equal(t, 1, s.Len())

	s = service.NewSchedulerService(time.UTC, log)
	require.NoError(t, scheduleReports(s, config.Config{ReportTime: "08:00"}, noop))
	assert.Equal(t, 1, s.Len())

	s = service.NewSchedulerService(time.UTC, log)
	require.NoError(t, scheduleReports(s, config.Config{}, noop))
	assert.Equal(t, 0, s.Len())

	require.Error(t, scheduleReports(s, config.Config{ReportTime: "8 o'clock"}, noop))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "WARN")
	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
