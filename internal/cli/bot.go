package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"todo-tracker/internal/bot"
	"todo-tracker/internal/config"
	"todo-tracker/internal/repository"
	"todo-tracker/internal/service"
)

// NewBotCommand creates the bot command.
func NewBotCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Long: `Run the Telegram bot and push the daily summary to every user.

The summary goes out every REPORT_INTERVAL_HOURS when that is set, otherwise
once a day at REPORT_TIME.

Example:
  TELEGRAM_TOKEN=123:abc todotracker bot`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context(), rootOpts)
		},
	}
}

func runBot(ctx context.Context, opts *RootOptions) error {
	cfg, log, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	queries := service.NewQueryService(st.todos, st.categories)
	mutations := service.NewMutationService(st.todos, st.categories, log)
	reminders := service.NewReminderService(queries)

	telegramBot, err := bot.New(cfg.TelegramToken, repository.NewUserRepository(st.db), queries, mutations, reminders, log)
	if err != nil {
		return err
	}

	scheduler := service.NewSchedulerService(time.Local, log)
	if err := scheduleReports(scheduler, cfg, telegramBot.SendDailyReports); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Info("bot started", "report_interval", cfg.ReportInterval, "report_time", cfg.ReportTime)
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

func scheduleReports(scheduler *service.SchedulerService, cfg config.Config, job service.Job) error {
	if cfg.ReportInterval > 0 {
		_, err := scheduler.ScheduleInterval("daily-reports", cfg.ReportInterval, job)
		return err
	}
	if cfg.ReportTime == "" {
		return nil
	}
	_, err := scheduler.ScheduleDaily("daily-reports", cfg.ReportTime, job)
	return err
}
