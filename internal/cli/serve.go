package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"todo-tracker/internal/httpapi"
	"todo-tracker/internal/identity"
	"todo-tracker/internal/service"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		Long: `Run the JSON API over HTTP.

Requests carry an HS256 bearer token with a user_id claim; requests without
one are served as anonymous.

Example:
  JWT_SECRET=dev todotracker serve
  todotracker serve --config ./config.yaml`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	cfg, log, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := cfg.ValidateHTTP(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	tokens, err := identity.NewJWTManager(cfg.JWTSecret)
	if err != nil {
		return err
	}

	server := httpapi.NewServer(
		service.NewQueryService(st.todos, st.categories),
		service.NewMutationService(st.todos, st.categories, log),
		tokens,
		log,
	)

	log.Info("api starting", "store", cfg.StoreDriver, "address", cfg.HTTPAddress)
	if err := server.ListenAndServe(ctx, cfg.HTTPAddress); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}
