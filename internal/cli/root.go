package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the root command for the todotracker CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "todotracker",
		Short: "Per-user todo tracker",
		Long:  "Todo tracker with a JSON API and a Telegram bot sharing one record store.",
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "config.yaml", "path to the YAML config file (optional)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewBotCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}
