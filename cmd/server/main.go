// Command server runs the payroll engine HTTP API and its helper commands.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hrpay/internal/platform/config"
	"hrpay/internal/platform/logger"
)

func main() {
	// Report failures that happen before the config selects an environment.
	if err := logger.Setup(os.Getenv("APP_ENV")); err != nil {
		os.Exit(1)
	}

	var cfg config.Config
	err := execute(context.Background(), newRootCommand(&cfg))
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand(cfg *config.Config) *cobra.Command {
	var configPath string
	rootCmd := &cobra.Command{
		Use:           "hrpay",
		Short:         "Kenyan payroll engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := logger.Setup(loaded.Environment); err != nil {
				return err
			}
			*cfg = loaded
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file; environment only when empty")
	rootCmd.AddCommand(
		serveCommand(cfg),
		calcCommand(cfg),
		tokenCommand(cfg),
	)
	return rootCmd
}

// execute runs the command tree and logs a failure once.
func execute(ctx context.Context, rootCmd *cobra.Command) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logger.Error(ctx, "command failed", zap.Error(err))
	}
	return err
}
