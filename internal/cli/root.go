// Package cli holds the ratefit command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/okian/ratefit/internal/config"
	"github.com/okian/ratefit/pkg/logger"
	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags.
var Version = "v0.0.0"

// Root builds the ratefit command with every subcommand registered.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "ratefit",
		Short: "Estimate contest problem difficulties from rated contest history",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},

		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// global flags
	root.PersistentFlags().StringP("config", "c", "", "YAML config file (overrides "+config.EnvConfigPath+")")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")

	root.Version = Version
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddCommand(Estimate())
	root.AddCommand(Serve())
	root.AddCommand(Generate())

	return root
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context) error {
	return Root().ExecuteContext(ctx)
}

// setup loads configuration, applies the global flags on top of it and
// initializes the global logger.
func setup(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := os.Setenv(config.EnvConfigPath, path); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("json-logs") {
		if on, _ := cmd.Flags().GetBool("json-logs"); on {
			cfg.LogFormat = "json"
		}
	}

	if err := logger.Init(logger.WithJSON(cfg.LogFormat == "json"), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}
