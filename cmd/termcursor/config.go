package main

import (
	"github.com/spf13/cobra"

	"github.com/musher-dev/termcursor/internal/config"
	clierrors "github.com/musher-dev/termcursor/internal/errors"
	"github.com/musher-dev/termcursor/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View and modify termcursor configuration settings.`,
	}

	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

// loadedConfig returns the configuration loaded for this invocation.
func loadedConfig(cmd *cobra.Command) (*config.Config, error) {
	sess := sessionFromContext(cmd.Context())
	if sess.cfg != nil {
		return sess.cfg, nil
	}

	cfg, err := sess.streams.loadConfig()
	if err != nil {
		return nil, clierrors.InvalidConfig("config file", err)
	}

	return cfg, nil
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		Long: `Display the effective value of every configuration setting, after defaults,
the config file and TERMCURSOR_* environment variables are applied.`,
		Example: `  termcursor config list
  termcursor config list --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			cfg, err := loadedConfig(cmd)
			if err != nil {
				return err
			}

			if out.JSON {
				return out.PrintJSON(cfg.All())
			}

			return out.PrintYAML(cfg.All())
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Get a configuration value",
		Long:    `Retrieve and display the effective value of a single configuration key.`,
		Example: `  termcursor config get query.timeout`,
		Args:    rangeArgs(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key := args[0]

			cfg, err := loadedConfig(cmd)
			if err != nil {
				return err
			}

			value := cfg.Get(key)
			if value == nil {
				out.Muted("%s is not set", key)
				return nil
			}

			out.Print("%s = %v\n", key, value)

			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration key to the given value. The value is validated, then
persisted to the config file.

Keys:
  query.timeout   How long to wait for a cursor position report (default: 1s)
  log.level       error, warn, info or debug (default: info)
  log.format      json or text (default: json)
  log.file        Structured log file path
  log.stderr      auto, on or off (default: auto)`,
		Example: `  termcursor config set query.timeout 250ms
  termcursor config set log.level debug`,
		Args: rangeArgs(2, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key, value := args[0], args[1]

			cfg, err := loadedConfig(cmd)
			if err != nil {
				return err
			}

			if err := cfg.Set(key, value); err != nil {
				return clierrors.InvalidConfig(key, err)
			}

			out.Success("Set %s = %s", key, value)

			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "path",
		Short:   "Print the config file location",
		Long:    `Print the path of the config file, whether or not it exists yet. TERMCURSOR_CONFIG overrides it.`,
		Example: `  termcursor config path`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			cfg, err := loadedConfig(cmd)
			if err != nil {
				return err
			}

			out.Print("%s\n", cfg.File())

			return nil
		},
	}
}
