package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-portfolio"
)

type ctxKey string

const configKey ctxKey = "config"

// moduleBuilder is swapped in tests.
var moduleBuilder = portfolio.New

// Execute builds the root command and runs it.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command. Configuration is resolved once
// before any subcommand runs and stored on the command context.
func NewRootCmd() *cobra.Command {
	var (
		cfgPath string
		envPath string
	)

	cmd := &cobra.Command{
		Use:           "portfolio",
		Short:         "Portfolio server and Markdown tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := portfolio.LoadConfig(viper.New(), portfolio.LoadOptions{
				ConfigFile: cfgPath,
				DotEnvFile: envPath,
			})
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, configKey, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (yaml|toml|json)")
	cmd.PersistentFlags().StringVar(&envPath, "env-file", "", "path to a .env file (defaults to ./.env when present)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newUploadsCmd())
	cmd.AddCommand(newConfigCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

func getConfig(cmd *cobra.Command) (portfolio.Config, error) {
	cfg, ok := cmd.Context().Value(configKey).(portfolio.Config)
	if !ok {
		return portfolio.Config{}, errors.New("internal error: config not loaded")
	}
	return cfg, nil
}

func buildModule(cmd *cobra.Command) (*portfolio.Module, error) {
	cfg, err := getConfig(cmd)
	if err != nil {
		return nil, err
	}
	return moduleBuilder(cfg)
}
