package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go-storefront/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Database string
	EnvFile  string
}

// NewRootCommand creates the root command of the storefront binary.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "go-storefront",
		Short: "Multi-vendor storefront API",
		Long:  "A REST backend for a multi-vendor storefront: catalog, carts, orders, reviews and seller dashboards on SQLite.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnvFile(opts.EnvFile)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides DATABASE_PATH)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file to load before reading the environment")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// loadConfig reads the environment and applies the --db override.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.Database != "" {
		cfg.DatabasePath = o.Database
	}
	return cfg, nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
