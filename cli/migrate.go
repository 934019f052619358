package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-storefront/clock"
	"go-storefront/database"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}

			// Open applies pending migrations.
			db, err := database.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()

			added, err := database.SeedCategories(cmd.Context(), db, clock.NewRealClock())
			if err != nil {
				return err
			}
			version, err := database.SchemaVersion(cmd.Context(), db)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d, %d categories added\n", cfg.DatabasePath, version, added)
			return nil
		},
	}
}
