package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-storefront/clock"
	"go-storefront/database"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog and accounts",
		Long: `Load the demo categories, accounts and products.

Seeding is repeatable: rows that already exist are left alone.
All demo accounts use the password "password123".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}

			db, err := database.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := database.Seed(cmd.Context(), db, clock.NewRealClock())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d categories, %d users, %d businesses, %d products\n",
				res.Categories, res.Users, res.Businesses, res.Products)
			return nil
		},
	}
}
