package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/materials-catalog/internal/app"
)

func newMigrateCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the catalog schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, cfg, err := loadRuntime()
			if err != nil {
				return err
			}
			defer log.Sync()
			theDB, closeDB, err := app.OpenDatabase(log, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeDB() }()
			if err := app.Migrate(log, theDB, seed || cfg.SeedCategories); err != nil {
				return err
			}
			log.Info("Migration complete")
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "insert the default categories (same as SEED_CATEGORIES=true)")
	return cmd
}
