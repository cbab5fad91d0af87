package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/yungbote/materials-catalog/internal/app"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Catalog statistics maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "recompute",
		Short: "Rebuild the statistics row from the active materials",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, cfg, err := loadRuntime()
			if err != nil {
				return err
			}
			defer log.Sync()
			stats, err := app.RecomputeStatistics(cmd.Context(), log, cfg)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	})
	return cmd
}
