package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/materials-catalog/internal/app"
	"github.com/yungbote/materials-catalog/internal/platform/envutil"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

var sqliteDSN string

var rootCmd = &cobra.Command{
	Use:           "catalog",
	Short:         "Training materials catalog service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sqliteDSN, "sqlite", "", "use a sqlite database at this DSN instead of Postgres (local runs)")
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newTokenCmd())
}

// loadRuntime loads the logger and configuration shared by every command.
func loadRuntime() (*logger.Logger, app.Config, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, app.Config{}, fmt.Errorf("init logger: %w", err)
	}
	cfg, err := app.LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, cfg, err
	}
	if sqliteDSN != "" {
		cfg.SQLiteDSN = sqliteDSN
	}
	return log, cfg, nil
}
