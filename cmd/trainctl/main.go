package main

import (
	"fmt"
	"os"

	"training-os-be/internal/bootstrap"
	"training-os-be/internal/config"
	"training-os-be/internal/pkg/logger"
	"training-os-be/pkg/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "trainctl",
	Short: "Operate the Training OS ingestion core",
	Long: `trainctl imports activity files, syncs Strava activities and prints weekly
summaries against the same store the HTTP API uses.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// app is the wiring shared by every subcommand.
type app struct {
	cfg       *config.Config
	db        *gorm.DB
	container *bootstrap.Container
}

func openApp() (*app, error) {
	cfg := config.Load()
	db, err := database.NewGormDB(database.GormConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.Connection,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log := logger.NewConsoleLogger(verbose)
	return &app{
		cfg:       cfg,
		db:        db,
		container: bootstrap.NewContainer(db, cfg, log),
	}, nil
}

func (a *app) Close() {
	a.container.Close()
	_ = a.container.Logger.Sync()
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
