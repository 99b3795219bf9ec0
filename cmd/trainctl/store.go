package main

import (
	"fmt"

	"training-os-be/internal/model"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd, migrateFocusCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.db.AutoMigrate(model.AllModels()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		color.Green("schema up to date (%s)", a.cfg.Database.Driver)
		return nil
	},
}

var migrateFocusCmd = &cobra.Command{
	Use:   "migrate-focus",
	Short: "Move legacy [focus: ...] note prefixes into focus areas",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.container.SessionService.MigrateLegacyFocus(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%d sessions scanned, %d migrated\n", res.Scanned, res.Migrated)
		return nil
	},
}
