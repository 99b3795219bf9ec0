package main

import (
	"fmt"
	"path/filepath"

	"training-os-be/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Import .fit and .gpx files from a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if err := a.container.ConsumerService.Consume(ctx); err != nil {
			return err
		}

		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		report, err := a.container.ImportService.ImportDir(ctx, dir)
		if err != nil {
			return err
		}

		for _, o := range report.Outcomes {
			switch o.Status {
			case service.ImportStatusSuccess:
				line := fmt.Sprintf("%-8s %s (%s)", o.Action, o.File, o.Parser)
				if o.Reason != "" {
					color.Yellow("%s  [%s]", line, o.Reason)
				} else {
					color.Green("%s", line)
				}
			case service.ImportStatusSkipped:
				color.Yellow("skipped  %s: %s", o.File, o.Reason)
			default:
				color.Red("failed   %s: %s", o.File, o.Reason)
			}
		}

		fmt.Printf("\n%d files: %d imported, %d updated, %d skipped, %d failed, %d duplicate suspects\n",
			report.TotalFiles, report.Imported, report.Updated, report.Skipped, report.Failed, report.DuplicateSuspects)
		fmt.Printf("Reports written to %s\n", filepath.Join(a.cfg.Import.ReportsDir, service.ImportReportJSON))
		return nil
	},
}
