package main

import (
	"fmt"
	"strconv"
	"strings"

	"training-os-be/internal/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(summaryCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary <year> <week> | summary <yyyy-mm-dd>",
	Short: "Print the ISO week summary",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var res *dto.WeeklySummaryResponse
		if len(args) == 1 {
			res, err = a.container.SummaryService.WeeklySummaryForDate(cmd.Context(), args[0])
		} else {
			year, yerr := strconv.Atoi(args[0])
			week, werr := strconv.Atoi(args[1])
			if yerr != nil || werr != nil {
				return fmt.Errorf("year and week must be numbers")
			}
			res, err = a.container.SummaryService.WeeklySummary(cmd.Context(), year, week)
		}
		if err != nil {
			return err
		}

		printSummary(res)
		return nil
	},
}

func printSummary(res *dto.WeeklySummaryResponse) {
	color.Cyan("%d-W%02d (%s to %s)", res.Year, res.WeekNumber, res.StartDate, res.EndDate)
	if res.Plan != nil && res.Plan.Description != "" {
		fmt.Printf("plan: %s\n", res.Plan.Description)
	}
	fmt.Printf("%d sessions, %d min, %.1f km, %d m elevation\n",
		res.TotalSessions, res.TotalDurationMinutes, res.TotalDistanceKm, res.TotalElevationGainM)

	for _, b := range res.ByType {
		fmt.Printf("  %-9s %2d  %5d min  %6.1f km\n", b.Type, b.Sessions, b.DurationMinutes, b.DistanceKm)
	}

	if pva := res.PlanVsActual; pva != nil && pva.TargetDistanceKm != nil {
		line := fmt.Sprintf("target %.1f km, actual %.1f km (%+.1f)", *pva.TargetDistanceKm, pva.ActualDistanceKm, *pva.DistanceDeltaKm)
		if *pva.DistanceDeltaKm < 0 {
			color.Yellow("%s", line)
		} else {
			color.Green("%s", line)
		}
	}

	for _, s := range res.SalientSessions {
		fmt.Printf("  * %s %s: %s\n", s.Date, s.Type, strings.Join(s.Reasons, ", "))
	}
	if res.DuplicateSuspects > 0 {
		color.Yellow("%d possible duplicates to review", res.DuplicateSuspects)
	}
}
