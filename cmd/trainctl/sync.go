package main

import (
	"fmt"
	"strconv"

	"training-os-be/internal/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	backfillPerPage  int
	backfillMaxPages int
	recentLimit      int
	activityMerge    bool
)

func init() {
	backfillCmd.Flags().IntVar(&backfillPerPage, "per-page", 0, "activities per page (1-200, default from config)")
	backfillCmd.Flags().IntVar(&backfillMaxPages, "max-pages", 0, "page bound (capped by SYNC_MAX_BACKFILL_PAGES)")
	recentCmd.Flags().IntVar(&recentLimit, "limit", 5, "number of activities (1-30)")
	activityCmd.Flags().BoolVar(&activityMerge, "merge", false, "merge the activity into the store")

	rootCmd.AddCommand(syncCmd, backfillCmd, recentCmd, activityCmd, tokenCmd)
}

func printSyncResult(res *dto.SyncResultResponse) {
	if res == nil {
		return
	}
	fmt.Printf("%s: %d pages, %d activities fetched\n", res.Mode, res.PagesFetched, res.Fetched)
	color.Green("  inserted %d, updated %d, skipped %d", res.Inserted, res.Updated, res.Skipped)
	if res.DuplicateSuspects > 0 {
		color.Yellow("  %d duplicate suspects", res.DuplicateSuspects)
	}
	for _, e := range res.Errors {
		color.Red("  page %d: %s", e.Page, e.Reason)
	}
	if res.AutoRefreshedToken {
		fmt.Println("  access token was refreshed")
	}
	if res.CursorAdvanced {
		fmt.Println("  cursor advanced")
	}
	if res.RateLimits != nil {
		fmt.Printf("  rate limit usage %s of %s (read %s of %s)\n",
			res.RateLimits.GlobalUsage, res.RateLimits.GlobalLimit,
			res.RateLimits.ReadUsage, res.RateLimits.ReadLimit)
	}
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch Strava activities newer than the sync cursor",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.container.SyncService.SyncIncremental(cmd.Context())
		printSyncResult(res)
		return err
	},
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Fetch Strava history page by page, bounded by --max-pages",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.container.SyncService.SyncBackfill(cmd.Context(), &dto.BackfillRequest{
			PerPage:  backfillPerPage,
			MaxPages: backfillMaxPages,
		})
		printSyncResult(res)
		return err
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Preview the newest Strava activities without importing them",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.container.SyncService.RecentActivities(cmd.Context(), recentLimit)
		if err != nil {
			return err
		}
		for _, act := range res.Activities {
			printActivity(act)
		}
		return nil
	},
}

var activityCmd = &cobra.Command{
	Use:   "activity <id>",
	Short: "Show one Strava activity, optionally merging it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id < 1 {
			return fmt.Errorf("invalid activity id %q", args[0])
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if !activityMerge {
			act, err := a.container.SyncService.Activity(cmd.Context(), id)
			if err != nil {
				return err
			}
			printActivity(act)
			return nil
		}

		res, err := a.container.SyncService.SyncActivity(cmd.Context(), id)
		if err != nil {
			return err
		}
		printActivity(res.Activity)
		color.Green("%s session %s", res.Action, res.SessionId)
		if res.DuplicateSuspect {
			color.Yellow("flagged as a possible duplicate of a manual session")
		}
		return nil
	},
}

func printActivity(act *dto.StravaActivityResponse) {
	km := "-"
	if act.DistanceKm != nil {
		km = fmt.Sprintf("%.2f km", *act.DistanceKm)
	}
	fmt.Printf("%-12d %-20s %-9s %-10s %s\n", act.Id, act.StartDate, act.MappedType, km, act.Name)
}

var tokenCmd = &cobra.Command{
	Use:   "refresh-token",
	Short: "Force a Strava access token refresh",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.container.SyncService.RefreshToken(cmd.Context())
		if err != nil {
			return err
		}
		if res.ExpiresAt != nil {
			color.Green("token valid until %s", res.ExpiresAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}
