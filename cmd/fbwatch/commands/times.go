package commands

import (
	"fbwatch/internal/components/chrono"
	"fbwatch/internal/components/telemetry"
	"fbwatch/internal/scrapers/facebook"
	"fbwatch/internal/service"
	"fbwatch/internal/store"
	"fmt"
	"log/slog"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	watch       *bool
	timesLikes  *bool
	timesMutual *bool
)

func init() {
	watch = timesCmd.Flags().Bool("watch", false, "Keep polling on the configured schedule until interrupted.")
	timesLikes = timesCmd.Flags().Bool("likes", false, "Also fetch the liked pages of newly seen users.")
	timesMutual = timesCmd.Flags().Bool("mutual", false, "Also fetch the mutual friends of newly seen users.")
	rootCmd.AddCommand(timesCmd)
}

var timesCmd = &cobra.Command{
	Use:   "times [--watch]",
	Short: "Fetches the last active times of friends and saves them to the database.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := store.Open(env.cfg.Database, env.time, env.tel)
		if err != nil {
			return err
		}
		defer db.Close()

		tracker := service.NewTracker(
			env.fetcher,
			db,
			service.WithCustomTelemetryAPI(env.tel),
			service.WithUserInfoOptions(facebook.UserInfoOptions{
				Likes:         *timesLikes,
				MutualFriends: *timesMutual,
			}),
		)

		if *watch {
			telemetry.InstrumentPerfStats(ctx, env.tel, time.Minute)

			cron := chrono.NewStandardCron(env.time, env.tel)
			slog.Info("watching last active times", "schedule", env.cfg.WatchSchedule)
			err = tracker.Watch(ctx, cron, env.cfg.WatchSchedule)
			if err != nil {
				return err
			}
		} else {
			_, err = tracker.Poll(ctx)
			if err != nil {
				return err
			}
		}

		return printTimes(tracker.Times())
	},
}

func printTimes(times facebook.ActiveTimes) error {
	if *jsonOutput {
		return printJSON(times)
	}

	t := newTable()
	t.AppendHeader(table.Row{"User", "Last active", "Times seen"})
	for pair := times.Oldest(); pair != nil; pair = pair.Next() {
		last := pair.Value[len(pair.Value)-1]
		t.AppendRow(table.Row{pair.Key, formatTime(last), len(pair.Value)})
	}
	t.AppendFooter(table.Row{"Total", "", fmt.Sprint(times.Len())})
	t.Render()
	return nil
}
