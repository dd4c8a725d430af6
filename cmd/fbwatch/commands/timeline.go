package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(timelineCmd)
}

var timelineCmd = &cobra.Command{
	Use:   "timeline <user id or username>...",
	Short: "Collects the posts of the timeline of the given users.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timelines := env.fetcher.FetchArticlesFromTimeline(cmd.Context(), args)
		if *jsonOutput {
			return printJSON(timelines)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Page", "Post", "Date", "Original date", "Reactions", "Comments"})
		for timeline := timelines.Oldest(); timeline != nil; timeline = timeline.Next() {
			for post := timeline.Value.Posts.Oldest(); post != nil; post = post.Next() {
				p := post.Value
				t.AppendRow(table.Row{
					timeline.Key, p.PostId, formatTime(p.Date), p.DateOrg, p.LikeCount, p.CommentCount,
				})
			}
		}
		t.Render()
		return nil
	},
}
