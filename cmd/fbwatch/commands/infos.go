package commands

import (
	"fbwatch/internal/scrapers/facebook"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	infosLikes  *bool
	infosMutual *bool
)

func init() {
	infosLikes = infosCmd.Flags().Bool("likes", false, "Also fetch the pages liked by every user.")
	infosMutual = infosCmd.Flags().Bool("mutual", false, "Also fetch the mutual friends of every user.")
	rootCmd.AddCommand(infosCmd)
}

var infosCmd = &cobra.Command{
	Use:   "infos <user id or username>...",
	Short: "Fetches the about page of the given users.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		infos := env.fetcher.FetchUserInfos(cmd.Context(), args, facebook.UserInfoOptions{
			Likes:         *infosLikes,
			MutualFriends: *infosMutual,
		})
		if *jsonOutput {
			return printJSON(infos)
		}

		t := newTable()
		t.AppendHeader(table.Row{
			"User", "Id", "Name", "Birthday", "Year", "Gender",
			"Relationship", "Work", "Education", "Likes", "Mutual",
		})
		for pair := infos.Oldest(); pair != nil; pair = pair.Next() {
			info := pair.Value
			likes := 0
			if info.PagedLikes != nil {
				for category := info.PagedLikes.Oldest(); category != nil; category = category.Next() {
					likes += category.Value.Len()
				}
			}
			mutual := 0
			if info.MutualFriends != nil {
				mutual = info.MutualFriends.Len()
			}
			t.AppendRow(table.Row{
				pair.Key, info.Id, info.Name, info.Birthday, info.YearOfBirth, info.Gender,
				info.Relationship, info.Work, info.Education, likes, mutual,
			})
		}
		t.Render()
		return nil
	},
}
