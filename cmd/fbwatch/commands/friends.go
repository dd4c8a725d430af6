package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(friendsCmd)
}

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "Prints the friend list of the logged in user.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		friends := env.fetcher.FetchUserFriendList(cmd.Context())
		if *jsonOutput {
			return printJSON(friends)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Profile", "Name"})
		for pair := friends.Oldest(); pair != nil; pair = pair.Next() {
			t.AppendRow(table.Row{pair.Key, pair.Value.Name})
		}
		t.Render()
		return nil
	},
}
