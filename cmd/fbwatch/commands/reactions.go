package commands

import (
	"fbwatch/internal/scrapers/facebook"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var excludeNonUsers *bool

func init() {
	excludeNonUsers = reactionsCmd.Flags().Bool("exclude-non-users", false, "Leave out pages and groups.")
	rootCmd.AddCommand(likersCmd)
	rootCmd.AddCommand(reactionsCmd)
}

var likersCmd = &cobra.Command{
	Use:   "likers <article id>",
	Short: "Prints everyone who reacted to a post.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseArticleIds(args)
		if err != nil {
			return err
		}

		likers := env.fetcher.FetchLikersForArticle(cmd.Context(), ids[0])
		if *jsonOutput {
			return printJSON(likers)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Liker"})
		for _, liker := range likers {
			t.AppendRow(table.Row{liker})
		}
		t.AppendFooter(table.Row{len(likers)})
		t.Render()
		return nil
	},
}

var reactionsCmd = &cobra.Command{
	Use:   "reactions <article id>... [--exclude-non-users]",
	Short: "Groups the reactions to the given posts by user.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseArticleIds(args)
		if err != nil {
			return err
		}
		articles := make([]facebook.PostRecord, len(ids))
		for i, id := range ids {
			articles[i] = facebook.PostRecord{PostId: id}
		}

		reactions := env.fetcher.FetchReactionsPerUser(cmd.Context(), articles, *excludeNonUsers)
		if *jsonOutput {
			return printJSON(reactions)
		}

		t := newTable()
		t.AppendHeader(table.Row{"User", "Reactions", "Posts"})
		for pair := reactions.Oldest(); pair != nil; pair = pair.Next() {
			posts := make([]string, len(pair.Value.Likes))
			for i, post := range pair.Value.Likes {
				posts[i] = formatId(post.PostId)
			}
			t.AppendRow(table.Row{pair.Key, len(posts), strings.Join(posts, ", ")})
		}
		t.Render()
		return nil
	},
}
