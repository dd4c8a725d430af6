package commands

import (
	"fbwatch/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(usersCmd)
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Prints the users and times saved in the database.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(env.cfg.Database, env.time, env.tel)
		if err != nil {
			return err
		}
		defer db.Close()

		users, err := db.Users(cmd.Context())
		if err != nil {
			return err
		}
		if *jsonOutput {
			return printJSON(users)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Id", "Username", "Name", "Gender", "Times", "Last active"})
		for _, user := range users {
			last := ""
			if len(user.Times) > 0 {
				last = formatTime(user.Times[len(user.Times)-1])
			}
			t.AppendRow(table.Row{user.Id, user.Username, user.Name, user.Gender, len(user.Times), last})
		}
		t.Render()
		return nil
	},
}
