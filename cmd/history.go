package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tomaslejdung/godesk/pkg/history"
)

var (
	flagHistoryLimit int
	flagHistoryClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently hosted and joined sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := history.DefaultDir()
		if err != nil {
			return err
		}
		store, err := history.Open(dir)
		if err != nil {
			return err
		}
		defer store.Close()

		if flagHistoryClear {
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Println("history cleared")
			return nil
		}

		entries, err := store.Recent(flagHistoryLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("no session history")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Session", "Role", "Server", "When"})
		for _, e := range entries {
			t.AppendRow(table.Row{
				e.SessionID,
				e.Role,
				e.ServerURL,
				e.ConnectedAt.Local().Format("2006-01-02 15:04:05"),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Maximum entries to show")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Forget all remembered sessions")
}
