package commands

import (
	"os"

	"politeia-backend/lib/tabular"
	"politeia-backend/services/consolidator"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Prints row counts and the next identifier for every table.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		store := openStore(cfg)
		alloc := consolidator.NewAllocator(store)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Table", "Rows", "Next ID"})

		for _, tbl := range tabular.All() {
			count, err := store.Count(tbl)
			if err != nil {
				fatal("failed to read table", err)
			}
			next, err := alloc.Peek(tbl)
			if err != nil {
				fatal("failed to scan identifiers", err)
			}
			t.AppendRow(table.Row{tbl.Name(), count, next})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
