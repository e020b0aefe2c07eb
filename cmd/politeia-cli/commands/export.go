package commands

import (
	"log/slog"

	"politeia-backend/services/sqliteexport"

	"github.com/spf13/cobra"
)

var exportDb *string

func init() {
	exportDb = exportCmd.Flags().String("db", "politeia.db", "The sqlite database to export the tables to.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [--db <path/to/output.db>]",
	Short: "Loads the consolidated CSV tables into a sqlite database for reporting.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		store := openStore(cfg)

		report, err := sqliteexport.Export(cmd.Context(), store, *exportDb)
		if err != nil {
			fatal("export failed", err)
		}

		total := 0
		for _, n := range report.Loaded {
			total += n
		}
		slog.Info("export complete", "db", *exportDb, "rows", total)
	},
}
