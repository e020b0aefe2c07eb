package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"politeia-backend/lib/tabular"
	"politeia-backend/services/consolidator"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(consolidateCmd)
}

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Merges every configured region's scraped JSON into the master tables.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		store := openStore(cfg)

		pipeline, err := consolidator.NewPipeline(store, consolidator.Config{
			Office:        parseOffice(cfg),
			ElectionDate:  cfg.ElectionDate,
			TermStartDate: cfg.TermStartDate,
		})
		if err != nil {
			fatal("failed to start pipeline", err)
		}

		codes := make([]string, 0, len(cfg.Regions))
		for code := range cfg.Regions {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		for _, code := range codes {
			path := filepath.Join(
				cfg.InputDir, code,
				fmt.Sprintf("region_%s_data.json", strings.ToLower(code)),
			)
			_, err := pipeline.IngestRegionFile(cmd.Context(), cfg.Regions[code], path)
			if err != nil {
				// close writers so rows from prior successful regions
				// reach disk before we bail
				pipeline.Close()
				fatal("consolidation aborted", err)
			}
		}

		err = pipeline.Close()
		if err != nil {
			fatal("failed to flush tables", err)
		}

		renderReport(pipeline.Report())
	},
}

func renderReport(report consolidator.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Table", "Rows Created"})

	for _, tbl := range tabular.All() {
		t.AppendRow(table.Row{tbl.Name(), report.Created[tbl]})
	}
	t.AppendFooter(table.Row{
		"regions",
		fmt.Sprintf("%d merged, %d skipped", report.RegionsMerged, report.RegionsSkipped),
	})

	t.SetStyle(table.StyleRounded)
	t.Render()
}
