package commands

import (
	"os"

	"politeia-backend/lib/tabular"
	"politeia-backend/services/retractor"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var retractDate *string
var retractTermStart *string

func init() {
	retractDate = retractCmd.Flags().String("date", "", "Election date to retract (YYYY-MM-DD). Defaults to the configured election date.")
	retractTermStart = retractCmd.Flags().String("term-start", "", "Term start date whose office terms to retract. Defaults to the configured term start date.")
	rootCmd.AddCommand(retractCmd)
}

var retractCmd = &cobra.Command{
	Use:   "retract [--date <YYYY-MM-DD>] [--term-start <YYYY-MM-DD>]",
	Short: "Removes previously consolidated rows for one election date, cascading to dependents.",
	Long: `Removes every election on the given date along with its results and
candidacies, plus party memberships started on the election date and office
terms started on the term start date. Jurisdictions, parties and people are
kept.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		store := openStore(cfg)

		date := *retractDate
		if date == "" {
			date = cfg.ElectionDate
		}
		termStart := *retractTermStart
		if termStart == "" {
			termStart = cfg.TermStartDate
		}
		if date == "" {
			fatal("no election date", os.ErrInvalid)
		}

		engine := retractor.New(store)

		cascade, err := engine.RetractElections(cmd.Context(), date)
		if err != nil {
			fatal("failed to retract elections", err)
		}
		memberships, err := engine.RetractByDate(cmd.Context(), tabular.PartyMemberships, "started_on", date)
		if err != nil {
			fatal("failed to retract party memberships", err)
		}
		terms := 0
		if termStart != "" {
			terms, err = engine.RetractByDate(cmd.Context(), tabular.OfficeTerms, "started_on", termStart)
			if err != nil {
				fatal("failed to retract office terms", err)
			}
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Table", "Rows Removed"})
		t.AppendRows([]table.Row{
			{tabular.Elections.Name(), cascade.Elections},
			{tabular.ElectionResults.Name(), cascade.ElectionResults},
			{tabular.Candidacies.Name(), cascade.Candidacies},
			{tabular.PartyMemberships.Name(), memberships},
			{tabular.OfficeTerms.Name(), terms},
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
