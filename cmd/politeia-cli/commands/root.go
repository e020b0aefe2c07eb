package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"politeia-backend/lib/configutil"
	"politeia-backend/lib/tabular"
	"politeia-backend/services/consolidator"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "politeia-cli",
	Short: "politeia-cli consolidates scraped election results into the politeia tables.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}

// Config drives a consolidation run; nothing in it is derived from the
// scraped data itself.
type Config struct {
	// directory holding the wp_politeia_*.csv tables
	DataDir string `json:"data_dir"`
	// directory holding per-region scrape output, laid out as
	// <input_dir>/<CODE>/region_<code>_data.json
	InputDir string `json:"input_dir"`
	// one of: mayoral, presidential, senatorial, deputy
	Office        string `json:"office"`
	ElectionDate  string `json:"election_date"`
	TermStartDate string `json:"term_start_date"`
	// region code -> canonical display name; defaults to the full
	// 16-region roster when empty
	Regions map[string]string `json:"regions"`
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("politeia.json5")
	if err != nil {
		fatal("failed to read politeia.json5", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if len(cfg.Regions) == 0 {
		cfg.Regions = consolidator.RegionNames
	}
	return cfg
}

func openStore(cfg Config) tabular.Store {
	store, err := tabular.NewStore(cfg.DataDir)
	if err != nil {
		fatal("failed to open table store", err)
	}
	return store
}

func parseOffice(cfg Config) consolidator.Office {
	office, ok := consolidator.ParseOffice(cfg.Office)
	if !ok {
		fatal("unknown office in config", fmt.Errorf("%q", cfg.Office))
	}
	return office
}
