package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nglaser3/stochvol/infrastructure/results"
	"github.com/nglaser3/stochvol/internal/application"
	"github.com/nglaser3/stochvol/internal/domain"
	"github.com/nglaser3/stochvol/internal/ports"
)

var reportCmd = &cobra.Command{
	Use:   "report [session-id]",
	Short: "Report a previously saved snapshot",
	Long: `Loads a saved snapshot and prints its volume report. Passing the
original session config restores nuclide densities, so the report
includes atom-count estimates.

Examples:
  volcalc report --format json --path ./snapshots pincell-volume
  volcalc report --format sqlite --path runs.db --config pincell.yaml pincell-volume`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var (
	reportFormat     string
	reportPath       string
	reportConfigPath string
)

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "json", "snapshot store format (json or sqlite)")
	reportCmd.Flags().StringVar(&reportPath, "path", "", "snapshot store path (required)")
	reportCmd.Flags().StringVar(&reportConfigPath, "config", "", "session config for nuclide densities")
	reportCmd.MarkFlagRequired("path")
}

// openStore selects a snapshot store backend. The json format treats
// path as a directory of per-session files; sqlite treats it as a
// database file.
func openStore(format, path string) (ports.SnapshotStore, error) {
	switch format {
	case "json":
		return results.NewJSONStore(path)
	case "sqlite":
		return results.NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("%w: unsupported snapshot format %q",
			domain.ErrInvalidConfiguration, format)
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	store, err := openStore(reportFormat, reportPath)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	var aggOpts []results.Option
	if reportConfigPath != "" {
		cfg, err := application.LoadSessionConfig(reportConfigPath)
		if err != nil {
			return err
		}
		aggOpts = append(aggOpts, results.WithDensities(cfg.Densities()))
	}

	res, err := results.NewAggregator(aggOpts...).Finalize(snap)
	if err != nil {
		return err
	}
	return results.Report(os.Stdout, res)
}
