// Command volcalc runs stochastic volume calculations described by YAML
// configuration files and reports the estimated volumes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "volcalc",
	Short: "Stochastic volume calculation tool",
	Long: `volcalc estimates domain volumes by uniform rejection sampling over an
axis-aligned bounding box. A calculation is described by a YAML session
config: the bounding box, the tracked domains with their shapes, the
sampling controls, and optional convergence triggers.

Examples:
  volcalc run --config pincell.yaml
  volcalc run --config pincell.yaml --metrics-addr :9090
  volcalc report --format json --path ./snapshots pincell-volume`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(runCmd, reportCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
