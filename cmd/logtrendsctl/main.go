// Command logtrendsctl runs the logtrends analytics queries from a terminal,
// against the same database the API server reads.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var hours float64

func main() {
	// Load .env file if present (does not override existing env vars)
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "logtrendsctl",
		Short:        "Query error log trends",
		Long:         "logtrendsctl prints trending labels, error groups and histograms for a time window as JSON.",
		SilenceUsage: true,
	}

	root.PersistentFlags().Float64Var(&hours, "hours", 24, "window length in hours, counted back from now")

	root.AddCommand(trendingCmd())
	root.AddCommand(groupsCmd())
	root.AddCommand(groupCmd())
	root.AddCommand(groupLogsCmd())
	root.AddCommand(chartCmd())
	return root
}
