// Package cmd provides the CLI commands for billctl.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/warp/billing-engine/logging"
)

var verbose bool

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "billctl",
	Short: "Billing engine calculation toolbox",
	Long: `billctl runs the billing engine's pure calculation paths from the
command line, with no server or database involved.

Examples:
  billctl totals --line "Bookkeeping:10:150:10" --line "Filing:1:800:5"
  billctl resolve --cadence quarterly --start-month 1 --date 2024-07-10 --selector previous_period
  billctl format-id --prefix INV --width 6 --number 42`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(totalsCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(formatIDCmd)
	rootCmd.AddCommand(versionCmd)
}

func initLogging() {
	cfg := logging.DefaultConfig()
	if verbose {
		cfg.Level = "debug"
	}
	if err := logging.Initialize(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("billctl version 0.1.0")
	},
}
