package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	// registers the LTE codec as dci.NewCodecFunc
	_ "github.com/pdcch-replay/pdcch-replay/dci/lte"
)

var logLevel string // Log verbosity level

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "pdcch-replay",
	Short: "Replay captured LTE DCI traces onto a PDCCH subframe timeline",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runFlags.registerCell(runCmd.Flags())
	runFlags.registerInput(runCmd.Flags())
	runFlags.registerScheduler(runCmd.Flags())
	runFlags.registerRNTI(runCmd.Flags())

	inspectFlags.registerCell(inspectCmd.Flags())
	inspectFlags.registerInput(inspectCmd.Flags())
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "yaml", "Summary output format: yaml or json")
	inspectCmd.Flags().StringVar(&inspectParquet, "parquet", "", "Write every decoded DCI to this parquet file")

	searchSpaceFlags.registerCell(searchSpaceCmd.Flags())
	searchSpaceFlags.registerRNTI(searchSpaceCmd.Flags())

	rootCmd.AddCommand(runCmd, inspectCmd, searchSpaceCmd)
}
