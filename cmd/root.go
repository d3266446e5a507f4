package cmd

import (
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cfgPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Priority download queue",
	Long: `dlq schedules concurrent downloads through a bounded worker pool:
requests are queued by priority, promoted up to the configured parallelism,
and tracked through completion, failure, or cancellation.`,
	Version: "<unknown>",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetCount("verbose")
		if verbose > 0 {
			switch verbose {
			case 1:
				logger.SetLevel(logger.InfoLevel)
			case 2:
				logger.SetLevel(logger.DebugLevel)
			default: // 3 or more
				logger.SetLevel(logger.TraceLevel)
			}
		} else {
			logger.SetLevel(logger.WarnLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().CountP("verbose", "v", "Verbose output (use -v, -vv, or --verbose=N)")
	RootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to YAML config file")
}
