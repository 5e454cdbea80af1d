// Command uqstat estimates statistics of uncertain model outputs from a
// YAML study description.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath   string
	logLevel     string
	withJacobian bool
)

var rootCmd = &cobra.Command{
	Use:   "uqstat",
	Short: "Statistic estimation for models under uncertainty",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Estimate the configured statistic at the study design point",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if err := runStudy(configPath, withJacobian); err != nil {
			logrus.Fatalf("study failed: %v", err)
		}
	},
}

var mlmcCmd = &cobra.Command{
	Use:   "mlmc",
	Short: "Run an adaptive multilevel Monte Carlo study",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if err := runMultilevel(configPath); err != nil {
			logrus.Fatalf("mlmc study failed: %v", err)
		}
	},
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "study.yaml", "Path to the YAML study description")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().BoolVar(&withJacobian, "jacobian", false, "Also estimate the Jacobian with respect to the design point")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(mlmcCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
