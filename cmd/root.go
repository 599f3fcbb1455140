package cmd

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/swapsim/swapsim/sim"
)

var (
	configPath string // Path to a YAML simulation config
	seed       int64  // Override for the config's random seed
	days       int    // Override for the simulated duration in days
	logLevel   string // Log verbosity level
	outputPath string // Optional path for the full result JSON
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "swapsim",
	Short: "Discrete-event simulator for battery-swap station networks",
}

// runCmd loads the configuration, runs the baseline (and scenario, when one
// is configured), and prints the resulting metrics summary.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the swap-network simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		var cfg *sim.SimulationConfig
		if configPath != "" {
			cfg, err = sim.LoadConfig(configPath)
			if err != nil {
				logrus.Fatalf("unable to load config %s: %v", configPath, err)
			}
		} else {
			logrus.Info("no config file given, using the built-in demo network")
			cfg = DefaultConfig()
		}

		if cmd.Flags().Changed("seed") {
			cfg.RandomSeed = seed
		}
		if cmd.Flags().Changed("days") {
			cfg.DurationDays = days
		}

		outcome, err := sim.RunScenario(cfg)
		if err != nil {
			logrus.Fatalf("simulation failed: %v", err)
		}
		outcome.Result().Print()

		if outputPath != "" {
			data, err := json.MarshalIndent(outcome, "", "  ")
			if err != nil {
				logrus.Fatalf("unable to encode result: %v", err)
			}
			if err := os.WriteFile(outputPath, data, 0o644); err != nil {
				logrus.Fatalf("unable to write %s: %v", outputPath, err)
			}
			logrus.Infof("full result written to %s", outputPath)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML simulation config (built-in demo when empty)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Override the config's random seed")
	runCmd.Flags().IntVar(&days, "days", 1, "Override the simulated duration in days")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&outputPath, "output", "", "Write the full result JSON to this path")

	rootCmd.AddCommand(runCmd)
}
