// Package cmd provides the CLI commands for taxcalc.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FelipeAlvarezM0/fiscalprovider/internal/config"
	"github.com/FelipeAlvarezM0/fiscalprovider/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "taxcalc",
	Short: "Estimate federal and state taxes from a profile snapshot",
	Long: `taxcalc turns a tax profile, income records, transactions and a signed
jurisdiction ruleset into a scored, explained federal/state tax estimate.

Examples:
  taxcalc estimate bundle.json
  taxcalc estimate --format json bundle.json
  taxcalc rulesets verify`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.taxcalc.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(rulesetsCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	// Initialize logging
	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("taxcalc version 0.1.0")
	},
}
