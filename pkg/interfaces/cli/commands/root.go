// Package commands implements the spares command line
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vsinha/spares/pkg/infrastructure/config"
	"github.com/vsinha/spares/pkg/infrastructure/logger"
)

var version = "0.1.0"

// NewRootCommand builds the command tree over cfg
func NewRootCommand(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "spares",
		Short: "Spare parts inventory for plant maintenance stores",
		Long: `spares keeps the spare parts stock of a plant's maintenance stores:
indents and purchase orders, goods receipts, delivery challans, rework,
production issues, stock transfers and GST invoices.

The store is chosen by SPARES_STORE (memory or postgres). With the memory
store every run starts empty; use --demo or --seed-dir to load master data.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("seed-dir", "", "Load master data CSV files from this directory before running")
	root.PersistentFlags().Bool("demo", false, "Load the demo workshop data before running")

	root.AddCommand(
		newServeCommand(cfg),
		newMigrateCommand(cfg),
		newSeedCommand(cfg),
		newGSTCommand(cfg),
		newReportCommand(cfg),
		newReplenishCommand(cfg),
		newImportStockCommand(cfg),
		newUserCommand(cfg),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure
func Execute(cfg *config.Config) {
	log := logger.WithComponent("cmd")

	if err := NewRootCommand(cfg).Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
