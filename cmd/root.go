// Package cmd implements the stocknotify command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/stocknotify/internal/config"
)

// NewRootCmd returns the root command with every subcommand attached.
func NewRootCmd(cfg *config.AppConfig) *cobra.Command {
	root := &cobra.Command{
		Use:   "stocknotify",
		Short: "Inventory stock notifications over SMTP",
		Long: `stocknotify keeps a small product catalog and emails the management
address when products are restocked or fall to their reorder threshold.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().Bool("verbose", false, "Write logs to stderr instead of the log file")

	root.AddCommand(
		NewServeCmd(cfg),
		NewNotifyCmd(cfg),
		NewProductsCmd(cfg),
		NewLogCmd(cfg),
		NewVersionCmd(),
		NewUpdateCmd(),
	)
	return root
}

// Execute loads configuration and runs the root command.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := NewRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
