package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/stocknotify/internal/config"
)

// NewLogCmd returns the "log" subcommand that prints the delivery log.
func NewLogCmd(cfg *config.AppConfig) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent notification deliveries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				entries, err := a.notificationService().ListLog(ctx, limit)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no notifications recorded")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(), logHeaders, logRows(entries)))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	return cmd
}
