package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/stocknotify/internal/config"
	"github.com/shaharia-lab/stocknotify/internal/inventory"
	"github.com/shaharia-lab/stocknotify/internal/mail"
)

// productFlags describes a product either by catalog ID or inline.
type productFlags struct {
	id        string
	name      string
	sku       string
	stock     int
	threshold int
	cost      string
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "id", "", "Catalog product ID (other product flags are ignored)")
	cmd.Flags().StringVar(&f.name, "name", "", "Product name")
	cmd.Flags().StringVar(&f.sku, "sku", "", "Product SKU")
	cmd.Flags().IntVar(&f.stock, "stock", 0, "Current stock")
	cmd.Flags().IntVar(&f.threshold, "threshold", 0, "Low-stock threshold")
	cmd.Flags().StringVar(&f.cost, "cost", "", "Unit cost price, e.g. 12.50")
}

// inline builds a product snapshot from the flags.
func (f *productFlags) inline() (inventory.Product, error) {
	p := inventory.Product{
		Name:              f.name,
		Stock:             f.stock,
		LowStockThreshold: f.threshold,
	}
	if f.sku != "" {
		sku := f.sku
		p.SKU = &sku
	}
	if f.cost != "" {
		d, err := decimal.NewFromString(f.cost)
		if err != nil {
			return inventory.Product{}, fmt.Errorf("invalid --cost %q: %w", f.cost, err)
		}
		p.CostPrice = &d
	}
	return p, nil
}

// resolve returns the catalog product when --id is set, otherwise the inline product.
func (f *productFlags) resolve(ctx context.Context, a *app) (inventory.Product, error) {
	if f.id == "" {
		return f.inline()
	}
	p, err := a.inventoryService(nopPublisher{}).GetProduct(ctx, f.id)
	if err != nil {
		return inventory.Product{}, err
	}
	return *p, nil
}

// nopPublisher discards events for commands that only read the catalog.
type nopPublisher struct{}

func (nopPublisher) Publish(string, map[string]string) {}

func (nopPublisher) PublishWait(context.Context, string, map[string]string) error { return nil }

// NewNotifyCmd returns the "notify" command group that sends a notification
// synchronously and reports the outcome.
func NewNotifyCmd(cfg *config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a stock notification now",
	}
	cmd.AddCommand(newNotifyRestockCmd(cfg), newNotifyLowStockCmd(cfg))
	return cmd
}

func newNotifyRestockCmd(cfg *config.AppConfig) *cobra.Command {
	var (
		pf     productFlags
		amount int
	)
	cmd := &cobra.Command{
		Use:   "restock",
		Short: "Send a restock confirmation",
		Long: `Send a restock confirmation to the management address. --stock is the
stock before the restock; the new stock is stock + amount.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				if _, err := a.requireNotifier(); err != nil {
					return err
				}
				p, err := pf.resolve(ctx, a)
				if err != nil {
					return err
				}
				receipt, err := a.notificationService().SendRestock(ctx, p, p.Stock, amount)
				return reportSend(cmd, receipt, err)
			})
		},
	}
	pf.register(cmd)
	cmd.Flags().IntVar(&amount, "amount", 0, "Units received")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newNotifyLowStockCmd(cfg *config.AppConfig) *cobra.Command {
	var pf productFlags
	cmd := &cobra.Command{
		Use:   "low-stock",
		Short: "Send a low-stock order suggestion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				if _, err := a.requireNotifier(); err != nil {
					return err
				}
				p, err := pf.resolve(ctx, a)
				if err != nil {
					return err
				}
				receipt, err := a.notificationService().SendLowStock(ctx, p)
				return reportSend(cmd, receipt, err)
			})
		},
	}
	pf.register(cmd)
	return cmd
}

func reportSend(cmd *cobra.Command, receipt mail.Receipt, err error) error {
	st := newStyles(cmd.OutOrStdout())
	if err != nil {
		var te *mail.TransportError
		if errors.As(err, &te) {
			fmt.Fprintln(cmd.ErrOrStderr(), st.failed.Render("delivery failed"))
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", st.ok.Render("sent"), receipt.MessageID)
	return nil
}
