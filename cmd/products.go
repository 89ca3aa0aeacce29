package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/stocknotify/internal/config"
	"github.com/shaharia-lab/stocknotify/internal/inventory"
)

// NewProductsCmd returns the "products" command group for the local catalog.
func NewProductsCmd(cfg *config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the product catalog",
	}
	cmd.AddCommand(
		newProductsImportCmd(cfg),
		newProductsListCmd(cfg),
		newProductsRestockCmd(cfg),
		newProductsScanCmd(cfg),
	)
	return cmd
}

func newProductsImportCmd(cfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import products from a YAML file",
		Long: `Import products from a YAML file of the form:

  products:
    - name: Widget
      sku: W-100
      stock: 4
      low_stock_threshold: 10
      cost_price: "12.50"

Products whose SKU already exists are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening catalog: %w", err)
			}
			defer f.Close() //nolint:errcheck

			products, err := inventory.LoadCatalog(f)
			if err != nil {
				return err
			}

			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				res, err := a.inventoryService(nopPublisher{}).ImportProducts(ctx, products)
				fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d\n", res.Created, res.Skipped)
				return err
			})
		},
	}
}

func newProductsListCmd(cfg *config.AppConfig) *cobra.Command {
	var lowOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				var (
					products []*inventory.Product
					err      error
				)
				if lowOnly {
					products, err = a.products.ListLowStock(ctx)
				} else {
					products, err = a.inventoryService(nopPublisher{}).ListProducts(ctx)
				}
				if err != nil {
					return err
				}
				if len(products) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no products")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(), productHeaders, productRows(products)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&lowOnly, "low", false, "Only list products at or below their threshold")
	return cmd
}

func newProductsRestockCmd(cfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "restock <id> <amount>",
		Short: "Add stock to a product and send the restock confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				if a.notifier == nil {
					fmt.Fprintln(cmd.ErrOrStderr(), newStyles(cmd.ErrOrStderr()).warn.Render("mail not configured; no notification will be sent"))
				}
				bus := a.newBus()
				// Close drains the bus so the notification is sent before exit.
				defer bus.Close()

				p, err := a.inventoryService(bus).Restock(ctx, args[0], amount)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: stock %d -> %d\n", p.Name, p.Stock-amount, p.Stock)
				return nil
			})
		},
	}
}

func newProductsScanCmd(cfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Send order suggestions for every low-stock product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				if a.notifier == nil {
					fmt.Fprintln(cmd.ErrOrStderr(), newStyles(cmd.ErrOrStderr()).warn.Render("mail not configured; no suggestions will be sent"))
				}
				bus := a.newBus()
				products, err := a.inventoryService(bus).ScanLowStock(ctx)
				// Close waits until every queued suggestion has been attempted.
				bus.Close()
				fmt.Fprintf(cmd.OutOrStdout(), "%d order suggestion(s) attempted; run \"stocknotify log\" for delivery status\n", len(products))
				return err
			})
		},
	}
}
