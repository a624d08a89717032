// Package cmd - totals command
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/warp/billing-engine/billing"
)

var (
	totalLines    []string
	totalDiscount string
)

// totalsCmd computes invoice totals from line specs.
var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Compute invoice totals from line items",
	Long: `Compute per-line and invoice totals with exact decimal arithmetic.

Each --line is "description:quantity:unit_rate:tax_percent". Blank or
unparsable numbers are treated as zero.

Examples:
  billctl totals --line "Bookkeeping:10:150:10" --line "Filing:1:800:5"
  billctl totals --line "Retainer:1:5000:18" --discount 500`,
	RunE: runTotals,
}

func init() {
	totalsCmd.Flags().StringArrayVarP(&totalLines, "line", "l", nil, "line item as description:quantity:rate:tax")
	totalsCmd.Flags().StringVarP(&totalDiscount, "discount", "d", "0", "invoice-level discount")
}

func runTotals(cmd *cobra.Command, args []string) error {
	if len(totalLines) == 0 {
		return fmt.Errorf("at least one --line is required")
	}

	items := make([]billing.LineItem, 0, len(totalLines))
	for _, spec := range totalLines {
		parts := strings.SplitN(spec, ":", 4)
		for len(parts) < 4 {
			parts = append(parts, "")
		}
		items = append(items, billing.LineItemFromStrings(parts[0], parts[1], parts[2], parts[3]))
	}

	for _, item := range items {
		amounts, err := billing.ComputeLineItem(item)
		if err != nil {
			return err
		}
		fmt.Printf("%-30s subtotal=%s tax=%s total=%s\n",
			item.Description, amounts.Subtotal, amounts.Tax, amounts.Total)
	}

	totals, err := billing.ComputeInvoiceTotals(items, billing.DecimalOrZero(totalDiscount))
	if err != nil {
		return err
	}

	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Subtotal:    %s\n", totals.Subtotal)
	fmt.Printf("Tax:         %s\n", totals.TaxTotal)
	fmt.Printf("Discount:    %s\n", totals.Discount)
	fmt.Printf("Grand total: %s\n", totals.GrandTotal)
	return nil
}
