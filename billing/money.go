/*
Package billing provides the core invoice calculation and recurrence
scheduling engine.

PURPOSE:
  This package contains pure, immutable value types and algorithms for
  small-business billing: per-line money/tax arithmetic, invoice totals,
  recurrence descriptors with a canonical period resolver, and formatted
  identifier sequences.

KEY CONCEPTS IN THIS FILE (money.go):
  - LineItem:      quantity x unit rate with a percentage tax rate
  - LineAmounts:   the derived subtotal/tax/total of one line
  - InvoiceTotals: aggregate over an ordered line sequence plus a flat discount

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere, no binary floats, no internal
     rounding. Display rounding is the presentation layer's concern.
  2. Purity: every computation is a side-effect-free function of its inputs.
  3. Forgiving parsing, strict domain: unparsable numbers become zero
     (mirroring form inputs), but negative values are rejected loudly.

USAGE:
  item := billing.LineItem{
      Description:    "Monthly bookkeeping",
      Quantity:       decimal.NewFromInt(2),
      UnitRate:       decimal.NewFromInt(500),
      TaxRatePercent: decimal.NewFromInt(18),
  }
  amounts, err := billing.ComputeLineItem(item)

SEE ALSO:
  - recurrence.go: Recurrence descriptor and validation
  - period.go: Period resolver
  - sequence.go: Formatted identifier sequences
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// LINE ITEM - One row of an invoice
// =============================================================================

// LineItem is a single invoice row. Quantity, UnitRate and TaxRatePercent
// must be non-negative; zero values are valid and yield zero amounts.
type LineItem struct {
	Description    string
	Quantity       decimal.Decimal
	UnitRate       decimal.Decimal
	TaxRatePercent decimal.Decimal
}

// LineAmounts are the derived values of one line.
//
// Subtotal = Quantity x UnitRate
// Tax      = Subtotal x TaxRatePercent / 100
// Total    = Subtotal + Tax
type LineAmounts struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// InvoiceTotals aggregates an ordered sequence of line items.
//
// GrandTotal = Subtotal + TaxTotal - Discount. GrandTotal is deliberately
// NOT clamped at zero: a discount exceeding subtotal+tax produces a
// negative total, which callers may use to represent credit notes.
type InvoiceTotals struct {
	Subtotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	Discount   decimal.Decimal
	GrandTotal decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// =============================================================================
// ARITHMETIC ENGINE
// =============================================================================

// ComputeLineItem derives the subtotal, tax and total of a single line.
// Negative quantity, rate or tax is a caller bug and returns a CallerError.
func ComputeLineItem(item LineItem) (LineAmounts, error) {
	if item.Quantity.IsNegative() {
		return LineAmounts{}, &CallerError{Field: "quantity", Value: item.Quantity.String()}
	}
	if item.UnitRate.IsNegative() {
		return LineAmounts{}, &CallerError{Field: "unit_rate", Value: item.UnitRate.String()}
	}
	if item.TaxRatePercent.IsNegative() {
		return LineAmounts{}, &CallerError{Field: "tax_rate_percent", Value: item.TaxRatePercent.String()}
	}

	subtotal := item.Quantity.Mul(item.UnitRate)
	tax := subtotal.Mul(item.TaxRatePercent).Div(oneHundred)
	return LineAmounts{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}, nil
}

// ComputeInvoiceTotals aggregates line items and applies a flat discount.
// Summation is commutative: reordering items never changes the result.
func ComputeInvoiceTotals(items []LineItem, discount decimal.Decimal) (InvoiceTotals, error) {
	if discount.IsNegative() {
		return InvoiceTotals{}, &CallerError{Field: "discount", Value: discount.String()}
	}

	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	for _, item := range items {
		amounts, err := ComputeLineItem(item)
		if err != nil {
			return InvoiceTotals{}, err
		}
		subtotal = subtotal.Add(amounts.Subtotal)
		taxTotal = taxTotal.Add(amounts.Tax)
	}

	return InvoiceTotals{
		Subtotal:   subtotal,
		TaxTotal:   taxTotal,
		Discount:   discount,
		GrandTotal: subtotal.Add(taxTotal).Sub(discount),
	}, nil
}

// DecimalOrZero parses a decimal string, treating anything unparsable
// (including the empty string) as zero. This mirrors the behavior of
// numeric form fields: a blank quantity means zero, never an error.
func DecimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// LineItemFromStrings builds a LineItem from raw form-field strings,
// defaulting unparsable numbers to zero.
func LineItemFromStrings(description, quantity, unitRate, taxRatePercent string) LineItem {
	return LineItem{
		Description:    description,
		Quantity:       DecimalOrZero(quantity),
		UnitRate:       DecimalOrZero(unitRate),
		TaxRatePercent: DecimalOrZero(taxRatePercent),
	}
}
