package billing_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/billing-engine/billing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func item(qty, rate, tax string) billing.LineItem {
	return billing.LineItem{Quantity: dec(qty), UnitRate: dec(rate), TaxRatePercent: dec(tax)}
}

// =============================================================================
// LINE ITEM ARITHMETIC
// =============================================================================

func TestComputeLineItem_DerivedValues(t *testing.T) {
	// GIVEN: qty 2 x rate 500 at 18% tax
	// THEN: subtotal 1000, tax 180, total 1180
	amounts, err := billing.ComputeLineItem(item("2", "500", "18"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amounts.Subtotal.Equal(dec("1000")) {
		t.Errorf("subtotal = %s, want 1000", amounts.Subtotal)
	}
	if !amounts.Tax.Equal(dec("180")) {
		t.Errorf("tax = %s, want 180", amounts.Tax)
	}
	if !amounts.Total.Equal(amounts.Subtotal.Add(amounts.Tax)) {
		t.Errorf("total = %s, want subtotal + tax", amounts.Total)
	}
}

func TestComputeLineItem_ZeroInputs_YieldZeroNotError(t *testing.T) {
	// GIVEN: zero quantity and rate
	// THEN: all derived values are zero, no error
	amounts, err := billing.ComputeLineItem(item("0", "0", "0"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amounts.Total.IsZero() || !amounts.Subtotal.IsZero() || !amounts.Tax.IsZero() {
		t.Errorf("expected all-zero amounts, got %+v", amounts)
	}
}

func TestComputeLineItem_FractionalPrecision(t *testing.T) {
	// GIVEN: values that drift under binary floats
	// THEN: exact decimal results
	amounts, err := billing.ComputeLineItem(item("3", "0.1", "5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amounts.Subtotal.Equal(dec("0.3")) {
		t.Errorf("subtotal = %s, want 0.3", amounts.Subtotal)
	}
	if !amounts.Tax.Equal(dec("0.015")) {
		t.Errorf("tax = %s, want 0.015", amounts.Tax)
	}
}

func TestComputeLineItem_NegativeInputs_Rejected(t *testing.T) {
	cases := []struct {
		name string
		item billing.LineItem
	}{
		{"negative quantity", item("-1", "100", "0")},
		{"negative rate", item("1", "-100", "0")},
		{"negative tax", item("1", "100", "-5")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := billing.ComputeLineItem(tc.item)
			if !errors.Is(err, billing.ErrNegativeInput) {
				t.Errorf("expected ErrNegativeInput, got %v", err)
			}
			var callerErr *billing.CallerError
			if !errors.As(err, &callerErr) {
				t.Errorf("expected *CallerError, got %T", err)
			}
		})
	}
}

// =============================================================================
// INVOICE TOTALS
// =============================================================================

func TestComputeInvoiceTotals_EndToEndScenario(t *testing.T) {
	// GIVEN: three line items and a flat discount of 50
	//   2 x 500 @ 18%  -> 1000 + 180
	//   1 x 1000 @ 0%  -> 1000 + 0
	//   3 x 100 @ 5%   ->  300 + 15
	// THEN: subtotal 2300, tax 195, grand total 2445
	items := []billing.LineItem{
		item("2", "500", "18"),
		item("1", "1000", "0"),
		item("3", "100", "5"),
	}

	totals, err := billing.ComputeInvoiceTotals(items, dec("50"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.Subtotal.Equal(dec("2300")) {
		t.Errorf("subtotal = %s, want 2300", totals.Subtotal)
	}
	if !totals.TaxTotal.Equal(dec("195")) {
		t.Errorf("tax total = %s, want 195", totals.TaxTotal)
	}
	if !totals.GrandTotal.Equal(dec("2445")) {
		t.Errorf("grand total = %s, want 2445", totals.GrandTotal)
	}
}

func TestComputeInvoiceTotals_OrderIndependent(t *testing.T) {
	// GIVEN: a line item sequence
	// WHEN: shuffled
	// THEN: totals are identical (summation is commutative)
	items := []billing.LineItem{
		item("2", "500", "18"),
		item("1", "1000", "0"),
		item("3", "100", "5"),
		item("0.5", "99.99", "12.5"),
	}
	want, err := billing.ComputeInvoiceTotals(items, dec("10"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := append([]billing.LineItem{}, items...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got, err := billing.ComputeInvoiceTotals(shuffled, dec("10"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.GrandTotal.Equal(want.GrandTotal) || !got.Subtotal.Equal(want.Subtotal) || !got.TaxTotal.Equal(want.TaxTotal) {
			t.Fatalf("totals changed under reordering: got %+v, want %+v", got, want)
		}
	}
}

func TestComputeInvoiceTotals_DiscountBoundaries(t *testing.T) {
	items := []billing.LineItem{item("1", "100", "10")} // subtotal 100, tax 10

	// Discount 0: grand total == subtotal + tax
	totals, err := billing.ComputeInvoiceTotals(items, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.GrandTotal.Equal(dec("110")) {
		t.Errorf("grand total = %s, want 110", totals.GrandTotal)
	}

	// Discount == subtotal + tax: grand total exactly zero
	totals, err = billing.ComputeInvoiceTotals(items, dec("110"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.GrandTotal.IsZero() {
		t.Errorf("grand total = %s, want 0", totals.GrandTotal)
	}

	// Discount > subtotal + tax: negative grand total, NOT clamped.
	// Deliberate: callers use this to represent credit notes.
	totals, err = billing.ComputeInvoiceTotals(items, dec("150"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.GrandTotal.Equal(dec("-40")) {
		t.Errorf("grand total = %s, want -40 (unclamped)", totals.GrandTotal)
	}
}

func TestComputeInvoiceTotals_NegativeDiscount_Rejected(t *testing.T) {
	_, err := billing.ComputeInvoiceTotals(nil, dec("-1"))
	if !errors.Is(err, billing.ErrNegativeInput) {
		t.Errorf("expected ErrNegativeInput, got %v", err)
	}
}

func TestComputeInvoiceTotals_EmptyItems(t *testing.T) {
	totals, err := billing.ComputeInvoiceTotals(nil, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.GrandTotal.IsZero() {
		t.Errorf("grand total = %s, want 0", totals.GrandTotal)
	}
}

// =============================================================================
// PARSE-OR-ZERO
// =============================================================================

func TestDecimalOrZero_UnparsableBecomesZero(t *testing.T) {
	for _, s := range []string{"", "abc", "1.2.3", "--4"} {
		if got := billing.DecimalOrZero(s); !got.IsZero() {
			t.Errorf("DecimalOrZero(%q) = %s, want 0", s, got)
		}
	}
	if got := billing.DecimalOrZero("12.50"); !got.Equal(dec("12.50")) {
		t.Errorf("DecimalOrZero(12.50) = %s", got)
	}
}

func TestLineItemFromStrings_BlankFieldsMeanZero(t *testing.T) {
	// GIVEN: a form row with a blank tax field
	li := billing.LineItemFromStrings("consulting", "2", "500", "")
	amounts, err := billing.ComputeLineItem(li)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amounts.Tax.IsZero() {
		t.Errorf("tax = %s, want 0", amounts.Tax)
	}
	if !amounts.Total.Equal(dec("1000")) {
		t.Errorf("total = %s, want 1000", amounts.Total)
	}
}
