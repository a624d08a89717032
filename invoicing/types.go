// Package invoicing implements invoice lifecycle management on top of the
// billing engine: drafts accumulate line items, issuing mints a number
// from the invoice sequence and freezes the document.
package invoicing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/billing-engine/billing"
)

// =============================================================================
// INVOICE
// =============================================================================

// Status is the invoice lifecycle state.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusIssued Status = "issued"
	StatusPaid   Status = "paid"
	StatusVoid   Status = "void"
)

// SequenceInvoices is the logical sequence key invoice numbers are
// minted from.
const SequenceInvoices = "invoice"

// Invoice is a billing document. Drafts have no Number; issuing assigns
// one and the document stops accepting line edits.
type Invoice struct {
	ID         string
	CustomerID string
	Number     string // empty until issued
	IssueDate  billing.Date
	DueDate    billing.Date
	Lines      []billing.LineItem
	Discount   decimal.Decimal
	Status     Status
	Notes      string
	CreatedAt  time.Time
}

// Totals computes the invoice's aggregate amounts. Totals are always
// derived from the lines, never stored de-normalized, so a recomputation
// can never drift from the line items.
func (inv *Invoice) Totals() (billing.InvoiceTotals, error) {
	return billing.ComputeInvoiceTotals(inv.Lines, inv.Discount)
}

// IsDraft reports whether the invoice still accepts mutations.
func (inv *Invoice) IsDraft() bool { return inv.Status == StatusDraft }

// =============================================================================
// STORE - Persistence collaborator
// =============================================================================

// Store persists invoices. Implementations: billing/store (memory),
// store/sqlite.
type Store interface {
	SaveInvoice(ctx context.Context, inv Invoice) error
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	ListInvoices(ctx context.Context) ([]Invoice, error)
}
