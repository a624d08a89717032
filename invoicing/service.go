package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/billing-engine/billing"
)

// Service coordinates invoice persistence, total computation and number
// issuance. All number minting goes through the sequence store's atomic
// Issue so concurrent issuers can never collide.
type Service struct {
	store     Store
	sequences billing.SequenceStore
	clock     billing.Clock
}

func NewService(store Store, sequences billing.SequenceStore, clock billing.Clock) *Service {
	if clock == nil {
		clock = billing.SystemClock()
	}
	return &Service{store: store, sequences: sequences, clock: clock}
}

// DraftInput carries the fields of a new draft invoice.
type DraftInput struct {
	CustomerID string
	DueDate    billing.Date
	Lines      []billing.LineItem
	Discount   decimal.Decimal
	Notes      string
}

// CreateDraft validates the line amounts and persists a new draft.
func (s *Service) CreateDraft(ctx context.Context, in DraftInput) (*Invoice, error) {
	// Reject out-of-domain amounts up front rather than at issue time.
	if _, err := billing.ComputeInvoiceTotals(in.Lines, in.Discount); err != nil {
		return nil, err
	}

	inv := Invoice{
		ID:         uuid.NewString(),
		CustomerID: in.CustomerID,
		DueDate:    in.DueDate,
		Lines:      in.Lines,
		Discount:   in.Discount,
		Status:     StatusDraft,
		Notes:      in.Notes,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.SaveInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return &inv, nil
}

// Get returns one invoice by ID.
func (s *Service) Get(ctx context.Context, id string) (*Invoice, error) {
	return s.store.GetInvoice(ctx, id)
}

// List returns all invoices.
func (s *Service) List(ctx context.Context) ([]Invoice, error) {
	return s.store.ListInvoices(ctx)
}

// UpdateLines replaces the line items and discount of a draft.
// Issued invoices are immutable.
func (s *Service) UpdateLines(ctx context.Context, id string, lines []billing.LineItem, discount decimal.Decimal) (*Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.IsDraft() {
		return nil, fmt.Errorf("invoice %s: %w", id, billing.ErrInvoiceNotDraft)
	}
	if _, err := billing.ComputeInvoiceTotals(lines, discount); err != nil {
		return nil, err
	}

	inv.Lines = lines
	inv.Discount = discount
	if err := s.store.SaveInvoice(ctx, *inv); err != nil {
		return nil, fmt.Errorf("save lines: %w", err)
	}
	return inv, nil
}

// Issue mints an invoice number from the invoice sequence, stamps the
// issue date from the injected clock and moves the draft to issued.
func (s *Service) Issue(ctx context.Context, id string) (*Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.IsDraft() {
		return nil, fmt.Errorf("invoice %s: %w", id, billing.ErrInvoiceNotDraft)
	}

	number, _, err := s.sequences.Issue(ctx, SequenceInvoices)
	if err != nil {
		return nil, fmt.Errorf("issue number: %w", err)
	}

	inv.Number = number
	inv.IssueDate = s.clock.Today()
	inv.Status = StatusIssued
	if err := s.store.SaveInvoice(ctx, *inv); err != nil {
		return nil, fmt.Errorf("save issued invoice: %w", err)
	}
	return inv, nil
}

// MarkPaid transitions an issued invoice to paid.
func (s *Service) MarkPaid(ctx context.Context, id string) (*Invoice, error) {
	return s.transition(ctx, id, StatusIssued, StatusPaid)
}

// Void cancels a draft or issued invoice. Voided numbers are not reused;
// the sequence only moves forward.
func (s *Service) Void(ctx context.Context, id string) (*Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == StatusPaid || inv.Status == StatusVoid {
		return nil, fmt.Errorf("invoice %s is %s: %w", id, inv.Status, billing.ErrInvalidTransition)
	}
	inv.Status = StatusVoid
	if err := s.store.SaveInvoice(ctx, *inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) transition(ctx context.Context, id string, from, to Status) (*Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != from {
		return nil, fmt.Errorf("invoice %s is %s, want %s: %w", id, inv.Status, from, billing.ErrInvalidTransition)
	}
	inv.Status = to
	if err := s.store.SaveInvoice(ctx, *inv); err != nil {
		return nil, err
	}
	return inv, nil
}
