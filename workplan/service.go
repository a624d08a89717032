package workplan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/invoicing"
)

// MaxOccurrences caps a single occurrence enumeration. A daily cadence
// over a multi-year range would otherwise produce unbounded output.
const MaxOccurrences = 1000

// Service manages work definitions and derives billing periods and draft
// invoices from them.
type Service struct {
	store    Store
	invoices *invoicing.Service
	clock    billing.Clock
}

func NewService(store Store, invoices *invoicing.Service, clock billing.Clock) *Service {
	if clock == nil {
		clock = billing.SystemClock()
	}
	return &Service{store: store, invoices: invoices, clock: clock}
}

// CreateInput carries the fields of a new work definition. Recurrence
// arrives as raw form fields and is validated here, once.
type CreateInput struct {
	CustomerID string
	Title      string
	Recurrence billing.Raw
	FeeItems   []billing.LineItem
	Discount   decimal.Decimal
}

// Create validates the recurrence and fee items and persists the definition.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Definition, error) {
	descriptor, err := billing.Parse(in.Recurrence)
	if err != nil {
		return nil, err
	}
	if _, err := billing.ComputeInvoiceTotals(in.FeeItems, in.Discount); err != nil {
		return nil, err
	}

	def := Definition{
		ID:         uuid.NewString(),
		CustomerID: in.CustomerID,
		Title:      in.Title,
		Recurrence: descriptor,
		FeeItems:   in.FeeItems,
		Discount:   in.Discount,
		Active:     true,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.SaveDefinition(ctx, def); err != nil {
		return nil, fmt.Errorf("save definition: %w", err)
	}
	return &def, nil
}

// Get returns one definition by ID.
func (s *Service) Get(ctx context.Context, id string) (*Definition, error) {
	return s.store.GetDefinition(ctx, id)
}

// List returns all definitions.
func (s *Service) List(ctx context.Context) ([]Definition, error) {
	return s.store.ListDefinitions(ctx)
}

// TargetPeriod resolves the billing period the definition's selector
// points at, relative to the reference date. A zero reference means
// "today" per the injected clock. A non-empty selector overrides the
// definition's own for this resolution only.
func (s *Service) TargetPeriod(ctx context.Context, defID string, ref billing.Date, selector string) (billing.Period, error) {
	def, err := s.store.GetDefinition(ctx, defID)
	if err != nil {
		return billing.Period{}, err
	}
	return s.resolvePeriod(def, ref, selector)
}

func (s *Service) resolvePeriod(def *Definition, ref billing.Date, selector string) (billing.Period, error) {
	if ref.IsZero() {
		ref = s.clock.Today()
	}
	d := def.Recurrence
	if selector != "" {
		sel, err := billing.ParseSelector(selector)
		if err != nil {
			return billing.Period{}, err
		}
		d.Selector = sel
	}
	return billing.Resolve(d, ref)
}

// Occurrences enumerates the contiguous periods of a descriptor that
// intersect [from, to], in order. The descriptor's selector is ignored:
// occurrences are always the actual periods of the cadence.
func Occurrences(d billing.Descriptor, from, to billing.Date) ([]billing.Period, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("[%s, %s]: %w", from, to, billing.ErrInvalidRange)
	}

	walk := d
	walk.Selector = billing.SelectCurrent

	period, err := billing.Resolve(walk, from)
	if err != nil {
		return nil, err
	}

	var periods []billing.Period
	for {
		periods = append(periods, period)
		if len(periods) > MaxOccurrences {
			return nil, fmt.Errorf("more than %d occurrences in [%s, %s]", MaxOccurrences, from, to)
		}
		if !period.End.Before(to) {
			return periods, nil
		}
		period, err = billing.Resolve(walk, period.End.AddDays(1))
		if err != nil {
			return nil, err
		}
	}
}

// DraftInvoice creates a draft invoice billing the definition's fee
// items for the period resolved at the reference date. The period is
// recorded in the invoice notes; the due date is the period end.
func (s *Service) DraftInvoice(ctx context.Context, defID string, ref billing.Date) (*invoicing.Invoice, error) {
	def, err := s.store.GetDefinition(ctx, defID)
	if err != nil {
		return nil, err
	}

	period, err := s.resolvePeriod(def, ref, "")
	if err != nil {
		return nil, err
	}

	return s.invoices.CreateDraft(ctx, invoicing.DraftInput{
		CustomerID: def.CustomerID,
		DueDate:    period.End,
		Lines:      def.FeeItems,
		Discount:   def.Discount,
		Notes:      fmt.Sprintf("%s for %s", def.Title, period),
	})
}
