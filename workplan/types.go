// Package workplan implements recurring work definitions: units of work
// that repeat on a recurrence descriptor and bill a fixed set of fee
// items for each resolved period.
package workplan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/billing-engine/billing"
)

// Definition is a recurring unit of work bound to a customer. Its
// recurrence descriptor is validated once at creation; everything
// downstream may resolve periods from it without re-checking.
type Definition struct {
	ID         string
	CustomerID string
	Title      string
	Recurrence billing.Descriptor
	FeeItems   []billing.LineItem
	Discount   decimal.Decimal
	Active     bool
	CreatedAt  time.Time
}

// Store persists work definitions. Implementations: billing/store
// (memory), store/sqlite.
type Store interface {
	SaveDefinition(ctx context.Context, def Definition) error
	GetDefinition(ctx context.Context, id string) (*Definition, error)
	ListDefinitions(ctx context.Context) ([]Definition, error)
}
