// Package store provides in-memory implementations of the persistence
// interfaces, for tests and dev mode.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/invoicing"
	"github.com/warp/billing-engine/workplan"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements billing.SequenceStore, invoicing.Store and
// workplan.Store. A single mutex serializes all writes; in particular it
// is the atomicity point for sequence issuance.
type Memory struct {
	mu          sync.RWMutex
	sequences   map[string]billing.SequenceConfig
	invoices    map[string]invoicing.Invoice
	definitions map[string]workplan.Definition
}

func NewMemory() *Memory {
	return &Memory{
		sequences:   make(map[string]billing.SequenceConfig),
		invoices:    make(map[string]invoicing.Invoice),
		definitions: make(map[string]workplan.Definition),
	}
}

// Compile-time interface checks
var (
	_ billing.SequenceStore = (*Memory)(nil)
	_ invoicing.Store       = (*Memory)(nil)
	_ workplan.Store        = (*Memory)(nil)
)

// =============================================================================
// SEQUENCES
// =============================================================================

func (m *Memory) GetSequence(_ context.Context, key string) (billing.SequenceConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, ok := m.sequences[key]
	if !ok {
		return billing.SequenceConfig{}, billing.ErrSequenceNotFound
	}
	return cfg, nil
}

func (m *Memory) PutSequence(_ context.Context, key string, cfg billing.SequenceConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[key] = cfg
	return nil
}

func (m *Memory) ListSequences(_ context.Context) (map[string]billing.SequenceConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]billing.SequenceConfig, len(m.sequences))
	for k, cfg := range m.sequences {
		result[k] = cfg
	}
	return result, nil
}

// Issue performs read-format-increment under the write lock, so two
// concurrent callers can never mint the same identifier.
func (m *Memory) Issue(_ context.Context, key string) (string, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.sequences[key]
	if !ok {
		return "", 0, billing.ErrSequenceNotFound
	}

	number := cfg.NextNumber
	id, updated, err := billing.NextID(cfg)
	if err != nil {
		return "", 0, err
	}
	m.sequences[key] = updated
	return id, number, nil
}

// =============================================================================
// INVOICES
// =============================================================================

func (m *Memory) SaveInvoice(_ context.Context, inv invoicing.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[inv.ID] = inv
	return nil
}

func (m *Memory) GetInvoice(_ context.Context, id string) (*invoicing.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inv, ok := m.invoices[id]
	if !ok {
		return nil, billing.ErrInvoiceNotFound
	}
	return &inv, nil
}

func (m *Memory) ListInvoices(_ context.Context) ([]invoicing.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]invoicing.Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		result = append(result, inv)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// =============================================================================
// WORK DEFINITIONS
// =============================================================================

func (m *Memory) SaveDefinition(_ context.Context, def workplan.Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.definitions[def.ID] = def
	return nil
}

func (m *Memory) GetDefinition(_ context.Context, id string) (*workplan.Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	def, ok := m.definitions[id]
	if !ok {
		return nil, billing.ErrWorkNotFound
	}
	return &def, nil
}

func (m *Memory) ListDefinitions(_ context.Context) ([]workplan.Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]workplan.Definition, 0, len(m.definitions))
	for _, def := range m.definitions {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
