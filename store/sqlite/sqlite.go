/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements billing.SequenceStore, invoicing.Store and workplan.Store
  using SQLite. In production the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

KEY TABLES:
  sequences:        One row per logical sequence (prefix/suffix/width/next)
  invoices:         Invoice documents; line items stored as JSON
  work_definitions: Recurring work with its recurrence descriptor columns

SEQUENCE ATOMICITY:
  Issue() runs SELECT + UPDATE inside one SQL transaction under the
  store's write lock, so concurrent callers can never mint the same
  formatted identifier. Voided invoices do not return their numbers;
  next_number only moves forward.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/billing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - billing/store.go: SequenceStore contract
  - billing/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/invoicing"
	"github.com/warp/billing-engine/workplan"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time interface checks
var (
	_ billing.SequenceStore = (*Store)(nil)
	_ invoicing.Store       = (*Store)(nil)
	_ workplan.Store        = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Logical identifier sequences
	CREATE TABLE IF NOT EXISTS sequences (
		key TEXT PRIMARY KEY,
		prefix TEXT NOT NULL DEFAULT '',
		suffix TEXT NOT NULL DEFAULT '',
		width INTEGER NOT NULL,
		zero_pad INTEGER NOT NULL DEFAULT 1,
		next_number INTEGER NOT NULL
	);

	-- Invoice documents. Lines are a JSON array; totals are always
	-- recomputed from lines, never stored.
	CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		number TEXT,
		issue_date TEXT,
		due_date TEXT,
		lines_json TEXT NOT NULL,
		discount TEXT NOT NULL,
		status TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_invoices_customer
		ON invoices(customer_id);
	CREATE INDEX IF NOT EXISTS idx_invoices_status
		ON invoices(status);
	-- Issued numbers must be unique across the ledger
	CREATE UNIQUE INDEX IF NOT EXISTS idx_invoices_number
		ON invoices(number) WHERE number IS NOT NULL AND number != '';

	-- Recurring work definitions with their recurrence descriptor
	CREATE TABLE IF NOT EXISTS work_definitions (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		title TEXT NOT NULL,
		cadence TEXT NOT NULL,
		selector TEXT NOT NULL,
		weekday INTEGER NOT NULL DEFAULT 0,
		anchor_day INTEGER NOT NULL DEFAULT 0,
		anchor_month INTEGER NOT NULL DEFAULT 0,
		fee_lines_json TEXT NOT NULL,
		discount TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_work_definitions_customer
		ON work_definitions(customer_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SEQUENCES
// =============================================================================

func (s *Store) GetSequence(ctx context.Context, key string) (billing.SequenceConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getSequence(ctx, s.db, key)
}

func (s *Store) getSequence(ctx context.Context, q queryRower, key string) (billing.SequenceConfig, error) {
	var cfg billing.SequenceConfig
	var zeroPad int
	err := q.QueryRowContext(ctx,
		"SELECT prefix, suffix, width, zero_pad, next_number FROM sequences WHERE key = ?",
		key,
	).Scan(&cfg.Prefix, &cfg.Suffix, &cfg.Width, &zeroPad, &cfg.NextNumber)
	if err == sql.ErrNoRows {
		return billing.SequenceConfig{}, billing.ErrSequenceNotFound
	}
	if err != nil {
		return billing.SequenceConfig{}, fmt.Errorf("failed to load sequence %q: %w", key, err)
	}
	cfg.ZeroPad = zeroPad != 0
	return cfg, nil
}

func (s *Store) PutSequence(ctx context.Context, key string, cfg billing.SequenceConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sequences (key, prefix, suffix, width, zero_pad, next_number)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			prefix = excluded.prefix,
			suffix = excluded.suffix,
			width = excluded.width,
			zero_pad = excluded.zero_pad,
			next_number = excluded.next_number
	`, key, cfg.Prefix, cfg.Suffix, cfg.Width, boolInt(cfg.ZeroPad), cfg.NextNumber)
	if err != nil {
		return fmt.Errorf("failed to save sequence %q: %w", key, err)
	}
	return nil
}

func (s *Store) ListSequences(ctx context.Context) (map[string]billing.SequenceConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT key, prefix, suffix, width, zero_pad, next_number FROM sequences")
	if err != nil {
		return nil, fmt.Errorf("failed to query sequences: %w", err)
	}
	defer rows.Close()

	result := make(map[string]billing.SequenceConfig)
	for rows.Next() {
		var key string
		var cfg billing.SequenceConfig
		var zeroPad int
		if err := rows.Scan(&key, &cfg.Prefix, &cfg.Suffix, &cfg.Width, &zeroPad, &cfg.NextNumber); err != nil {
			return nil, err
		}
		cfg.ZeroPad = zeroPad != 0
		result[key] = cfg
	}
	return result, rows.Err()
}

// Issue atomically formats an identifier and advances next_number. The
// SELECT and UPDATE run inside one SQL transaction under the write lock.
func (s *Store) Issue(ctx context.Context, key string) (string, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cfg, err := s.getSequence(ctx, tx, key)
	if err != nil {
		return "", 0, err
	}

	number := cfg.NextNumber
	id, updated, err := billing.NextID(cfg)
	if err != nil {
		return "", 0, err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE sequences SET next_number = ? WHERE key = ? AND next_number = ?",
		updated.NextNumber, key, number,
	)
	if err != nil {
		return "", 0, fmt.Errorf("failed to advance sequence %q: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", 0, billing.ErrConflict
	}

	if err := tx.Commit(); err != nil {
		return "", 0, fmt.Errorf("failed to commit sequence %q: %w", key, err)
	}
	return id, number, nil
}

// =============================================================================
// INVOICES
// =============================================================================

func (s *Store) SaveInvoice(ctx context.Context, inv invoicing.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	linesJSON, err := json.Marshal(inv.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode lines: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invoices
		(id, customer_id, number, issue_date, due_date, lines_json, discount, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			customer_id = excluded.customer_id,
			number = excluded.number,
			issue_date = excluded.issue_date,
			due_date = excluded.due_date,
			lines_json = excluded.lines_json,
			discount = excluded.discount,
			status = excluded.status,
			notes = excluded.notes
	`,
		inv.ID,
		inv.CustomerID,
		inv.Number,
		dateString(inv.IssueDate),
		dateString(inv.DueDate),
		string(linesJSON),
		inv.Discount.String(),
		string(inv.Status),
		inv.Notes,
		inv.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save invoice: %w", err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*invoicing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, number, issue_date, due_date, lines_json, discount, status, notes, created_at
		FROM invoices WHERE id = ?
	`, id)

	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, billing.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]invoicing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, number, issue_date, due_date, lines_json, discount, status, notes, created_at
		FROM invoices ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var result []invoicing.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *inv)
	}
	return result, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanInvoice(row scannable) (*invoicing.Invoice, error) {
	var inv invoicing.Invoice
	var number, issueDate, dueDate, linesJSON, discount, status, notes, createdAt sql.NullString

	err := row.Scan(&inv.ID, &inv.CustomerID, &number, &issueDate, &dueDate,
		&linesJSON, &discount, &status, &notes, &createdAt)
	if err != nil {
		return nil, err
	}

	inv.Number = number.String
	inv.Status = invoicing.Status(status.String)
	inv.Notes = notes.String

	if err := json.Unmarshal([]byte(linesJSON.String), &inv.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode lines for invoice %s: %w", inv.ID, err)
	}
	inv.Discount = billing.DecimalOrZero(discount.String)

	if inv.IssueDate, err = parseDateColumn(issueDate.String); err != nil {
		return nil, fmt.Errorf("invoice %s issue date: %w", inv.ID, err)
	}
	if inv.DueDate, err = parseDateColumn(dueDate.String); err != nil {
		return nil, fmt.Errorf("invoice %s due date: %w", inv.ID, err)
	}
	if createdAt.String != "" {
		inv.CreatedAt, _ = time.Parse(time.RFC3339, createdAt.String)
	}
	return &inv, nil
}

// =============================================================================
// WORK DEFINITIONS
// =============================================================================

func (s *Store) SaveDefinition(ctx context.Context, def workplan.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	feeJSON, err := json.Marshal(def.FeeItems)
	if err != nil {
		return fmt.Errorf("failed to encode fee items: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO work_definitions
		(id, customer_id, title, cadence, selector, weekday, anchor_day, anchor_month,
		 fee_lines_json, discount, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			customer_id = excluded.customer_id,
			title = excluded.title,
			cadence = excluded.cadence,
			selector = excluded.selector,
			weekday = excluded.weekday,
			anchor_day = excluded.anchor_day,
			anchor_month = excluded.anchor_month,
			fee_lines_json = excluded.fee_lines_json,
			discount = excluded.discount,
			active = excluded.active
	`,
		def.ID,
		def.CustomerID,
		def.Title,
		string(def.Recurrence.Cadence),
		string(def.Recurrence.Selector),
		int(def.Recurrence.Weekday),
		def.Recurrence.AnchorDay,
		int(def.Recurrence.AnchorMonth),
		string(feeJSON),
		def.Discount.String(),
		boolInt(def.Active),
		def.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save work definition: %w", err)
	}
	return nil
}

func (s *Store) GetDefinition(ctx context.Context, id string) (*workplan.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, title, cadence, selector, weekday, anchor_day, anchor_month,
		       fee_lines_json, discount, active, created_at
		FROM work_definitions WHERE id = ?
	`, id)

	def, err := scanDefinition(row)
	if err == sql.ErrNoRows {
		return nil, billing.ErrWorkNotFound
	}
	if err != nil {
		return nil, err
	}
	return def, nil
}

func (s *Store) ListDefinitions(ctx context.Context) ([]workplan.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, title, cadence, selector, weekday, anchor_day, anchor_month,
		       fee_lines_json, discount, active, created_at
		FROM work_definitions ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query work definitions: %w", err)
	}
	defer rows.Close()

	var result []workplan.Definition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *def)
	}
	return result, rows.Err()
}

func scanDefinition(row scannable) (*workplan.Definition, error) {
	var def workplan.Definition
	var cadence, selector string
	var weekday, anchorMonth, active int
	var feeJSON, discount, createdAt sql.NullString

	err := row.Scan(&def.ID, &def.CustomerID, &def.Title, &cadence, &selector,
		&weekday, &def.Recurrence.AnchorDay, &anchorMonth,
		&feeJSON, &discount, &active, &createdAt)
	if err != nil {
		return nil, err
	}

	def.Recurrence.Cadence = billing.Cadence(cadence)
	def.Recurrence.Selector = billing.PeriodSelector(selector)
	def.Recurrence.Weekday = time.Weekday(weekday)
	def.Recurrence.AnchorMonth = time.Month(anchorMonth)
	def.Active = active != 0

	if err := json.Unmarshal([]byte(feeJSON.String), &def.FeeItems); err != nil {
		return nil, fmt.Errorf("failed to decode fee items for %s: %w", def.ID, err)
	}
	def.Discount = billing.DecimalOrZero(discount.String)
	if createdAt.String != "" {
		def.CreatedAt, _ = time.Parse(time.RFC3339, createdAt.String)
	}
	return &def, nil
}

// =============================================================================
// HELPERS
// =============================================================================

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func dateString(d billing.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func parseDateColumn(s string) (billing.Date, error) {
	if s == "" {
		return billing.Date{}, nil
	}
	return billing.ParseDate(s)
}

// Reset drops all data. Dev/test only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM invoices;
		DELETE FROM work_definitions;
		DELETE FROM sequences;
	`)
	return err
}
