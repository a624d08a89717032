/*
store.go - Persistence interface for sequence state

PURPOSE:
  Defines the boundary between the pure sequence generator and whatever
  owns persistence. The engine itself never performs I/O; the store is
  the external collaborator that loads and saves SequenceConfig.

ATOMICITY CONTRACT:
  Two concurrent callers reading the same NextNumber and writing back +1
  independently would issue duplicate identifiers. Issue() is therefore
  the single serialization point: implementations MUST make the
  read-format-increment step atomic (a mutex-guarded critical section, a
  SQL transaction, or a database sequence), guaranteeing at-most-one
  issuance of any given formatted ID per logical sequence key.

IMPLEMENTATIONS:
  - billing/store: In-memory, for tests and dev mode
  - store/sqlite:  SQLite-backed, for production

SEE ALSO:
  - sequence.go: The pure formatting/increment logic Issue builds on
*/
package billing

import "context"

// SequenceStore owns SequenceConfig persistence, keyed by logical
// sequence name ("invoice", "employee", ...).
type SequenceStore interface {
	// GetSequence loads the config for a key. Returns ErrSequenceNotFound
	// if the key was never configured.
	GetSequence(ctx context.Context, key string) (SequenceConfig, error)

	// PutSequence creates or replaces the config for a key.
	PutSequence(ctx context.Context, key string, cfg SequenceConfig) error

	// ListSequences returns every configured sequence, keyed by name.
	ListSequences(ctx context.Context) (map[string]SequenceConfig, error)

	// Issue atomically formats an identifier from the stored config and
	// advances NextNumber. Returns the formatted ID and the number it was
	// minted from.
	Issue(ctx context.Context, key string) (string, int64, error)
}
