package driven

import "context"

// StorageManager applies the storage-schema side effects the configuration
// build declares. Today that is a single boolean column per indexed table,
// defaulted false on insert and update, which the generated configuration
// uses to scope delta sources and flip after a primary build.
type StorageManager interface {
	// EnsureIndexedColumn adds the indexed-flag column to the table if it
	// is missing. Idempotent.
	EnsureIndexedColumn(ctx context.Context, table string) error

	// Ping checks if the storage backend is healthy.
	Ping(ctx context.Context) error
}
