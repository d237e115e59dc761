package store

import (
	"context"

	"savetrail/internal/config"
)

// Store is the temporal persistence layer: append-only snapshots plus their
// child rows, queryable across game time. The ingestion engine is the only
// writer; analytical consumers hold read methods only.
type Store interface {
	Close(ctx context.Context) error

	// EnsureSchema creates the snapshot, child, and catch-all tables derived
	// from the mapping schema. Idempotent: running it against an initialized
	// database is a no-op.
	EnsureSchema(ctx context.Context, schema *config.Schema) error

	// HasSnapshot reports whether a save filename was already ingested.
	HasSnapshot(ctx context.Context, filename string) (bool, error)

	// InsertSnapshot writes the root row, every child row, and the unmapped
	// rows in one transaction. On any failure nothing is persisted.
	InsertSnapshot(ctx context.Context, snap SnapshotInsert) error

	Timeline(ctx context.Context) ([]SnapshotSummary, error)
	LatestSnapshot(ctx context.Context) (*SnapshotSummary, error)
	SnapshotCount(ctx context.Context) (int64, error)
	RawDocument(ctx context.Context, id string) ([]byte, error)
	SnapshotRow(ctx context.Context, id string) (map[string]any, error)
	ChildRows(ctx context.Context, table, snapshotID string) ([]map[string]any, error)
	UnmappedFields(ctx context.Context, snapshotID string) ([]UnmappedField, error)

	EmployeeActivity(ctx context.Context) ([]ActivityPoint, error)
	Transactions(ctx context.Context) ([]TransactionPoint, error)
	MarketSeries(ctx context.Context) ([]MarketPoint, error)

	// TableCounts returns row counts per table for diagnostics.
	TableCounts(ctx context.Context) (map[string]int64, error)

	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}
