package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// RootTable is the snapshot root table name; child tables come from the
// mapping schema, UnmappedTable holds the drift catch-all.
const (
	RootTable     = "snapshots"
	UnmappedTable = "unmapped_fields"
)

// SnapshotInsert is the complete write plan for one save document.
type SnapshotInsert struct {
	ID         string
	Filename   string
	IngestedAt time.Time
	GameDay    int64

	// Scalars are the mapped root columns in plan order.
	Scalars []ColumnValue

	Children []ChildInsert
	Unmapped []UnmappedField

	// Renames records column names rewritten to dodge reserved identifiers,
	// keyed "<table>.<column>" with the original field as value. Persisted on
	// the root row so the reverse mapping stays recoverable.
	Renames map[string]string

	// Raw is the original document, retained verbatim.
	Raw []byte
}

type ColumnValue struct {
	Column string
	Value  any
}

type ChildInsert struct {
	Table   string
	Columns []string
	Rows    [][]any
}

// UnmappedField is one top-level key with no mapping destination, kept as its
// raw JSON payload so schema drift never discards data.
type UnmappedField struct {
	Field   string
	Payload []byte
}

// SnapshotSummary is the root-row slice the analyzer and CLI read. The typed
// metric fields follow the default mapping's column names.
type SnapshotSummary struct {
	ID             string
	Filename       string
	GameDay        int64
	GameDate       string
	IngestedAt     time.Time
	CompanyName    string
	Balance        decimal.Decimal
	XP             float64
	ResearchPoints int64
}

// ActivityPoint is the per-snapshot workforce capacity reading: Active counts
// employees with an assigned task, Total the unfired headcount.
type ActivityPoint struct {
	SnapshotID string
	GameDay    int64
	Total      int64
	Active     int64
}

type TransactionPoint struct {
	TransactionID string
	Day           int64
	Amount        decimal.Decimal
	Label         string
}

type MarketPoint struct {
	Component string
	GameDay   int64
	BasePrice decimal.Decimal
	Change    float64
}
