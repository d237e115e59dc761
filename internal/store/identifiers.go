package store

import "strings"

// RenameSuffix is appended to field names that collide with reserved
// identifier columns. The rule is deterministic so forward and reverse
// mapping agree without out-of-band state.
const RenameSuffix = "_field"

var rootReserved = map[string]struct{}{
	"id":          {},
	"filename":    {},
	"ingested_at": {},
	"game_day":    {},
	"raw_json":    {},
	"renames":     {},
}

var childReserved = map[string]struct{}{
	"id":          {},
	"snapshot_id": {},
	"position":    {},
}

// PhysicalColumn maps a source field name to its column name in table.
// Names pass through verbatim; only collisions with the table's reserved
// identifier columns are rewritten. Comparison is case-folded because SQLite
// identifiers are case-insensitive.
func PhysicalColumn(table, field string) (string, bool) {
	reserved := childReserved
	if table == RootTable {
		reserved = rootReserved
	}
	if _, ok := reserved[strings.ToLower(field)]; ok {
		return field + RenameSuffix, true
	}
	return field, false
}
