package sqlite

import (
	"context"
	"fmt"
	"strings"

	"savetrail/internal/config"
	"savetrail/internal/store"
)

// EnsureSchema derives the DDL from the mapping schema and applies it.
// Everything is CREATE IF NOT EXISTS, so initializing an already-initialized
// database file is a no-op.
func (c *Client) EnsureSchema(ctx context.Context, schema *config.Schema) error {
	ddl := buildDDL(schema)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

func buildDDL(schema *config.Schema) string {
	var b strings.Builder

	b.WriteString(`CREATE TABLE IF NOT EXISTS "snapshots" (
	"id"          TEXT PRIMARY KEY,
	"filename"    TEXT NOT NULL UNIQUE,
	"ingested_at" TEXT NOT NULL,
	"game_day"    INTEGER NOT NULL DEFAULT 0,
	"raw_json"    TEXT,
	"renames"     TEXT DEFAULT '{}'`)
	for _, scalar := range schema.Scalars {
		column, _ := store.PhysicalColumn(store.RootTable, scalar.Field)
		fmt.Fprintf(&b, ",\n\t%s %s", quoteIdent(column), sqliteType(scalar.Type))
	}
	b.WriteString("\n);\n")

	writeChildTable := func(table string, columns []config.Column) {
		fmt.Fprintf(&b, `CREATE TABLE IF NOT EXISTS %s (
	"id"          INTEGER PRIMARY KEY AUTOINCREMENT,
	"snapshot_id" TEXT NOT NULL REFERENCES "snapshots"("id"),
	"position"    INTEGER`, quoteIdent(table))
		for _, col := range columns {
			column, _ := store.PhysicalColumn(table, col.Field)
			fmt.Fprintf(&b, ",\n\t%s %s", quoteIdent(column), sqliteType(col.Type))
		}
		b.WriteString("\n);\n")
		fmt.Fprintf(&b, "CREATE INDEX IF NOT EXISTS %s ON %s (\"snapshot_id\");\n",
			quoteIdent("idx_"+table+"_snapshot"), quoteIdent(table))
	}

	for _, coll := range schema.Collections {
		writeChildTable(coll.Table, coll.Columns)
	}
	for _, obj := range schema.Objects {
		if obj.Mode == config.ObjectModeTable {
			writeChildTable(obj.Table, obj.Columns)
		}
	}

	b.WriteString(`CREATE TABLE IF NOT EXISTS "unmapped_fields" (
	"id"          INTEGER PRIMARY KEY AUTOINCREMENT,
	"snapshot_id" TEXT NOT NULL REFERENCES "snapshots"("id"),
	"field"       TEXT NOT NULL,
	"payload"     TEXT,
	CONSTRAINT uq_unmapped UNIQUE ("snapshot_id", "field")
);
CREATE INDEX IF NOT EXISTS idx_snapshots_game_day ON "snapshots" ("game_day");
CREATE INDEX IF NOT EXISTS idx_snapshots_ingested_at ON "snapshots" ("ingested_at");
CREATE INDEX IF NOT EXISTS idx_unmapped_snapshot ON "unmapped_fields" ("snapshot_id");
`)

	return b.String()
}

func sqliteType(typ string) string {
	switch typ {
	case config.TypeInteger, config.TypeBoolean:
		return "INTEGER"
	case config.TypeReal:
		return "REAL"
	default:
		// text, currency (decimal string), json
		return "TEXT"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}
