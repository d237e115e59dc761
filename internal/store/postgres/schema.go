package postgres

import (
	"context"
	"fmt"
	"strings"

	"savetrail/internal/config"
	"savetrail/internal/store"
)

func (c *Client) EnsureSchema(ctx context.Context, schema *config.Schema) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range buildStatements(schema) {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}
	return nil
}

func buildStatements(schema *config.Schema) []string {
	var statements []string

	var root strings.Builder
	root.WriteString(`CREATE TABLE IF NOT EXISTS "snapshots" (
	"id"          TEXT PRIMARY KEY,
	"filename"    TEXT NOT NULL UNIQUE,
	"ingested_at" TIMESTAMPTZ NOT NULL,
	"game_day"    BIGINT NOT NULL DEFAULT 0,
	"raw_json"    TEXT,
	"renames"     JSONB DEFAULT '{}'`)
	for _, scalar := range schema.Scalars {
		column, _ := store.PhysicalColumn(store.RootTable, scalar.Field)
		fmt.Fprintf(&root, ",\n\t%s %s", quoteIdent(column), pgType(scalar.Type))
	}
	root.WriteString("\n)")
	statements = append(statements, root.String())

	childTable := func(table string, columns []config.Column) {
		var b strings.Builder
		fmt.Fprintf(&b, `CREATE TABLE IF NOT EXISTS %s (
	"id"          BIGSERIAL PRIMARY KEY,
	"snapshot_id" TEXT NOT NULL REFERENCES "snapshots"("id"),
	"position"    BIGINT`, quoteIdent(table))
		for _, col := range columns {
			column, _ := store.PhysicalColumn(table, col.Field)
			fmt.Fprintf(&b, ",\n\t%s %s", quoteIdent(column), pgType(col.Type))
		}
		b.WriteString("\n)")
		statements = append(statements, b.String())
		statements = append(statements, fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS %s ON %s ("snapshot_id")`,
			quoteIdent("idx_"+table+"_snapshot"), quoteIdent(table)))
	}

	for _, coll := range schema.Collections {
		childTable(coll.Table, coll.Columns)
	}
	for _, obj := range schema.Objects {
		if obj.Mode == config.ObjectModeTable {
			childTable(obj.Table, obj.Columns)
		}
	}

	statements = append(statements, `CREATE TABLE IF NOT EXISTS "unmapped_fields" (
	"id"          BIGSERIAL PRIMARY KEY,
	"snapshot_id" TEXT NOT NULL REFERENCES "snapshots"("id"),
	"field"       TEXT NOT NULL,
	"payload"     TEXT,
	CONSTRAINT uq_unmapped UNIQUE ("snapshot_id", "field")
)`)
	statements = append(statements,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_game_day ON "snapshots" ("game_day")`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ingested_at ON "snapshots" ("ingested_at")`,
		`CREATE INDEX IF NOT EXISTS idx_unmapped_snapshot ON "unmapped_fields" ("snapshot_id")`)

	return statements
}

func pgType(typ string) string {
	switch typ {
	case config.TypeInteger:
		return "BIGINT"
	case config.TypeReal:
		return "DOUBLE PRECISION"
	case config.TypeBoolean:
		return "BOOLEAN"
	case config.TypeCurrency:
		return "NUMERIC"
	case config.TypeJSON:
		return "JSONB"
	default:
		return "TEXT"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
