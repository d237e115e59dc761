package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"savetrail/internal/store"
)

func (c *Client) HasSnapshot(ctx context.Context, filename string) (bool, error) {
	var exists bool
	err := c.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM "snapshots" WHERE "filename" = $1)`, filename,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking snapshot: %w", err)
	}
	return exists, nil
}

func (c *Client) InsertSnapshot(ctx context.Context, snap store.SnapshotInsert) error {
	renames, err := json.Marshal(snap.Renames)
	if err != nil {
		return fmt.Errorf("encoding renames: %w", err)
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	columns := []string{`"id"`, `"filename"`, `"ingested_at"`, `"game_day"`, `"raw_json"`, `"renames"`}
	args := []any{snap.ID, snap.Filename, snap.IngestedAt.UTC(), snap.GameDay, string(snap.Raw), string(renames)}
	for _, cv := range snap.Scalars {
		columns = append(columns, quoteIdent(cv.Column))
		args = append(args, bindValue(cv.Value))
	}

	query := fmt.Sprintf(`INSERT INTO "snapshots" (%s) VALUES (%s)`,
		strings.Join(columns, ", "), placeholders(len(columns)))
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting snapshot row: %w", err)
	}

	for _, child := range snap.Children {
		cols := make([]string, 0, len(child.Columns)+1)
		cols = append(cols, `"snapshot_id"`)
		for _, col := range child.Columns {
			cols = append(cols, quoteIdent(col))
		}
		insert := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
			quoteIdent(child.Table), strings.Join(cols, ", "), placeholders(len(cols)))

		for _, row := range child.Rows {
			rowArgs := make([]any, 0, len(row)+1)
			rowArgs = append(rowArgs, snap.ID)
			for _, v := range row {
				rowArgs = append(rowArgs, bindValue(v))
			}
			if _, err := tx.Exec(ctx, insert, rowArgs...); err != nil {
				return fmt.Errorf("inserting into %s: %w", child.Table, err)
			}
		}
	}

	for _, unmapped := range snap.Unmapped {
		_, err := tx.Exec(ctx,
			`INSERT INTO "unmapped_fields" ("snapshot_id", "field", "payload") VALUES ($1, $2, $3)`,
			snap.ID, unmapped.Field, string(unmapped.Payload))
		if err != nil {
			return fmt.Errorf("inserting unmapped field %s: %w", unmapped.Field, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

func bindValue(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.String()
	}
	return v
}
