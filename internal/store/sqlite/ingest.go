package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"savetrail/internal/store"
)

// ingestedAtLayout is RFC 3339 UTC with fixed-width nanoseconds. The column
// is TEXT and queries order on it lexically, so the encoding must sort the
// same as the instants it encodes.
const ingestedAtLayout = "2006-01-02T15:04:05.000000000Z"

func (c *Client) HasSnapshot(ctx context.Context, filename string) (bool, error) {
	var exists bool
	err := c.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM "snapshots" WHERE "filename" = ?)`, filename,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking snapshot: %w", err)
	}
	return exists, nil
}

// InsertSnapshot writes the root row and every child and unmapped row inside
// one transaction. A failure anywhere rolls the whole snapshot back; a
// partially-ingested snapshot is never observable.
func (c *Client) InsertSnapshot(ctx context.Context, snap store.SnapshotInsert) error {
	renames, err := json.Marshal(snap.Renames)
	if err != nil {
		return fmt.Errorf("encoding renames: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	columns := []string{`"id"`, `"filename"`, `"ingested_at"`, `"game_day"`, `"raw_json"`, `"renames"`}
	args := []any{
		snap.ID,
		snap.Filename,
		snap.IngestedAt.UTC().Format(ingestedAtLayout),
		snap.GameDay,
		string(snap.Raw),
		string(renames),
	}
	for _, cv := range snap.Scalars {
		columns = append(columns, quoteIdent(cv.Column))
		args = append(args, bindValue(cv.Value))
	}

	query := fmt.Sprintf(`INSERT INTO "snapshots" (%s) VALUES (%s)`,
		strings.Join(columns, ", "), placeholders(len(columns)))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
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

		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("preparing insert for %s: %w", child.Table, err)
		}
		for _, row := range child.Rows {
			rowArgs := make([]any, 0, len(row)+1)
			rowArgs = append(rowArgs, snap.ID)
			for _, v := range row {
				rowArgs = append(rowArgs, bindValue(v))
			}
			if _, err := stmt.ExecContext(ctx, rowArgs...); err != nil {
				stmt.Close()
				return fmt.Errorf("inserting into %s: %w", child.Table, err)
			}
		}
		stmt.Close()
	}

	for _, unmapped := range snap.Unmapped {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO "unmapped_fields" ("snapshot_id", "field", "payload") VALUES (?, ?, ?)`,
			snap.ID, unmapped.Field, string(unmapped.Payload))
		if err != nil {
			return fmt.Errorf("inserting unmapped field %s: %w", unmapped.Field, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// bindValue lowers plan values to driver types: currency decimals become
// their exact string form, booleans become 0/1.
func bindValue(v any) any {
	switch value := v.(type) {
	case decimal.Decimal:
		return value.String()
	case bool:
		if value {
			return int64(1)
		}
		return int64(0)
	default:
		return v
	}
}
