package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"savetrail/internal/store"
)

// The typed analytical queries below address columns from the default
// mapping (balance, xp, researchPoints, employees.task, transactions.amount).
// Custom mappings keep the generic methods and RunSQL.

const timelineSelect = `
	SELECT "id", "filename", "game_day", "ingested_at",
	       COALESCE("date", ''), COALESCE("companyName", ''),
	       COALESCE("balance", 0)::text, COALESCE("xp", 0), COALESCE("researchPoints", 0)
	FROM "snapshots"`

func (c *Client) Timeline(ctx context.Context) ([]store.SnapshotSummary, error) {
	rows, err := c.pool.Query(ctx, timelineSelect+` ORDER BY "game_day", "ingested_at"`)
	if err != nil {
		return nil, fmt.Errorf("querying timeline: %w", err)
	}
	defer rows.Close()

	var timeline []store.SnapshotSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		timeline = append(timeline, *summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating timeline: %w", err)
	}
	return timeline, nil
}

func (c *Client) LatestSnapshot(ctx context.Context) (*store.SnapshotSummary, error) {
	rows, err := c.pool.Query(ctx, timelineSelect+` ORDER BY "ingested_at" DESC LIMIT 1`)
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	summary, err := scanSummary(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()
	return summary, rows.Err()
}

func scanSummary(rows pgx.Rows) (*store.SnapshotSummary, error) {
	var s store.SnapshotSummary
	var balance string
	if err := rows.Scan(&s.ID, &s.Filename, &s.GameDay, &s.IngestedAt,
		&s.GameDate, &s.CompanyName, &balance, &s.XP, &s.ResearchPoints); err != nil {
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}

	d, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parsing balance: %w", err)
	}
	s.Balance = d

	return &s, nil
}

func (c *Client) SnapshotCount(ctx context.Context) (int64, error) {
	var count int64
	if err := c.pool.QueryRow(ctx, `SELECT COUNT(*) FROM "snapshots"`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting snapshots: %w", err)
	}
	return count, nil
}

func (c *Client) RawDocument(ctx context.Context, id string) ([]byte, error) {
	var raw *string
	err := c.pool.QueryRow(ctx, `SELECT "raw_json" FROM "snapshots" WHERE "id" = $1`, id).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("snapshot %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading raw document: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	return []byte(*raw), nil
}

func (c *Client) SnapshotRow(ctx context.Context, id string) (map[string]any, error) {
	results, err := c.queryMaps(ctx, `SELECT * FROM "snapshots" WHERE "id" = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot row: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("snapshot %s not found", id)
	}
	return results[0], nil
}

func (c *Client) ChildRows(ctx context.Context, table, snapshotID string) ([]map[string]any, error) {
	if !c.knownTable(table) {
		return nil, fmt.Errorf("unknown table: %s", table)
	}
	query := fmt.Sprintf(`SELECT * FROM %s WHERE "snapshot_id" = $1 ORDER BY "position", "id"`, quoteIdent(table))
	results, err := c.queryMaps(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("reading %s rows: %w", table, err)
	}
	return results, nil
}

func (c *Client) UnmappedFields(ctx context.Context, snapshotID string) ([]store.UnmappedField, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT "field", COALESCE("payload", '') FROM "unmapped_fields" WHERE "snapshot_id" = $1 ORDER BY "field"`,
		snapshotID)
	if err != nil {
		return nil, fmt.Errorf("querying unmapped fields: %w", err)
	}
	defer rows.Close()

	var fields []store.UnmappedField
	for rows.Next() {
		var field, payload string
		if err := rows.Scan(&field, &payload); err != nil {
			return nil, fmt.Errorf("scanning unmapped field: %w", err)
		}
		fields = append(fields, store.UnmappedField{Field: field, Payload: []byte(payload)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating unmapped fields: %w", err)
	}
	return fields, nil
}

func (c *Client) EmployeeActivity(ctx context.Context) ([]store.ActivityPoint, error) {
	rows, err := c.pool.Query(ctx, `
	SELECT s."id", s."game_day",
	       SUM(CASE WHEN COALESCE(e."fired", FALSE) = FALSE THEN 1 ELSE 0 END),
	       SUM(CASE WHEN COALESCE(e."fired", FALSE) = FALSE
	                 AND e."task" IS NOT NULL AND e."task"::text != 'null' THEN 1 ELSE 0 END)
	FROM "snapshots" s
	JOIN "employees" e ON e."snapshot_id" = s."id"
	GROUP BY s."id", s."game_day", s."ingested_at"
	ORDER BY s."game_day", s."ingested_at"`)
	if err != nil {
		return nil, fmt.Errorf("querying employee activity: %w", err)
	}
	defer rows.Close()

	var points []store.ActivityPoint
	for rows.Next() {
		var p store.ActivityPoint
		if err := rows.Scan(&p.SnapshotID, &p.GameDay, &p.Total, &p.Active); err != nil {
			return nil, fmt.Errorf("scanning activity point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating employee activity: %w", err)
	}
	return points, nil
}

func (c *Client) Transactions(ctx context.Context) ([]store.TransactionPoint, error) {
	// The source field "id" collides with the surrogate key, so its column
	// is the recorded rename "id_field".
	rows, err := c.pool.Query(ctx, `
	SELECT COALESCE("id_field", ''), COALESCE("day", 0), COALESCE("amount", 0)::text, COALESCE("label", '')
	FROM "transactions"
	ORDER BY "day", "id"`)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var points []store.TransactionPoint
	for rows.Next() {
		var p store.TransactionPoint
		var amount string
		if err := rows.Scan(&p.TransactionID, &p.Day, &amount, &p.Label); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parsing amount: %w", err)
		}
		p.Amount = d
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}
	return points, nil
}

func (c *Client) MarketSeries(ctx context.Context) ([]store.MarketPoint, error) {
	rows, err := c.pool.Query(ctx, `
	SELECT m."component", s."game_day", COALESCE(m."basePrice", 0)::text, COALESCE(m."change", 0)
	FROM "marketValues" m
	JOIN "snapshots" s ON s."id" = m."snapshot_id"
	ORDER BY m."component", s."game_day", s."ingested_at"`)
	if err != nil {
		return nil, fmt.Errorf("querying market series: %w", err)
	}
	defer rows.Close()

	var points []store.MarketPoint
	for rows.Next() {
		var p store.MarketPoint
		var basePrice string
		if err := rows.Scan(&p.Component, &p.GameDay, &basePrice, &p.Change); err != nil {
			return nil, fmt.Errorf("scanning market point: %w", err)
		}
		d, err := decimal.NewFromString(basePrice)
		if err != nil {
			return nil, fmt.Errorf("parsing base price: %w", err)
		}
		p.BasePrice = d
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating market series: %w", err)
	}
	return points, nil
}

func (c *Client) TableCounts(ctx context.Context) (map[string]int64, error) {
	tables := append([]string{store.RootTable, store.UnmappedTable}, c.schema.Tables()...)

	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		var count int64
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, quoteIdent(table))
		if err := c.pool.QueryRow(ctx, query).Scan(&count); err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		counts[table] = count
	}
	return counts, nil
}

func (c *Client) knownTable(table string) bool {
	if table == store.RootTable || table == store.UnmappedTable {
		return true
	}
	for _, t := range c.schema.Tables() {
		if t == table {
			return true
		}
	}
	return false
}
