package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"savetrail/internal/store"
)

type mockStore struct {
	store.Store
	timeline []store.SnapshotSummary
	sqlRows  []map[string]any
	sqlErr   error

	lastQuery  string
	lastParams map[string]any
}

func (m *mockStore) Timeline(ctx context.Context) ([]store.SnapshotSummary, error) {
	return m.timeline, nil
}

func (m *mockStore) LatestSnapshot(ctx context.Context) (*store.SnapshotSummary, error) {
	if len(m.timeline) == 0 {
		return nil, nil
	}
	last := m.timeline[len(m.timeline)-1]
	return &last, nil
}

func (m *mockStore) MarketSeries(ctx context.Context) ([]store.MarketPoint, error) {
	return nil, nil
}

func (m *mockStore) RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	m.lastQuery = query
	m.lastParams = params
	return m.sqlRows, m.sqlErr
}

func testTimeline() []store.SnapshotSummary {
	return []store.SnapshotSummary{
		{
			ID: "s1", Filename: "s1.json", GameDay: 100, GameDate: "2021-05-10T12:00:00Z",
			IngestedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			CompanyName: "testco", Balance: decimal.RequireFromString("50000"), XP: 10,
		},
		{
			ID: "s2", Filename: "s2.json", GameDay: 105, GameDate: "2021-05-15T12:00:00Z",
			IngestedAt:  time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			CompanyName: "testco", Balance: decimal.RequireFromString("62000"), XP: 15,
		},
	}
}

func TestGetLatestSnapshot(t *testing.T) {
	t.Run("returns newest snapshot", func(t *testing.T) {
		server := NewServer(&mockStore{timeline: testTimeline()}, "test")

		_, output, err := server.handleGetLatestSnapshot(context.Background(), nil, GetLatestSnapshotInput{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output.ID != "s2" {
			t.Fatalf("expected s2, got %s", output.ID)
		}
		if output.Balance != "62000" {
			t.Fatalf("expected balance string, got %s", output.Balance)
		}
		if output.IngestedAt != "2026-03-02T10:00:00Z" {
			t.Fatalf("unexpected timestamp %s", output.IngestedAt)
		}
	})

	t.Run("empty store errors", func(t *testing.T) {
		server := NewServer(&mockStore{}, "test")
		if _, _, err := server.handleGetLatestSnapshot(context.Background(), nil, GetLatestSnapshotInput{}); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestGetTimeline(t *testing.T) {
	server := NewServer(&mockStore{timeline: testTimeline()}, "test")

	t.Run("full timeline", func(t *testing.T) {
		_, output, err := server.handleGetTimeline(context.Background(), nil, GetTimelineInput{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(output.Snapshots) != 2 {
			t.Fatalf("expected 2 snapshots, got %d", len(output.Snapshots))
		}
		if output.Snapshots[0].ID != "s1" {
			t.Fatalf("expected game-day order, got %s first", output.Snapshots[0].ID)
		}
	})

	t.Run("limit keeps newest", func(t *testing.T) {
		_, output, err := server.handleGetTimeline(context.Background(), nil, GetTimelineInput{Limit: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(output.Snapshots) != 1 || output.Snapshots[0].ID != "s2" {
			t.Fatalf("unexpected limited timeline %+v", output.Snapshots)
		}
	})
}

func TestComputeTrend(t *testing.T) {
	server := NewServer(&mockStore{timeline: testTimeline()}, "test")

	t.Run("balance series", func(t *testing.T) {
		_, output, err := server.handleComputeTrend(context.Background(), nil, ComputeTrendInput{Metric: "balance"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(output.Points) != 1 {
			t.Fatalf("expected 1 point, got %d", len(output.Points))
		}
		if output.Points[0].GameDay != 105 || output.Points[0].Value != "12000" {
			t.Fatalf("unexpected point %+v", output.Points[0])
		}
	})

	t.Run("market volatility shape", func(t *testing.T) {
		_, output, err := server.handleComputeTrend(context.Background(), nil, ComputeTrendInput{Metric: "market"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output.Metric != "market" {
			t.Fatalf("unexpected metric %s", output.Metric)
		}
		if len(output.Market) != 0 {
			t.Fatalf("expected empty market series, got %+v", output.Market)
		}
	})

	t.Run("missing metric rejected", func(t *testing.T) {
		if _, _, err := server.handleComputeTrend(context.Background(), nil, ComputeTrendInput{}); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown metric rejected", func(t *testing.T) {
		if _, _, err := server.handleComputeTrend(context.Background(), nil, ComputeTrendInput{Metric: "vibes"}); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestRunSQLTool(t *testing.T) {
	t.Run("passes query and params through", func(t *testing.T) {
		db := &mockStore{sqlRows: []map[string]any{{"filename": "s1.json"}}}
		server := NewServer(db, "test")

		_, output, err := server.handleRunSQL(context.Background(), nil, RunSQLInput{
			Query:  `SELECT "filename" FROM "snapshots" WHERE "game_day" = ?`,
			Params: map[string]any{"1": 100},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(output.Rows) != 1 || output.Rows[0]["filename"] != "s1.json" {
			t.Fatalf("unexpected rows %+v", output.Rows)
		}
		if db.lastQuery == "" || db.lastParams["1"] != 100 {
			t.Fatalf("query not forwarded")
		}
	})

	t.Run("empty query rejected", func(t *testing.T) {
		server := NewServer(&mockStore{}, "test")
		if _, _, err := server.handleRunSQL(context.Background(), nil, RunSQLInput{}); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("store errors propagate", func(t *testing.T) {
		server := NewServer(&mockStore{sqlErr: errors.New("only SELECT queries are allowed")}, "test")
		if _, _, err := server.handleRunSQL(context.Background(), nil, RunSQLInput{Query: "DELETE FROM snapshots"}); err == nil {
			t.Fatalf("expected error")
		}
	})
}
