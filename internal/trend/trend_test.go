package trend

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"savetrail/internal/store"
)

// readStore stubs just the read methods the analyzer touches; the embedded
// interface panics on anything else.
type readStore struct {
	store.Store
	timeline     []store.SnapshotSummary
	activity     []store.ActivityPoint
	transactions []store.TransactionPoint
	market       []store.MarketPoint
}

func (r *readStore) Timeline(ctx context.Context) ([]store.SnapshotSummary, error) {
	return r.timeline, nil
}

func (r *readStore) EmployeeActivity(ctx context.Context) ([]store.ActivityPoint, error) {
	return r.activity, nil
}

func (r *readStore) Transactions(ctx context.Context) ([]store.TransactionPoint, error) {
	return r.transactions, nil
}

func (r *readStore) MarketSeries(ctx context.Context) ([]store.MarketPoint, error) {
	return r.market, nil
}

func summary(day int64, balance string, xp float64) store.SnapshotSummary {
	return store.SnapshotSummary{
		GameDay: day,
		Balance: decimal.RequireFromString(balance),
		XP:      xp,
	}
}

func TestBalanceTrend(t *testing.T) {
	t.Run("consecutive deltas", func(t *testing.T) {
		analyzer := New(&readStore{timeline: []store.SnapshotSummary{
			summary(100, "50000", 10),
			summary(105, "62000", 15),
			summary(110, "60000.50", 20),
		}})

		points, err := analyzer.BalanceTrend(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(points) != 2 {
			t.Fatalf("expected 2 points, got %d", len(points))
		}
		if points[0].GameDay != 105 || points[0].Value.String() != "12000" {
			t.Fatalf("unexpected first point %+v", points[0])
		}
		if points[1].GameDay != 110 || points[1].Value.String() != "-1999.5" {
			t.Fatalf("unexpected second point %+v", points[1])
		}
	})

	t.Run("single snapshot yields empty series", func(t *testing.T) {
		analyzer := New(&readStore{timeline: []store.SnapshotSummary{summary(100, "50000", 10)}})
		points, err := analyzer.BalanceTrend(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(points) != 0 {
			t.Fatalf("expected empty series, got %v", points)
		}
	})
}

func TestXPTrend(t *testing.T) {
	analyzer := New(&readStore{timeline: []store.SnapshotSummary{
		summary(100, "0", 10),
		summary(105, "0", 17.5),
	}})

	points, err := analyzer.XPTrend(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if points[0].Value.String() != "7.5" {
		t.Fatalf("unexpected delta %s", points[0].Value)
	}
}

func TestUtilization(t *testing.T) {
	analyzer := New(&readStore{activity: []store.ActivityPoint{
		{GameDay: 100, Total: 2, Active: 1},
		{GameDay: 105, Total: 4, Active: 3},
		{GameDay: 110, Total: 0, Active: 0},
	}})

	points, err := analyzer.Utilization(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected empty snapshots skipped, got %d points", len(points))
	}
	if points[0].Value.String() != "0.5" {
		t.Fatalf("unexpected ratio %s", points[0].Value)
	}
	if points[1].Value.String() != "0.75" {
		t.Fatalf("unexpected ratio %s", points[1].Value)
	}
}

func TestCashFlow(t *testing.T) {
	analyzer := New(&readStore{transactions: []store.TransactionPoint{
		{TransactionID: "t1", Day: 100, Amount: decimal.RequireFromString("-250.5")},
		{TransactionID: "t2", Day: 100, Amount: decimal.RequireFromString("1000")},
		// The same transaction carried by an overlapping later snapshot.
		{TransactionID: "t1", Day: 100, Amount: decimal.RequireFromString("-250.5")},
		{TransactionID: "t3", Day: 101, Amount: decimal.RequireFromString("40")},
	}})

	points, err := analyzer.CashFlow(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 days, got %d", len(points))
	}
	if points[0].GameDay != 100 || points[0].Value.String() != "749.5" {
		t.Fatalf("unexpected day 100 sum %+v", points[0])
	}
	if points[1].GameDay != 101 || points[1].Value.String() != "40" {
		t.Fatalf("unexpected day 101 sum %+v", points[1])
	}
}

func TestMarketVolatility(t *testing.T) {
	analyzer := New(&readStore{market: []store.MarketPoint{
		{Component: "UiComponent", GameDay: 100, BasePrice: decimal.RequireFromString("10"), Change: 0.1},
		{Component: "UiComponent", GameDay: 105, BasePrice: decimal.RequireFromString("14"), Change: 0.3},
		{Component: "BackendComponent", GameDay: 100, BasePrice: decimal.RequireFromString("20"), Change: -0.2},
		{Component: "BackendComponent", GameDay: 105, BasePrice: decimal.RequireFromString("21"), Change: 0.2},
	}})

	results, err := analyzer.MarketVolatility(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 components, got %d", len(results))
	}
	// Sorted by spread descending.
	if results[0].Component != "UiComponent" {
		t.Fatalf("expected UiComponent first, got %s", results[0].Component)
	}
	if results[0].Spread.String() != "4" {
		t.Fatalf("unexpected spread %s", results[0].Spread)
	}
	if results[0].AvgChange.String() != "0.2" {
		t.Fatalf("unexpected avg change %s", results[0].AvgChange)
	}
	if results[0].Samples != 2 {
		t.Fatalf("unexpected samples %d", results[0].Samples)
	}
	if results[1].Component != "BackendComponent" || results[1].Spread.String() != "1" {
		t.Fatalf("unexpected second component %+v", results[1])
	}
}

func TestComputeDispatch(t *testing.T) {
	analyzer := New(&readStore{timeline: []store.SnapshotSummary{
		summary(100, "10", 1),
		summary(105, "20", 2),
	}})

	points, err := analyzer.Compute(context.Background(), MetricBalance)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(points) != 1 || points[0].Value.String() != "10" {
		t.Fatalf("unexpected balance series %v", points)
	}

	if _, err := analyzer.Compute(context.Background(), "nonsense"); err == nil {
		t.Fatalf("expected unknown metric error")
	}
}
