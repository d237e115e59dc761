package trend

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"savetrail/internal/store"
)

// Analyzer computes derived time series from ingested snapshots. It only
// reads from the store; nothing here mutates state.
type Analyzer struct {
	db store.Store
}

func New(db store.Store) *Analyzer {
	return &Analyzer{db: db}
}

// Point is one value on a game-day axis.
type Point struct {
	GameDay int64           `json:"game_day"`
	Value   decimal.Decimal `json:"value"`
}

// Metric names accepted by Compute.
const (
	MetricBalance     = "balance"
	MetricXP          = "xp"
	MetricUtilization = "utilization"
	MetricCashFlow    = "cashflow"
)

// Compute dispatches a named metric to the matching series. Market
// volatility has its own shape and its own method.
func (a *Analyzer) Compute(ctx context.Context, metric string) ([]Point, error) {
	switch metric {
	case MetricBalance:
		return a.BalanceTrend(ctx)
	case MetricXP:
		return a.XPTrend(ctx)
	case MetricUtilization:
		return a.Utilization(ctx)
	case MetricCashFlow:
		return a.CashFlow(ctx)
	default:
		return nil, fmt.Errorf("unknown metric: %s", metric)
	}
}

// BalanceTrend returns the balance delta between consecutive snapshots,
// one point per interval keyed by the later snapshot's game day. Fewer
// than two snapshots yields an empty series.
func (a *Analyzer) BalanceTrend(ctx context.Context) ([]Point, error) {
	timeline, err := a.db.Timeline(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading timeline: %w", err)
	}

	points := make([]Point, 0)
	for i := 1; i < len(timeline); i++ {
		points = append(points, Point{
			GameDay: timeline[i].GameDay,
			Value:   timeline[i].Balance.Sub(timeline[i-1].Balance),
		})
	}
	return points, nil
}

// XPTrend returns the xp delta between consecutive snapshots.
func (a *Analyzer) XPTrend(ctx context.Context) ([]Point, error) {
	timeline, err := a.db.Timeline(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading timeline: %w", err)
	}

	points := make([]Point, 0)
	for i := 1; i < len(timeline); i++ {
		delta := timeline[i].XP - timeline[i-1].XP
		points = append(points, Point{
			GameDay: timeline[i].GameDay,
			Value:   decimal.NewFromFloat(delta),
		})
	}
	return points, nil
}

// Utilization returns, per snapshot, the share of unfired employees that
// have a task assigned. Snapshots without employees are skipped.
func (a *Analyzer) Utilization(ctx context.Context) ([]Point, error) {
	activity, err := a.db.EmployeeActivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading employee activity: %w", err)
	}

	points := make([]Point, 0, len(activity))
	for _, p := range activity {
		if p.Total == 0 {
			continue
		}
		ratio := decimal.NewFromInt(p.Active).DivRound(decimal.NewFromInt(p.Total), 4)
		points = append(points, Point{GameDay: p.GameDay, Value: ratio})
	}
	return points, nil
}

// CashFlow sums transaction amounts per game day. Snapshots overlap in
// the transactions they carry, so rows are deduplicated by transaction
// id before summing; rows without an id are kept as-is.
func (a *Analyzer) CashFlow(ctx context.Context) ([]Point, error) {
	transactions, err := a.db.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	seen := make(map[string]bool)
	sums := make(map[int64]decimal.Decimal)
	for _, t := range transactions {
		if t.TransactionID != "" {
			if seen[t.TransactionID] {
				continue
			}
			seen[t.TransactionID] = true
		}
		sums[t.Day] = sums[t.Day].Add(t.Amount)
	}

	days := make([]int64, 0, len(sums))
	for day := range sums {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	points := make([]Point, 0, len(days))
	for _, day := range days {
		points = append(points, Point{GameDay: day, Value: sums[day]})
	}
	return points, nil
}
