package mcp

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"savetrail/internal/store"
	"savetrail/internal/trend"
)

type GetLatestSnapshotInput struct{}

type GetTimelineInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of snapshots, newest last"`
}

type ComputeTrendInput struct {
	Metric string `json:"metric" jsonschema:"one of balance, xp, utilization, cashflow, market"`
}

type RunSQLInput struct {
	Query  string         `json:"query" jsonschema:"read-only SELECT statement"`
	Params map[string]any `json:"params,omitempty" jsonschema:"positional parameters keyed 1..n"`
}

type SnapshotOutput struct {
	ID             string  `json:"id"`
	Filename       string  `json:"filename"`
	GameDay        int64   `json:"game_day"`
	GameDate       string  `json:"game_date"`
	IngestedAt     string  `json:"ingested_at"`
	CompanyName    string  `json:"company_name"`
	Balance        string  `json:"balance"`
	XP             float64 `json:"xp"`
	ResearchPoints int64   `json:"research_points"`
}

type GetTimelineOutput struct {
	Snapshots []SnapshotOutput `json:"snapshots"`
}

type TrendPointOutput struct {
	GameDay int64  `json:"game_day"`
	Value   string `json:"value"`
}

type MarketVolatilityOutput struct {
	Component string `json:"component"`
	MinPrice  string `json:"min_price"`
	MaxPrice  string `json:"max_price"`
	Spread    string `json:"spread"`
	AvgChange string `json:"avg_change"`
	Samples   int64  `json:"samples"`
}

type ComputeTrendOutput struct {
	Metric string                   `json:"metric"`
	Points []TrendPointOutput       `json:"points,omitempty"`
	Market []MarketVolatilityOutput `json:"market,omitempty"`
}

type RunSQLOutput struct {
	Rows []map[string]any `json:"rows"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_latest_snapshot",
		Description: "Return the most recently ingested snapshot summary",
	}, s.handleGetLatestSnapshot)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_timeline",
		Description: "List ingested snapshots in game-day order",
	}, s.handleGetTimeline)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "compute_trend",
		Description: "Compute a derived metric series across snapshots",
	}, s.handleComputeTrend)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "run_sql",
		Description: "Run a read-only SQL query against the snapshot database",
	}, s.handleRunSQL)
}

func (s *Server) handleGetLatestSnapshot(ctx context.Context, req *sdk.CallToolRequest, input GetLatestSnapshotInput) (*sdk.CallToolResult, SnapshotOutput, error) {
	latest, err := s.db.LatestSnapshot(ctx)
	if err != nil {
		return nil, SnapshotOutput{}, err
	}
	if latest == nil {
		return nil, SnapshotOutput{}, fmt.Errorf("no snapshots ingested")
	}
	return nil, snapshotOutputFromSummary(*latest), nil
}

func (s *Server) handleGetTimeline(ctx context.Context, req *sdk.CallToolRequest, input GetTimelineInput) (*sdk.CallToolResult, GetTimelineOutput, error) {
	timeline, err := s.db.Timeline(ctx)
	if err != nil {
		return nil, GetTimelineOutput{}, err
	}
	if input.Limit > 0 && len(timeline) > input.Limit {
		timeline = timeline[len(timeline)-input.Limit:]
	}

	output := make([]SnapshotOutput, 0, len(timeline))
	for _, summary := range timeline {
		output = append(output, snapshotOutputFromSummary(summary))
	}
	return nil, GetTimelineOutput{Snapshots: output}, nil
}

func (s *Server) handleComputeTrend(ctx context.Context, req *sdk.CallToolRequest, input ComputeTrendInput) (*sdk.CallToolResult, ComputeTrendOutput, error) {
	if input.Metric == "" {
		return nil, ComputeTrendOutput{}, fmt.Errorf("metric is required")
	}

	if input.Metric == "market" {
		volatility, err := s.analyzer.MarketVolatility(ctx)
		if err != nil {
			return nil, ComputeTrendOutput{}, err
		}
		output := make([]MarketVolatilityOutput, 0, len(volatility))
		for _, v := range volatility {
			output = append(output, MarketVolatilityOutput{
				Component: v.Component,
				MinPrice:  v.MinPrice.String(),
				MaxPrice:  v.MaxPrice.String(),
				Spread:    v.Spread.String(),
				AvgChange: v.AvgChange.String(),
				Samples:   v.Samples,
			})
		}
		return nil, ComputeTrendOutput{Metric: input.Metric, Market: output}, nil
	}

	points, err := s.analyzer.Compute(ctx, input.Metric)
	if err != nil {
		return nil, ComputeTrendOutput{}, err
	}
	return nil, ComputeTrendOutput{Metric: input.Metric, Points: trendPointsOutput(points)}, nil
}

func (s *Server) handleRunSQL(ctx context.Context, req *sdk.CallToolRequest, input RunSQLInput) (*sdk.CallToolResult, RunSQLOutput, error) {
	if input.Query == "" {
		return nil, RunSQLOutput{}, fmt.Errorf("query is required")
	}
	rows, err := s.db.RunSQL(ctx, input.Query, input.Params)
	if err != nil {
		return nil, RunSQLOutput{}, err
	}
	return nil, RunSQLOutput{Rows: rows}, nil
}

func snapshotOutputFromSummary(s store.SnapshotSummary) SnapshotOutput {
	return SnapshotOutput{
		ID:             s.ID,
		Filename:       s.Filename,
		GameDay:        s.GameDay,
		GameDate:       s.GameDate,
		IngestedAt:     s.IngestedAt.UTC().Format(time.RFC3339),
		CompanyName:    s.CompanyName,
		Balance:        s.Balance.String(),
		XP:             s.XP,
		ResearchPoints: s.ResearchPoints,
	}
}

func trendPointsOutput(points []trend.Point) []TrendPointOutput {
	output := make([]TrendPointOutput, 0, len(points))
	for _, p := range points {
		output = append(output, TrendPointOutput{GameDay: p.GameDay, Value: p.Value.String()})
	}
	return output
}
