package trend

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ComponentVolatility summarizes how a component's market price moved
// across the recorded snapshots.
type ComponentVolatility struct {
	Component string          `json:"component"`
	MinPrice  decimal.Decimal `json:"min_price"`
	MaxPrice  decimal.Decimal `json:"max_price"`
	Spread    decimal.Decimal `json:"spread"`
	AvgChange decimal.Decimal `json:"avg_change"`
	Samples   int64           `json:"samples"`
}

// MarketVolatility aggregates the market series per component, sorted by
// spread descending so the most volatile components come first.
func (a *Analyzer) MarketVolatility(ctx context.Context) ([]ComponentVolatility, error) {
	series, err := a.db.MarketSeries(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading market series: %w", err)
	}

	byComponent := make(map[string]*ComponentVolatility)
	changeSums := make(map[string]decimal.Decimal)
	var order []string

	for _, p := range series {
		v, ok := byComponent[p.Component]
		if !ok {
			v = &ComponentVolatility{
				Component: p.Component,
				MinPrice:  p.BasePrice,
				MaxPrice:  p.BasePrice,
			}
			byComponent[p.Component] = v
			order = append(order, p.Component)
		}
		if p.BasePrice.LessThan(v.MinPrice) {
			v.MinPrice = p.BasePrice
		}
		if p.BasePrice.GreaterThan(v.MaxPrice) {
			v.MaxPrice = p.BasePrice
		}
		changeSums[p.Component] = changeSums[p.Component].Add(decimal.NewFromFloat(p.Change))
		v.Samples++
	}

	results := make([]ComponentVolatility, 0, len(order))
	for _, component := range order {
		v := byComponent[component]
		v.Spread = v.MaxPrice.Sub(v.MinPrice)
		v.AvgChange = changeSums[component].DivRound(decimal.NewFromInt(v.Samples), 4)
		results = append(results, *v)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Spread.GreaterThan(results[j].Spread)
	})
	return results, nil
}
