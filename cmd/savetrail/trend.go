package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"savetrail/internal/trend"
)

func trendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend <metric>",
		Short: "Compute a metric series (balance, xp, utilization, cashflow, market)",
		Args:  cobra.ExactArgs(1),
		RunE:  runTrend,
	}
	return cmd
}

func runTrend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, schema, err := loadProject()
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg, schema)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	analyzer := trend.New(db)
	metric := args[0]

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if metric == "market" {
		volatility, err := analyzer.MarketVolatility(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "COMPONENT\tMIN\tMAX\tSPREAD\tAVG CHANGE\tSAMPLES")
		for _, v := range volatility {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
				v.Component, v.MinPrice, v.MaxPrice, v.Spread, v.AvgChange, v.Samples)
		}
		return nil
	}

	points, err := analyzer.Compute(ctx, metric)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		fmt.Fprintln(os.Stdout, "Not enough snapshots for a trend.")
		return nil
	}

	fmt.Fprintln(w, "GAME DAY\tVALUE")
	for _, p := range points {
		fmt.Fprintf(w, "%d\t%s\n", p.GameDay, p.Value)
	}
	return nil
}
