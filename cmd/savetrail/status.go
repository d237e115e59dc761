package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"savetrail/internal/watch"
)

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show snapshot counts and the latest capture",
		RunE:  runStatus,
	}
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	counts, err := db.TableCounts(ctx)
	if err != nil {
		return err
	}

	tables := make([]string, 0, len(counts))
	for table := range counts {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tROWS")
	for _, table := range tables {
		fmt.Fprintf(w, "%s\t%d\n", table, counts[table])
	}
	w.Flush()

	latest, err := db.LatestSnapshot(ctx)
	if err != nil {
		return err
	}
	if latest != nil {
		fmt.Fprintf(os.Stdout, "\nLatest snapshot: %s (game day %d, ingested %s)\n",
			latest.ID, latest.GameDay, latest.IngestedAt.UTC().Format(time.RFC3339))
	}

	trigger, err := watch.ReadTrigger(watch.TriggerPath(cfg.WorkingDir))
	if err == nil {
		fmt.Fprintf(os.Stdout, "Last capture:    %s (%s, %d total)\n",
			trigger.LastUpdate, trigger.SourceFile, trigger.UpdateCount)
	}

	return nil
}
