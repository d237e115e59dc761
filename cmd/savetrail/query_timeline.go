package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func queryTimelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "List ingested snapshots in game-day order",
		RunE:  runQueryTimeline,
	}
	return cmd
}

func runQueryTimeline(cmd *cobra.Command, args []string) error {
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

	timeline, err := db.Timeline(ctx)
	if err != nil {
		return err
	}
	if len(timeline) == 0 {
		fmt.Fprintln(os.Stdout, "No snapshots ingested.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tGAME DAY\tDATE\tBALANCE\tXP\tFILE")
	for _, s := range timeline {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%.1f\t%s\n",
			s.ID, s.GameDay, s.GameDate, s.Balance, s.XP, s.Filename)
	}
	return nil
}
