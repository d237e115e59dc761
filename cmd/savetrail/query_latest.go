package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func queryLatestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the most recently ingested snapshot",
		RunE:  runQueryLatest,
	}
	return cmd
}

func runQueryLatest(cmd *cobra.Command, args []string) error {
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

	latest, err := db.LatestSnapshot(ctx)
	if err != nil {
		return err
	}
	if latest == nil {
		fmt.Fprintln(os.Stdout, "No snapshots ingested.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "Snapshot:        %s\n", latest.ID)
	fmt.Fprintf(os.Stdout, "File:            %s\n", latest.Filename)
	fmt.Fprintf(os.Stdout, "Company:         %s\n", latest.CompanyName)
	fmt.Fprintf(os.Stdout, "Game day:        %d (%s)\n", latest.GameDay, latest.GameDate)
	fmt.Fprintf(os.Stdout, "Balance:         %s\n", latest.Balance)
	fmt.Fprintf(os.Stdout, "XP:              %.1f\n", latest.XP)
	fmt.Fprintf(os.Stdout, "Research points: %d\n", latest.ResearchPoints)
	fmt.Fprintf(os.Stdout, "Ingested at:     %s\n", latest.IngestedAt.UTC().Format(time.RFC3339))
	return nil
}
