package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"savetrail/internal/ingest"
)

var backfillVerbose bool

func backfillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill [dir]",
		Short: "Ingest every save file in a directory, oldest first",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBackfill,
	}
	cmd.Flags().BoolVar(&backfillVerbose, "verbose", false, "Print the outcome of every file")
	return cmd
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, schema, err := loadProject()
	if err != nil {
		return err
	}

	dir := cfg.WorkingDir
	if len(args) == 1 {
		dir = args[0]
	}

	db, err := openDB(ctx, cfg, schema)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	engine := ingest.New(db, schema, cfg)
	result, err := engine.Backfill(ctx, dir)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Backfill complete.")
	fmt.Fprintf(os.Stdout, "  Ingested:    %d\n", result.Ingested)
	fmt.Fprintf(os.Stdout, "  Duplicates:  %d\n", result.Duplicates)
	fmt.Fprintf(os.Stdout, "  Implausible: %d\n", result.Implausible)
	fmt.Fprintf(os.Stdout, "  Invalid:     %d\n", result.Invalid)
	fmt.Fprintf(os.Stdout, "  Failed:      %d\n", result.Failed)

	if backfillVerbose {
		fmt.Fprintln(os.Stdout)
		for _, file := range result.Files {
			if file.Err != nil {
				fmt.Fprintf(os.Stdout, "  %-12s %s: %v\n", file.Outcome, file.File, file.Err)
			} else {
				fmt.Fprintf(os.Stdout, "  %-12s %s\n", file.Outcome, file.File)
			}
		}
	}

	if result.Failed > 0 {
		return fmt.Errorf("backfill completed with %d failures", result.Failed)
	}
	return nil
}
