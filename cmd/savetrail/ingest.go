package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"savetrail/internal/ingest"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a single save file into the snapshot store",
		Args:  cobra.ExactArgs(1),
		RunE:  runIngestFile,
	}
	return cmd
}

func runIngestFile(cmd *cobra.Command, args []string) error {
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

	engine := ingest.New(db, schema, cfg)
	if err := engine.EnsureSchema(ctx); err != nil {
		return err
	}

	id, err := engine.IngestFile(ctx, args[0])
	if errors.Is(err, ingest.ErrAlreadyIngested) {
		fmt.Fprintf(os.Stdout, "Already ingested: %s\n", args[0])
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Ingested %s as snapshot %s\n", args[0], id)
	return nil
}
