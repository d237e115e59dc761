package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"savetrail/internal/ingest"
	"savetrail/internal/watch"
)

var watchIngest bool

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the save directory and archive each new save",
		RunE:  runWatch,
	}
	cmd.Flags().BoolVar(&watchIngest, "ingest", false, "Ingest each captured save immediately")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, schema, err := loadProject()
	if err != nil {
		return err
	}
	if cfg.SaveDir == "" {
		return fmt.Errorf("save_dir is required for watching")
	}

	watcher, err := watch.New(cfg.SaveDir, cfg.WorkingDir, cfg.Company)
	if err != nil {
		return err
	}

	var engine *ingest.Engine
	if watchIngest {
		db, err := openDB(ctx, cfg, schema)
		if err != nil {
			return err
		}
		defer db.Close(ctx)

		engine = ingest.New(db, schema, cfg)
		if err := engine.EnsureSchema(ctx); err != nil {
			return err
		}
	}

	done := make(chan error, 1)
	go func() {
		done <- watcher.Run(ctx)
	}()

	for event := range watcher.Events() {
		if engine == nil {
			continue
		}
		id, err := engine.IngestFile(ctx, event.CopiedFile)
		switch {
		case errors.Is(err, ingest.ErrAlreadyIngested):
			slog.Info("skipping duplicate save", slog.String("file", event.CopiedFile))
		case err != nil:
			slog.Error("ingesting captured save",
				slog.String("file", event.CopiedFile),
				slog.String("error", err.Error()))
		default:
			slog.Info("ingested captured save",
				slog.String("file", event.CopiedFile),
				slog.String("snapshot_id", id))
		}
	}

	err = <-done
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
