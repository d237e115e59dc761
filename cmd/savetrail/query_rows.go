package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func queryRowsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rows <table> <snapshot-id>",
		Short: "Dump the rows a snapshot contributed to a collection table",
		Args:  cobra.ExactArgs(2),
		RunE:  runQueryRows,
	}
	return cmd
}

func runQueryRows(cmd *cobra.Command, args []string) error {
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

	rows, err := db.ChildRows(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}
