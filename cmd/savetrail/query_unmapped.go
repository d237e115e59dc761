package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func queryUnmappedCmd() *cobra.Command {
	var showPayload bool
	cmd := &cobra.Command{
		Use:   "unmapped <snapshot-id>",
		Short: "List fields the mapping did not cover for a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryUnmapped(args[0], showPayload)
		},
	}
	cmd.Flags().BoolVar(&showPayload, "payload", false, "Print the stored JSON payloads")
	return cmd
}

func runQueryUnmapped(snapshotID string, showPayload bool) error {
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

	fields, err := db.UnmappedFields(ctx, snapshotID)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		fmt.Fprintln(os.Stdout, "No unmapped fields.")
		return nil
	}

	for _, field := range fields {
		if showPayload {
			fmt.Fprintf(os.Stdout, "%s: %s\n", field.Field, field.Payload)
		} else {
			fmt.Fprintln(os.Stdout, field.Field)
		}
	}
	return nil
}
