package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"savetrail/internal/mapper"
)

var exportRaw bool

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <snapshot-id>",
		Short: "Rebuild a save document from a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	cmd.Flags().BoolVar(&exportRaw, "raw", false, "Emit the retained raw document instead of the reconstruction")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	id := args[0]

	cfg, schema, err := loadProject()
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg, schema)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	if exportRaw {
		raw, err := db.RawDocument(ctx, id)
		if err != nil {
			return err
		}
		if raw == nil {
			return fmt.Errorf("snapshot %s has no raw document retained", id)
		}
		fmt.Fprintln(os.Stdout, string(raw))
		return nil
	}

	root, err := db.SnapshotRow(ctx, id)
	if err != nil {
		return err
	}

	children := make(map[string][]map[string]any, len(schema.Tables()))
	for _, table := range schema.Tables() {
		rows, err := db.ChildRows(ctx, table, id)
		if err != nil {
			return err
		}
		children[table] = rows
	}

	unmapped, err := db.UnmappedFields(ctx, id)
	if err != nil {
		return err
	}

	doc, err := mapper.Reconstruct(schema, mapper.RowSet{
		Root:     root,
		Children: children,
		Unmapped: unmapped,
	})
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}
