package main

import (
	"context"
	"fmt"
	"strings"

	"savetrail/internal/config"
	"savetrail/internal/store"
	"savetrail/internal/store/postgres"
	"savetrail/internal/store/sqlite"
)

const (
	configFile = "savetrail.yaml"
	schemaFile = "schema.yaml"
)

func loadProject() (*config.ProjectConfig, *config.Schema, error) {
	cfg, err := config.LoadProjectConfig(configFile)
	if err != nil {
		return nil, nil, err
	}
	schema, err := config.LoadSchema(schemaFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, schema, nil
}

// openDB selects the backend from the DSN scheme. sqlite:// is the
// default single-file store; postgres:// points at a server.
func openDB(ctx context.Context, cfg *config.ProjectConfig, schema *config.Schema) (store.Store, error) {
	dsn := cfg.Database.DSN
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.New(ctx, dsn, schema)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.New(ctx, dsn, schema)
	default:
		return nil, fmt.Errorf("unsupported dsn scheme: %s", dsn)
	}
}
