package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validConfig = `project: test-project
version: 1

company: testco

save_dir: ./saves
working_dir: ./game_saves

database:
  dsn: sqlite://savetrail.db

plausibility:
  min_balance: "1000"
  require_employees: true
`

func TestLoadProjectConfig(t *testing.T) {
	t.Run("valid config loads", func(t *testing.T) {
		cfg, err := LoadProjectConfig(writeTempConfig(t, validConfig))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Project != "test-project" {
			t.Fatalf("expected project name, got %q", cfg.Project)
		}
		if cfg.Company != "testco" {
			t.Fatalf("expected company, got %q", cfg.Company)
		}
		if cfg.Database.DSN != "sqlite://savetrail.db" {
			t.Fatalf("unexpected dsn %q", cfg.Database.DSN)
		}
		if !cfg.Plausibility.RequireEmployees {
			t.Fatalf("expected require_employees to load")
		}
	})

	t.Run("missing project name", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\nworking_dir: ./x\ndatabase:\n  dsn: sqlite://x.db\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 2\nworking_dir: ./x\ndatabase:\n  dsn: sqlite://x.db\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("missing dsn", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nworking_dir: ./x\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("missing working_dir", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://x.db\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("bad min_balance", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nworking_dir: ./x\ndatabase:\n  dsn: sqlite://x.db\nplausibility:\n  min_balance: \"not-a-number\"\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("SAVETRAIL_DB_DSN", "sqlite://override.db")
		cfg, err := LoadProjectConfig(writeTempConfig(t, validConfig))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Database.DSN != "sqlite://override.db" {
			t.Fatalf("expected env override, got %q", cfg.Database.DSN)
		}
	})

	t.Run("file not found", func(t *testing.T) {
		if _, err := LoadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, "project: [\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestMinBalanceDecimal(t *testing.T) {
	t.Run("empty means zero", func(t *testing.T) {
		d, err := PlausibilityConfig{}.MinBalanceDecimal()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !d.IsZero() {
			t.Fatalf("expected zero, got %s", d)
		}
	})

	t.Run("parses value", func(t *testing.T) {
		d, err := PlausibilityConfig{MinBalance: "2500.50"}.MinBalanceDecimal()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if d.String() != "2500.5" {
			t.Fatalf("unexpected value %s", d)
		}
	})
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}
