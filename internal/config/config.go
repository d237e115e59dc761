package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type ProjectConfig struct {
	Project string `yaml:"project"`
	Version int    `yaml:"version"`

	// Company is the in-game company name; the watcher derives the save
	// filenames (sg_<company>.json and the autosave variant) from it.
	Company string `yaml:"company" env:"SAVETRAIL_COMPANY"`

	SaveDir    string `yaml:"save_dir" env:"SAVETRAIL_SAVE_DIR"`
	WorkingDir string `yaml:"working_dir" env:"SAVETRAIL_WORKING_DIR"`

	Database     DatabaseConfig     `yaml:"database"`
	Plausibility PlausibilityConfig `yaml:"plausibility"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"SAVETRAIL_DB_DSN"`
}

// PlausibilityConfig controls the template-save rejection heuristic. The
// balance cutoff is data, not code: operators tune it per game version.
type PlausibilityConfig struct {
	MinBalance       string `yaml:"min_balance" env:"SAVETRAIL_MIN_BALANCE"`
	RequireEmployees bool   `yaml:"require_employees"`
}

func (p PlausibilityConfig) MinBalanceDecimal() (decimal.Decimal, error) {
	if strings.TrimSpace(p.MinBalance) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(p.MinBalance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing min_balance %q: %w", p.MinBalance, err)
	}
	return d, nil
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("database dsn is required")
	}
	if strings.TrimSpace(cfg.WorkingDir) == "" {
		return fmt.Errorf("working_dir is required")
	}
	if _, err := cfg.Plausibility.MinBalanceDecimal(); err != nil {
		return err
	}
	return nil
}
