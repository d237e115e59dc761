package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"savetrail/internal/config"
)

func initCmd() *cobra.Command {
	var projectName string
	var company string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new savetrail project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			if strings.TrimSpace(company) == "" {
				return fmt.Errorf("--company is required")
			}
			return runInit(projectName, company)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&company, "company", "", "In-game company name")
	return cmd
}

func runInit(projectName, company string) error {
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("%s already exists", configFile)
	}
	if _, err := os.Stat(schemaFile); err == nil {
		return fmt.Errorf("%s already exists", schemaFile)
	}

	contents := fmt.Sprintf(config.DefaultProjectYAML, projectName, company)
	if err := os.WriteFile(configFile, []byte(contents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configFile, err)
	}
	if err := os.WriteFile(schemaFile, []byte(config.DefaultSchemaYAML), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", schemaFile, err)
	}

	return nil
}
