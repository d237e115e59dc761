package watch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TriggerFile is the name of the signal file maintained in the working
// directory. Downstream consumers poll it instead of scanning for new
// copies.
const TriggerFile = "savetrail_trigger.json"

// TriggerPath returns the trigger file location for a working directory.
func TriggerPath(workingDir string) string {
	return filepath.Join(workingDir, TriggerFile)
}

// Trigger is the signal file payload.
type Trigger struct {
	LastUpdate  string `json:"last_update"`
	SourceFile  string `json:"source_file"`
	UpdateCount int64  `json:"update_count"`
}

// UpdateTrigger rewrites the trigger file with the latest capture,
// incrementing the running count. The write goes through a temp file
// rename so readers never see a partial document.
func UpdateTrigger(path, sourceFile string, at time.Time) error {
	current, err := ReadTrigger(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	next := Trigger{
		LastUpdate: at.UTC().Format(time.RFC3339),
		SourceFile: sourceFile,
	}
	if current != nil {
		next.UpdateCount = current.UpdateCount
	}
	next.UpdateCount++

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding trigger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".trigger-*")
	if err != nil {
		return fmt.Errorf("creating trigger temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing trigger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing trigger: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("placing trigger: %w", err)
	}
	return nil
}

// ReadTrigger loads the trigger file. A missing file returns an error
// satisfying os.IsNotExist.
func ReadTrigger(path string) (*Trigger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Trigger
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing trigger file: %w", err)
	}
	return &t, nil
}
