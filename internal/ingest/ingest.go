package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"savetrail/internal/config"
	"savetrail/internal/mapper"
	"savetrail/internal/save"
	"savetrail/internal/store"
)

// ErrAlreadyIngested is a control-flow signal, not a failure: the filename
// was seen before and the store is untouched.
var ErrAlreadyIngested = errors.New("already ingested")

// Engine writes save documents into the temporal store. It assumes
// single-writer discipline: at most one ingestion in flight per store.
type Engine struct {
	db     store.Store
	schema *config.Schema
	cfg    *config.ProjectConfig

	now   func() time.Time
	newID func() string
}

func New(db store.Store, schema *config.Schema, cfg *config.ProjectConfig) *Engine {
	return &Engine{
		db:     db,
		schema: schema,
		cfg:    cfg,
		now:    time.Now,
		newID:  func() string { return ulid.Make().String() },
	}
}

func (e *Engine) EnsureSchema(ctx context.Context) error {
	if err := e.db.EnsureSchema(ctx, e.schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Ingest writes one save document as a new snapshot. The filename check runs
// before any mutation; the write itself is a single transaction, so a failure
// partway leaves the store exactly as it was.
func (e *Engine) Ingest(ctx context.Context, filename string, doc *save.Document) (string, error) {
	exists, err := e.db.HasSnapshot(ctx, filename)
	if err != nil {
		return "", fmt.Errorf("checking %s: %w", filename, err)
	}
	if exists {
		return "", fmt.Errorf("%s: %w", filename, ErrAlreadyIngested)
	}

	plan, err := mapper.Map(doc, e.schema)
	if err != nil {
		return "", fmt.Errorf("mapping %s: %w", filename, err)
	}

	plan.ID = e.newID()
	plan.Filename = filename
	plan.IngestedAt = e.now().UTC()

	if err := e.db.InsertSnapshot(ctx, *plan); err != nil {
		return "", fmt.Errorf("ingesting %s: %w", filename, err)
	}
	return plan.ID, nil
}

// IngestFile loads, plausibility-checks, and ingests one file. The snapshot
// is keyed by base filename, matching how the watcher names copies.
func (e *Engine) IngestFile(ctx context.Context, path string) (string, error) {
	doc, err := save.Load(path)
	if err != nil {
		return "", err
	}
	if err := save.CheckPlausible(doc, e.cfg.Plausibility); err != nil {
		return "", err
	}
	return e.Ingest(ctx, filepath.Base(path), doc)
}

type Outcome string

const (
	OutcomeIngested    Outcome = "ingested"
	OutcomeDuplicate   Outcome = "duplicate"
	OutcomeImplausible Outcome = "implausible"
	OutcomeInvalid     Outcome = "invalid"
	OutcomeFailed      Outcome = "failed"
)

type FileResult struct {
	File       string
	Outcome    Outcome
	SnapshotID string
	Err        error
}

type Result struct {
	Ingested    int
	Duplicates  int
	Implausible int
	Invalid     int
	Failed      int
	Files       []FileResult
}

// Backfill processes every JSON file under dir in modification-time order,
// oldest first. One bad file never aborts the batch; each file gets a
// recorded outcome, and re-running the batch naturally retries failures
// because successful files skip as duplicates.
func (e *Engine) Backfill(ctx context.Context, dir string) (*Result, error) {
	if err := e.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	files, err := listSaveFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("listing saves in %s: %w", dir, err)
	}

	result := &Result{}
	for _, path := range files {
		id, err := e.IngestFile(ctx, path)
		outcome := FileResult{File: path, SnapshotID: id, Err: err}
		switch {
		case err == nil:
			outcome.Outcome = OutcomeIngested
			result.Ingested++
		case errors.Is(err, ErrAlreadyIngested):
			outcome.Outcome = OutcomeDuplicate
			result.Duplicates++
		case errors.Is(err, save.ErrImplausible):
			outcome.Outcome = OutcomeImplausible
			result.Implausible++
		case errors.Is(err, save.ErrInvalidFormat):
			outcome.Outcome = OutcomeInvalid
			result.Invalid++
		default:
			outcome.Outcome = OutcomeFailed
			result.Failed++
		}
		result.Files = append(result.Files, outcome)
	}

	return result, nil
}

func listSaveFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		path    string
		modTime time.Time
	}
	var candidates []candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate{
			path:    filepath.Join(dir, entry.Name()),
			modTime: info.ModTime(),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime.Before(candidates[j].modTime)
	})

	files := make([]string, 0, len(candidates))
	for _, c := range candidates {
		files = append(files, c.path)
	}
	return files, nil
}
