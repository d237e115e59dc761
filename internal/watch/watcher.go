package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event reports a save file that settled after a write and was copied
// into the working directory.
type Event struct {
	SourceFile string
	CopiedFile string
	ModTime    time.Time
}

// Watcher observes a save directory for writes to a company's save
// files and copies each settled version into a working directory under
// a timestamped name, so the game overwriting its slot never loses a
// snapshot.
type Watcher struct {
	saveDir    string
	workingDir string
	company    string

	debounce time.Duration
	settle   time.Duration
	events   chan Event
	now      func() time.Time
}

type Option func(*Watcher)

// WithDebounce overrides how long the watcher waits after the last
// write before treating the file as settled.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

func New(saveDir, workingDir, company string, opts ...Option) (*Watcher, error) {
	if company == "" {
		return nil, fmt.Errorf("company name is required")
	}
	if err := os.MkdirAll(workingDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating working directory: %w", err)
	}

	w := &Watcher{
		saveDir:    saveDir,
		workingDir: workingDir,
		company:    company,
		debounce:   500 * time.Millisecond,
		settle:     200 * time.Millisecond,
		events:     make(chan Event, 16),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Events delivers one event per settled save file copy. The channel is
// closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run watches until the context is cancelled. The game writes the save
// in bursts, so each file change arms a debounce timer and the copy
// happens only after writes stop.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fs.Close()

	if err := fs.Add(w.saveDir); err != nil {
		return fmt.Errorf("watching %s: %w", w.saveDir, err)
	}

	slog.Info("watching save directory",
		slog.String("save_dir", w.saveDir),
		slog.String("company", w.company))

	timers := make(map[string]*time.Timer)
	armed := newPending()
	settled := make(chan settleMark, 16)

	for {
		select {
		case <-ctx.Done():
			for _, t := range timers {
				t.Stop()
			}
			return ctx.Err()

		case event, ok := <-fs.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if !w.matches(filepath.Base(event.Name)) {
				continue
			}
			// A fired timer may already have queued a mark for this path,
			// so never reuse its timer. Arming a fresh mark makes the
			// queued one stale.
			path := event.Name
			if t, ok := timers[path]; ok {
				t.Stop()
			}
			mark := armed.arm(path)
			timers[path] = time.AfterFunc(w.debounce, func() {
				settled <- mark
			})

		case mark := <-settled:
			if !armed.settle(mark) {
				continue
			}
			delete(timers, mark.path)
			if err := w.capture(mark.path); err != nil {
				slog.Error("capturing save file",
					slog.String("file", mark.path),
					slog.String("error", err.Error()))
			}

		case err, ok := <-fs.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

// settleMark names one arming of a path's debounce timer.
type settleMark struct {
	path string
	gen  uint64
}

// pending counts how many times each path has been armed. A mark from an
// earlier arming no longer settles, so one burst of writes yields exactly
// one capture.
type pending struct {
	gens map[string]uint64
}

func newPending() *pending {
	return &pending{gens: make(map[string]uint64)}
}

func (p *pending) arm(path string) settleMark {
	p.gens[path]++
	return settleMark{path: path, gen: p.gens[path]}
}

func (p *pending) settle(mark settleMark) bool {
	if p.gens[mark.path] != mark.gen {
		return false
	}
	delete(p.gens, mark.path)
	return true
}

// matches accepts the company's save slot and its autosave twin.
func (w *Watcher) matches(name string) bool {
	if !strings.HasSuffix(name, ".json") {
		return false
	}
	base := strings.TrimSuffix(name, ".json")
	return base == "sg_"+w.company || base == "sg_"+w.company+" autosave"
}

// capture copies the file once its size stops changing, then records
// the copy in the trigger file.
func (w *Watcher) capture(path string) error {
	if err := w.waitStable(path); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stating save file: %w", err)
	}

	stamp := w.now().UTC().Format("20060102T150405Z")
	name := strings.TrimSuffix(filepath.Base(path), ".json")
	copied := filepath.Join(w.workingDir, fmt.Sprintf("%s_%s.json", name, stamp))

	if err := copyFile(path, copied); err != nil {
		return err
	}

	if err := UpdateTrigger(TriggerPath(w.workingDir), filepath.Base(path), w.now()); err != nil {
		return fmt.Errorf("updating trigger: %w", err)
	}

	slog.Info("captured save file",
		slog.String("source", filepath.Base(path)),
		slog.String("copy", filepath.Base(copied)))

	event := Event{SourceFile: path, CopiedFile: copied, ModTime: info.ModTime()}
	select {
	case w.events <- event:
	default:
		slog.Warn("event channel full, dropping event", slog.String("file", copied))
	}
	return nil
}

// waitStable polls the file size until two consecutive reads agree.
// The game can still be flushing when the debounce fires.
func (w *Watcher) waitStable(path string) error {
	var last int64 = -1
	for i := 0; i < 10; i++ {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stating save file: %w", err)
		}
		if info.Size() == last {
			return nil
		}
		last = info.Size()
		time.Sleep(w.settle)
	}
	return fmt.Errorf("file %s did not settle", path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(dst), ".copy-*")
	if err != nil {
		return fmt.Errorf("creating copy: %w", err)
	}
	defer os.Remove(out.Name())

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing copy: %w", err)
	}
	if err := os.Rename(out.Name(), dst); err != nil {
		return fmt.Errorf("placing copy: %w", err)
	}
	return nil
}
