package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestUpdateTrigger(t *testing.T) {
	dir := t.TempDir()
	path := TriggerPath(dir)

	t.Run("missing file reads as not exist", func(t *testing.T) {
		if _, err := ReadTrigger(path); !os.IsNotExist(err) {
			t.Fatalf("expected not-exist error, got %v", err)
		}
	})

	t.Run("first write starts the count", func(t *testing.T) {
		at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		if err := UpdateTrigger(path, "sg_testco.json", at); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		trigger, err := ReadTrigger(path)
		if err != nil {
			t.Fatalf("reading trigger: %v", err)
		}
		if trigger.UpdateCount != 1 {
			t.Fatalf("expected count 1, got %d", trigger.UpdateCount)
		}
		if trigger.SourceFile != "sg_testco.json" {
			t.Fatalf("unexpected source %s", trigger.SourceFile)
		}
		if trigger.LastUpdate != "2026-03-01T10:00:00Z" {
			t.Fatalf("unexpected timestamp %s", trigger.LastUpdate)
		}
	})

	t.Run("subsequent writes increment", func(t *testing.T) {
		at := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
		if err := UpdateTrigger(path, "sg_testco autosave.json", at); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		trigger, err := ReadTrigger(path)
		if err != nil {
			t.Fatalf("reading trigger: %v", err)
		}
		if trigger.UpdateCount != 2 {
			t.Fatalf("expected count 2, got %d", trigger.UpdateCount)
		}
		if trigger.SourceFile != "sg_testco autosave.json" {
			t.Fatalf("unexpected source %s", trigger.SourceFile)
		}
	})

	t.Run("corrupt trigger file errors", func(t *testing.T) {
		broken := filepath.Join(t.TempDir(), TriggerFile)
		if err := os.WriteFile(broken, []byte("{"), 0o600); err != nil {
			t.Fatalf("writing: %v", err)
		}
		if _, err := ReadTrigger(broken); err == nil {
			t.Fatalf("expected parse error")
		}
	})
}

func TestWatcherMatches(t *testing.T) {
	w, err := New(t.TempDir(), t.TempDir(), "testco")
	if err != nil {
		t.Fatalf("creating watcher: %v", err)
	}

	cases := []struct {
		name string
		want bool
	}{
		{"sg_testco.json", true},
		{"sg_testco autosave.json", true},
		{"sg_otherco.json", false},
		{"sg_testco.json.bak", false},
		{"notes.txt", false},
	}
	for _, tc := range cases {
		if got := w.matches(tc.name); got != tc.want {
			t.Fatalf("matches(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRearmInvalidatesEarlierMark(t *testing.T) {
	p := newPending()

	// A write arriving after the debounce fired but before its mark was
	// drained re-arms the path; the fired mark must not settle too.
	first := p.arm("sg_testco.json")
	second := p.arm("sg_testco.json")

	if p.settle(first) {
		t.Fatalf("mark from before the re-arm must not settle")
	}
	if !p.settle(second) {
		t.Fatalf("expected the current mark to settle")
	}
	if p.settle(second) {
		t.Fatalf("a settled path must not settle twice")
	}
}

func TestWatcherRequiresCompany(t *testing.T) {
	if _, err := New(t.TempDir(), t.TempDir(), ""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.json")
	dst := filepath.Join(dir, "dst.json")
	if err := os.WriteFile(src, []byte(`{"balance": 1}`), 0o600); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	if err := copyFile(src, dst); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading copy: %v", err)
	}
	if string(data) != `{"balance": 1}` {
		t.Fatalf("unexpected contents %s", data)
	}
}
