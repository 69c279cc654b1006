package repl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", baseHistory)
	h := NewHistory(path)

	if err := h.Load(); err != nil {
		t.Fatalf("Load(missing) error = %v", err)
	}

	writes := []HistoryEntry{
		{Line: "-v a", Mode: modeParse},
		{Line: "list", Mode: modeCtrl},
		{Line: "-v a", Mode: modeParse},
		{Line: "-v a", Mode: modeParse},
		{Line: "  ", Mode: modeParse},
		{Line: "list", Mode: modeParse},
	}

	for _, w := range writes {
		if err := h.Write(w.Line, w.Mode); err != nil {
			t.Fatalf("Write(%q) error = %v", w.Line, err)
		}
	}

	want := []HistoryEntry{
		{Line: "list", Mode: modeCtrl},
		{Line: "-v a", Mode: modeParse},
		{Line: "list", Mode: modeParse},
	}

	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error = %v", err)
	}

	if diff := cmp.Diff("C:list\nA:-v a\nA:list\n", string(data)); diff != "" {
		t.Errorf("history file mismatch (-want +got):\n%s", diff)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load error = %v", err)
	}

	if diff := cmp.Diff(want, reloaded.Entries()); diff != "" {
		t.Errorf("reloaded Entries mismatch (-want +got):\n%s", diff)
	}

	if _, err := reloaded.GetEntry(3); err != ErrOutOfBounds {
		t.Errorf("GetEntry(3) error = %v, want ErrOutOfBounds", err)
	}
}

func TestHistoryLoadUnprefixed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), baseHistory)
	if err := os.WriteFile(path, []byte("--old\n\nC:help\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load error = %v", err)
	}

	want := []HistoryEntry{
		{Line: "--old", Mode: modeParse},
		{Line: "help", Mode: modeCtrl},
	}

	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
}
