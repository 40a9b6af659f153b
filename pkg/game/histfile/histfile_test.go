package histfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHooks_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	load, save := Hooks(path)

	if err := save([]string{"first", "second"}, 10); err != nil {
		t.Fatal(err)
	}
	entries, err := load()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0] != "first" || entries[1] != "second" {
		t.Errorf("entries = %v, want [first second]", entries)
	}
}

func TestHooks_MissingFileIsEmptyHistory(t *testing.T) {
	load, _ := Hooks(filepath.Join(t.TempDir(), "nope"))
	entries, err := load()
	if err != nil {
		t.Fatalf("load of missing file: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want empty", entries)
	}
}

func TestHooks_SaveTruncatesToCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	load, save := Hooks(path)
	if err := save([]string{"a", "b", "c", "d"}, 2); err != nil {
		t.Fatal(err)
	}
	entries, _ := load()
	if len(entries) != 2 || entries[0] != "c" || entries[1] != "d" {
		t.Errorf("entries = %v, want newest two", entries)
	}
}

func TestHooks_LoadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(path, []byte("one\n\ntwo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	load, _ := Hooks(path)
	entries, err := load()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("entries = %v, want blank lines dropped", entries)
	}
}
