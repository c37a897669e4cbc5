package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLedger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "processed.json")

	t.Run("Missing File Yields Empty Ledger", func(t *testing.T) {
		ledger, err := LoadLedger(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ledger.Len() != 0 {
			t.Errorf("expected empty ledger, got %d entries", ledger.Len())
		}
	})

	t.Run("Mark And Reload", func(t *testing.T) {
		ledger, err := LoadLedger(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		ledger.Mark("t1")
		ledger.Mark("t2")
		ledger.Mark("t1") // idempotent

		if ledger.Len() != 2 {
			t.Errorf("expected 2 entries, got %d", ledger.Len())
		}

		if err := ledger.Save(); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		reloaded, err := LoadLedger(path)
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}

		if !reloaded.Contains("t1") || !reloaded.Contains("t2") {
			t.Error("expected reloaded ledger to contain marked tracks")
		}
		if reloaded.Contains("t3") {
			t.Error("expected t3 to be absent")
		}
	})

	t.Run("Creates Parent Directories", func(t *testing.T) {
		nested := filepath.Join(dir, "a", "b", "processed.json")
		ledger, _ := LoadLedger(nested)
		ledger.Mark("t1")

		if err := ledger.Save(); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if _, err := os.Stat(nested); err != nil {
			t.Errorf("expected file at %s: %v", nested, err)
		}
	})

	t.Run("Corrupt File Returns Error", func(t *testing.T) {
		corrupt := filepath.Join(dir, "corrupt.json")
		os.WriteFile(corrupt, []byte("{not json"), 0644)

		if _, err := LoadLedger(corrupt); err == nil {
			t.Error("expected error for corrupt file")
		}
	})
}

func TestIDSet(t *testing.T) {
	dir := t.TempDir()

	t.Run("Roundtrip Sorted", func(t *testing.T) {
		path := filepath.Join(dir, "set.json")
		set := NewIDSet(path)
		set.AddAll([]string{"c", "a", "b", "a"})

		if set.Len() != 3 {
			t.Errorf("expected 3 ids, got %d", set.Len())
		}

		if err := set.Save(); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		reloaded, err := LoadIDSet(path)
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}

		ids := reloaded.IDs()
		want := []string{"a", "b", "c"}
		for i, id := range want {
			if ids[i] != id {
				t.Errorf("ids[%d] = %q, want %q", i, ids[i], id)
			}
		}
	})

	t.Run("Replace", func(t *testing.T) {
		set := NewIDSet("")
		set.AddAll([]string{"a", "b"})
		set.Replace([]string{"x"})

		if set.Contains("a") {
			t.Error("expected old members to be gone after Replace")
		}
		if !set.Contains("x") || set.Len() != 1 {
			t.Errorf("expected set to contain only x, got %v", set.IDs())
		}
	})
}

func TestGenreCache(t *testing.T) {
	dir := t.TempDir()

	t.Run("Miss Versus Cached Empty", func(t *testing.T) {
		cache := NewGenreCache("")

		if _, ok := cache.Get("track:1"); ok {
			t.Error("expected cache miss for unknown key")
		}

		cache.Put("track:1", nil)

		genres, ok := cache.Get("track:1")
		if !ok {
			t.Fatal("expected cached entry after Put")
		}
		if genres == nil || len(genres) != 0 {
			t.Errorf("expected empty non-nil list, got %#v", genres)
		}
	})

	t.Run("Empty List Survives Roundtrip", func(t *testing.T) {
		path := filepath.Join(dir, "genres.json")
		cache := NewGenreCache(path)
		cache.Put("track:1", []string{"Rock", "Indie"})
		cache.Put("track:2", nil)

		if err := cache.Save(); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		reloaded, err := LoadGenreCache(path)
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}

		genres, ok := reloaded.Get("track:1")
		if !ok || len(genres) != 2 {
			t.Errorf("expected 2 genres for track:1, got %v", genres)
		}

		empty, ok := reloaded.Get("track:2")
		if !ok {
			t.Error("expected cached no-genre entry to survive reload")
		}
		if len(empty) != 0 {
			t.Errorf("expected empty list, got %v", empty)
		}
	})

	t.Run("Clean Cache Save Is No-Op", func(t *testing.T) {
		path := filepath.Join(dir, "untouched.json")
		cache, err := LoadGenreCache(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}

		if err := cache.Save(); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected no file written for clean cache")
		}
	})
}
