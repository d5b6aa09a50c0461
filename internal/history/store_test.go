package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.Record(ctx, Entry{
		SourcePath: "/library/vol1.cbz",
		OutputPath: "/library/vol1.pdf",
		Format:     "cbz",
		Images:     42,
		Pages:      42,
		Success:    true,
		Message:    "converted 42 images",
		Duration:   3 * time.Second,
	})
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if first == 0 {
		t.Fatal("expected non-zero row id")
	}

	if _, err := store.Record(ctx, Entry{
		SourcePath: "/library/vol2.epub",
		Format:     "epub",
		Message:    "epub reading is not implemented, use cbz or cbr",
	}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].SourcePath != "/library/vol2.epub" {
		t.Fatalf("expected newest entry first, got %q", entries[0].SourcePath)
	}
	if entries[0].Success {
		t.Fatal("failed conversion recorded as success")
	}

	got := entries[1]
	if !got.Success || got.Images != 42 || got.Pages != 42 {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if got.Duration != 3*time.Second {
		t.Fatalf("duration round trip: %v", got.Duration)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("created_at was not recorded")
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.Record(ctx, Entry{SourcePath: "/a.cbz", Success: true}); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}

	entries, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(entries))
	}
}

func TestOpenRejectsForeignSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); err == nil {
		t.Fatal("expected schema mismatch error")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if _, err := store.Record(context.Background(), Entry{SourcePath: "/a.cbz"}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer reopened.Close()

	entries, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected entry to survive reopen, got %d", len(entries))
	}
}
