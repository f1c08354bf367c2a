package ledger

import (
	"context"
	"testing"

	"github.com/ziadkadry99/navpatch/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestStartAndFinishRun(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	run, err := store.StartRun(ctx, "site", "direct", false)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected generated run ID")
	}

	run.FilesPatched = 3
	run.FilesSkipped = 2
	run.FilesFailed = 1
	if err := store.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	if run.FinishedAt == nil {
		t.Error("FinishedAt should be set")
	}

	runs, err := store.LatestRuns(ctx, 5)
	if err != nil {
		t.Fatalf("LatestRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.ID != run.ID || got.Mode != "direct" || got.SiteDir != "site" {
		t.Errorf("run = %+v", got)
	}
	if got.FilesPatched != 3 || got.FilesSkipped != 2 || got.FilesFailed != 1 {
		t.Errorf("counters = %d/%d/%d, want 3/2/1", got.FilesPatched, got.FilesSkipped, got.FilesFailed)
	}
	if got.FinishedAt == nil {
		t.Error("stored run should be finished")
	}
}

func TestFinishRun_Unknown(t *testing.T) {
	store := setupStore(t)
	if err := store.FinishRun(context.Background(), &Run{ID: "missing"}); err == nil {
		t.Error("expected error for unknown run")
	}
}

func TestLatestRuns_Limit(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	var last string
	for i := 0; i < 4; i++ {
		run, err := store.StartRun(ctx, "site", "markdown", i%2 == 0)
		if err != nil {
			t.Fatalf("StartRun: %v", err)
		}
		last = run.ID
	}

	runs, err := store.LatestRuns(ctx, 2)
	if err != nil {
		t.Fatalf("LatestRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != last {
		t.Errorf("newest run = %s, want %s", runs[0].ID, last)
	}
}

func TestRecordFile(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	hash, err := store.FileHash(ctx, "index.html")
	if err != nil {
		t.Fatalf("FileHash: %v", err)
	}
	if hash != "" {
		t.Errorf("unrecorded file hash = %q, want empty", hash)
	}

	run, err := store.StartRun(ctx, "site", "direct", false)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	rec := FileRecord{Path: "index.html", ContentHash: "aaa", RunID: run.ID, Assignments: 5, Overlays: 1}
	if err := store.RecordFile(ctx, rec); err != nil {
		t.Fatalf("RecordFile: %v", err)
	}

	rec.ContentHash = "bbb"
	rec.PatcherHash = "p2"
	rec.Overlays = 0
	if err := store.RecordFile(ctx, rec); err != nil {
		t.Fatalf("RecordFile (update): %v", err)
	}

	got, err := store.File(ctx, "index.html")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if got == nil {
		t.Fatal("expected record")
	}
	if got.ContentHash != "bbb" || got.PatcherHash != "p2" || got.Assignments != 5 || got.Overlays != 0 {
		t.Errorf("record = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be parsed")
	}

	hash, _ = store.FileHash(ctx, "index.html")
	if hash != "bbb" {
		t.Errorf("FileHash = %q, want bbb", hash)
	}
}
