package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ziadkadry99/navpatch/internal/db"
	"github.com/ziadkadry99/navpatch/internal/ledger"
	"github.com/ziadkadry99/navpatch/internal/navpatch"
	"github.com/ziadkadry99/navpatch/internal/redirect"
	"github.com/ziadkadry99/navpatch/internal/walker"
)

const page = `<!doctype html>
<html><head><title>t</title></head><body>
<div class="md-tabs"><ul class="md-tabs__list">
<li class="md-tabs__item"><a class="md-tabs__link" href="getting-started/">Getting Started</a></li>
<li class="md-tabs__item"><a class="md-tabs__link" href="other/">Other</a></li>
</ul></div>
<nav class="md-nav"><ul class="md-nav__list">
<li class="md-nav__item"><label class="md-nav__link" for="__nav_2">Operations</label></li>
</ul></nav>
</body></html>`

const plainPage = `<!doctype html><html><head></head><body><p>nothing here</p></body></html>`

func buildSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range map[string]string{
		"index.html":          page,
		"guide/index.html":    page,
		"plain/index.html":    plainPage,
		"assets/partial.html": page,
	} {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newPatcher(t *testing.T) *navpatch.Patcher {
	t.Helper()
	table, err := redirect.NewTable(redirect.DefaultRoutes(), redirect.ModeDirect)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return navpatch.New(navpatch.Options{Table: table})
}

func newLedger(t *testing.T) *ledger.Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return ledger.NewStore(database)
}

func walk(t *testing.T, dir string) []walker.FileInfo {
	t.Helper()
	files, err := walker.Walk(walker.WalkerConfig{RootDir: dir})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	return files
}

func TestRunner_PatchesInPlace(t *testing.T) {
	dir := buildSite(t)
	var calls atomic.Int64
	r := NewRunner(Options{
		Patcher:     newPatcher(t),
		SiteDir:     dir,
		Concurrency: 2,
		OnProgress:  func(_, _ int, _ string) { calls.Add(1) },
	})

	files := walk(t, dir)
	res, err := r.Run(context.Background(), files)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Files) != 3 {
		t.Fatalf("files = %d, want 3", len(res.Files))
	}
	if calls.Load() != 3 {
		t.Errorf("progress calls = %d, want 3", calls.Load())
	}
	if res.Patched() != 2 {
		t.Errorf("Patched() = %d, want 2", res.Patched())
	}

	data, _ := os.ReadFile(filepath.Join(dir, "guide", "index.html"))
	if !strings.Contains(string(data), `href="introduction.html"`) {
		t.Error("guide page tab was not rewritten")
	}
	if !strings.Contains(string(data), navpatch.OverlayClass) {
		t.Error("guide page overlay missing")
	}

	plain, _ := os.ReadFile(filepath.Join(dir, "plain", "index.html"))
	if string(plain) != plainPage {
		t.Error("page without navigation should be left byte-identical")
	}
	for _, f := range res.Files {
		if f.RelPath == "plain/index.html" && f.Written {
			t.Error("unchanged page should not be rewritten")
		}
	}
}

func TestRunner_LedgerSkipsPatchedPages(t *testing.T) {
	dir := buildSite(t)
	store := newLedger(t)
	r := NewRunner(Options{Patcher: newPatcher(t), Ledger: store, SiteDir: dir, Concurrency: 4})

	first, err := r.Run(context.Background(), walk(t, dir))
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.RunID == "" {
		t.Error("expected run ID with a ledger")
	}
	if first.Skipped() != 0 {
		t.Errorf("first pass skipped %d pages", first.Skipped())
	}

	second, err := r.Run(context.Background(), walk(t, dir))
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.Skipped() != 3 {
		t.Errorf("second pass skipped %d pages, want 3", second.Skipped())
	}

	// A rebuilt page is patched again.
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}
	third, err := r.Run(context.Background(), walk(t, dir))
	if err != nil {
		t.Fatalf("third Run: %v", err)
	}
	if third.Patched() != 1 || third.Skipped() != 2 {
		t.Errorf("third pass patched=%d skipped=%d, want 1 and 2", third.Patched(), third.Skipped())
	}

	runs, err := store.LatestRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("LatestRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("runs = %d, want 3", len(runs))
	}
	if runs[0].FilesPatched != 1 || runs[0].FilesSkipped != 2 {
		t.Errorf("latest run counters = %+v", runs[0])
	}
}

func TestRunner_NewTableInvalidatesLedger(t *testing.T) {
	dir := buildSite(t)
	store := newLedger(t)

	direct := NewRunner(Options{Patcher: newPatcher(t), Ledger: store, SiteDir: dir})
	if _, err := direct.Run(context.Background(), walk(t, dir)); err != nil {
		t.Fatalf("direct Run: %v", err)
	}

	table, err := redirect.NewTable(redirect.DefaultRoutes(), redirect.ModeTrailingSlash)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	slash := NewRunner(Options{
		Patcher: navpatch.New(navpatch.Options{Table: table}),
		Ledger:  store,
		SiteDir: dir,
	})
	res, err := slash.Run(context.Background(), walk(t, dir))
	if err != nil {
		t.Fatalf("trailing-slash Run: %v", err)
	}
	if res.Skipped() != 0 {
		t.Errorf("skipped %d pages patched under another table", res.Skipped())
	}

	data, _ := os.ReadFile(filepath.Join(dir, "guide", "index.html"))
	if !strings.Contains(string(data), `href="/introduction/"`) {
		t.Error("tab not re-pointed for the new mode")
	}
}

func TestRunner_DryRun(t *testing.T) {
	dir := buildSite(t)
	r := NewRunner(Options{Patcher: newPatcher(t), SiteDir: dir, DryRun: true})

	res, err := r.Run(context.Background(), walk(t, dir))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Patched() != 2 {
		t.Errorf("Patched() = %d, want 2", res.Patched())
	}
	data, _ := os.ReadFile(filepath.Join(dir, "index.html"))
	if string(data) != page {
		t.Error("dry run modified a page")
	}
}

func TestRunner_OutputDir(t *testing.T) {
	dir := buildSite(t)
	out := filepath.Join(t.TempDir(), "out")
	r := NewRunner(Options{Patcher: newPatcher(t), SiteDir: dir, OutputDir: out})

	if _, err := r.Run(context.Background(), walk(t, dir)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(out, "guide", "index.html"))
	if err != nil {
		t.Fatalf("output page missing: %v", err)
	}
	if !strings.Contains(string(data), `href="introduction.html"`) {
		t.Error("output page was not patched")
	}
	if _, err := os.Stat(filepath.Join(out, "plain", "index.html")); err != nil {
		t.Errorf("unchanged page should still be copied to the output dir: %v", err)
	}
	src, _ := os.ReadFile(filepath.Join(dir, "index.html"))
	if string(src) != page {
		t.Error("source page modified when writing to an output dir")
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	dir := buildSite(t)
	r := NewRunner(Options{Patcher: newPatcher(t), SiteDir: dir})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.Run(ctx, walk(t, dir))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Errors) == 0 {
		t.Error("expected cancellation errors")
	}
}

func TestRunner_MissingFile(t *testing.T) {
	r := NewRunner(Options{Patcher: newPatcher(t)})
	res, err := r.Run(context.Background(), []walker.FileInfo{{Path: filepath.Join(t.TempDir(), "gone.html"), RelPath: "gone.html"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Errors) != 1 {
		t.Errorf("errors = %v, want one", res.Errors)
	}
}
