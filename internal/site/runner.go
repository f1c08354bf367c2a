// Package site runs reconciliation passes over a built MkDocs site directory.
package site

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ziadkadry99/navpatch/internal/ledger"
	"github.com/ziadkadry99/navpatch/internal/navpatch"
	"github.com/ziadkadry99/navpatch/internal/walker"
)

// ProgressFunc is called after each page is handled.
type ProgressFunc func(current, total int, relPath string)

// Options configures a Runner.
type Options struct {
	Patcher     *navpatch.Patcher
	Ledger      *ledger.Store // optional
	SiteDir     string
	OutputDir   string // empty writes pages in place
	Concurrency int
	DryRun      bool
	OnProgress  ProgressFunc
	Logger      *slog.Logger
}

// Runner patches many pages concurrently.
type Runner struct {
	opts Options
	log  *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(opts Options) *Runner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Runner{opts: opts, log: log}
}

// FileResult describes what a pass did to one page.
type FileResult struct {
	RelPath string
	Result  navpatch.Result
	// Skipped is set when the ledger shows the page is already patched.
	Skipped bool
	// Written is set when new bytes reached disk.
	Written bool
}

// RunResult collects the outcome of a pass.
type RunResult struct {
	RunID  string
	Files  []FileResult
	Errors []error
}

// Patched returns the number of pages whose output differs from their input.
func (r *RunResult) Patched() int {
	n := 0
	for _, f := range r.Files {
		if !f.Skipped && f.Result.Changed() {
			n++
		}
	}
	return n
}

// Skipped returns the number of pages the ledger marked as already patched.
func (r *RunResult) Skipped() int {
	n := 0
	for _, f := range r.Files {
		if f.Skipped {
			n++
		}
	}
	return n
}

// Run patches files. Per-file failures are collected in the result; the
// returned error is reserved for ledger failures.
func (r *Runner) Run(ctx context.Context, files []walker.FileInfo) (*RunResult, error) {
	result := &RunResult{}

	var run *ledger.Run
	if r.opts.Ledger != nil {
		var err error
		run, err = r.opts.Ledger.StartRun(ctx, r.opts.SiteDir, string(r.opts.Patcher.Table().Mode()), r.opts.DryRun)
		if err != nil {
			return nil, err
		}
		result.RunID = run.ID
	}

	total := len(files)
	sem := make(chan struct{}, r.opts.Concurrency)
	var mu sync.Mutex
	var processed int64

	progress := func(rel string) {
		count := atomic.AddInt64(&processed, 1)
		if r.opts.OnProgress != nil {
			r.opts.OnProgress(int(count), total, rel)
		}
	}

	var wg sync.WaitGroup
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			result.Errors = append(result.Errors, fmt.Errorf("patch %s: %w", file.RelPath, err))
			mu.Unlock()
			progress(file.RelPath)
			continue
		}
		select {
		case <-ctx.Done():
			mu.Lock()
			result.Errors = append(result.Errors, fmt.Errorf("patch %s: %w", file.RelPath, ctx.Err()))
			mu.Unlock()
			progress(file.RelPath)
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(f walker.FileInfo) {
			defer wg.Done()
			defer func() { <-sem }()

			fr, err := r.patchFile(ctx, run, f)
			mu.Lock()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("patch %s: %w", f.RelPath, err))
			} else {
				result.Files = append(result.Files, *fr)
			}
			mu.Unlock()
			progress(f.RelPath)
		}(file)
	}
	wg.Wait()

	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].RelPath < result.Files[j].RelPath })

	if run != nil {
		run.FilesPatched = result.Patched()
		run.FilesSkipped = result.Skipped()
		run.FilesFailed = len(result.Errors)
		// The run is closed even if ctx was cancelled mid-pass.
		if err := r.opts.Ledger.FinishRun(context.WithoutCancel(ctx), run); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (r *Runner) patchFile(ctx context.Context, run *ledger.Run, f walker.FileInfo) (*FileResult, error) {
	fr := &FileResult{RelPath: f.RelPath}

	if r.opts.Ledger != nil && r.opts.OutputDir == "" {
		rec, err := r.opts.Ledger.File(ctx, f.RelPath)
		if err != nil {
			return nil, err
		}
		if rec != nil && rec.ContentHash == f.ContentHash && rec.PatcherHash == r.opts.Patcher.Fingerprint() {
			r.log.Debug("page already patched", "path", f.RelPath)
			fr.Skipped = true
			return fr, nil
		}
	}

	src, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading: %w", err)
	}
	out, res, err := r.opts.Patcher.PatchBytes(src)
	if err != nil {
		return nil, err
	}
	fr.Result = res
	if !res.Changed() {
		// Keep the original bytes rather than a re-rendered copy.
		out = src
	}
	r.log.Debug("page reconciled", "path", f.RelPath,
		"assignments", res.Assignments, "hrefs", res.HrefsChanged,
		"overlays", res.OverlaysInserted, "links", res.LinksRewritten)

	if r.opts.DryRun {
		return fr, nil
	}

	dest := f.Path
	if r.opts.OutputDir != "" {
		dest = filepath.Join(r.opts.OutputDir, filepath.FromSlash(f.RelPath))
	}
	if dest != f.Path || !bytes.Equal(out, src) {
		if err := writeFile(dest, out, f.Path); err != nil {
			return nil, err
		}
		fr.Written = true
	}

	if run != nil {
		err := r.opts.Ledger.RecordFile(ctx, ledger.FileRecord{
			Path:        f.RelPath,
			ContentHash: walker.HashBytes(out),
			PatcherHash: r.opts.Patcher.Fingerprint(),
			RunID:       run.ID,
			Assignments: res.Assignments,
			Overlays:    res.OverlaysInserted + res.OverlaysKept,
		})
		if err != nil {
			return nil, err
		}
	}
	return fr, nil
}

// writeFile writes data to dest, keeping the permissions of the source page.
func writeFile(dest string, data []byte, src string) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(src); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(dest, data, perm); err != nil {
		return fmt.Errorf("writing: %w", err)
	}
	return nil
}
