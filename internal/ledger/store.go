// Package ledger records reconciliation passes and the output hash of every
// page they wrote, so later passes can skip pages that are already patched.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/navpatch/internal/db"
)

// Run is one reconciliation pass over a site directory.
type Run struct {
	ID           string     `json:"id"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	SiteDir      string     `json:"site_dir"`
	Mode         string     `json:"mode"`
	DryRun       bool       `json:"dry_run"`
	FilesPatched int        `json:"files_patched"`
	FilesSkipped int        `json:"files_skipped"`
	FilesFailed  int        `json:"files_failed"`
}

// FileRecord is the last written state of one page. PatcherHash identifies
// the table and options that produced it.
type FileRecord struct {
	Path        string
	ContentHash string
	PatcherHash string
	RunID       string
	Assignments int
	Overlays    int
	UpdatedAt   time.Time
}

// Store provides access to the patch ledger.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// StartRun inserts a new run and returns it with a generated ID.
func (s *Store) StartRun(ctx context.Context, siteDir, mode string, dryRun bool) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC().Truncate(time.Second),
		SiteDir:   siteDir,
		Mode:      mode,
		DryRun:    dryRun,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO patch_runs (id, started_at, site_dir, mode, dry_run)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.Format(time.DateTime), siteDir, mode, boolInt(dryRun),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting patch run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final counters of a run.
func (s *Store) FinishRun(ctx context.Context, run *Run) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx, `
		UPDATE patch_runs
		SET finished_at = ?, files_patched = ?, files_skipped = ?, files_failed = ?
		WHERE id = ?`,
		now.Format(time.DateTime), run.FilesPatched, run.FilesSkipped, run.FilesFailed, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing patch run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("patch run %s not found", run.ID)
	}
	run.FinishedAt = &now
	return nil
}

// RecordFile upserts the written state of a page.
func (s *Store) RecordFile(ctx context.Context, rec FileRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO patched_files (path, content_hash, patcher_hash, run_id, assignments, overlays, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(path) DO UPDATE SET
			content_hash = excluded.content_hash,
			patcher_hash = excluded.patcher_hash,
			run_id = excluded.run_id,
			assignments = excluded.assignments,
			overlays = excluded.overlays,
			updated_at = excluded.updated_at`,
		rec.Path, rec.ContentHash, rec.PatcherHash, rec.RunID, rec.Assignments, rec.Overlays,
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", rec.Path, err)
	}
	return nil
}

// File returns the record for path, or nil if the page was never written.
func (s *Store) File(ctx context.Context, path string) (*FileRecord, error) {
	var (
		rec FileRecord
		ts  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT path, content_hash, patcher_hash, run_id, assignments, overlays, updated_at
		FROM patched_files WHERE path = ?`, path,
	).Scan(&rec.Path, &rec.ContentHash, &rec.PatcherHash, &rec.RunID, &rec.Assignments, &rec.Overlays, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", path, err)
	}
	rec.UpdatedAt = parseTime(ts)
	return &rec, nil
}

// FileHash returns the output hash recorded for path, or "" if none.
func (s *Store) FileHash(ctx context.Context, path string) (string, error) {
	rec, err := s.File(ctx, path)
	if err != nil || rec == nil {
		return "", err
	}
	return rec.ContentHash, nil
}

// LatestRuns returns the most recent runs, newest first.
func (s *Store) LatestRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, site_dir, mode, dry_run,
		       files_patched, files_skipped, files_failed
		FROM patch_runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying patch runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			started  string
			finished sql.NullString
			dryRun   int
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.SiteDir, &r.Mode, &dryRun,
			&r.FilesPatched, &r.FilesSkipped, &r.FilesFailed); err != nil {
			return nil, err
		}
		r.StartedAt = parseTime(started)
		r.DryRun = dryRun != 0
		if finished.Valid {
			t := parseTime(finished.String)
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.DateTime, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
