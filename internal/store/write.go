package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/labelgen/internal/split"
)

// Record statuses.
const (
	StatusAccepted = "accepted"
	StatusSkipped  = "skipped"
)

// Run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Run is one labelling run.
type Run struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	Profile     string `json:"profile"`
	ProfileHash string `json:"profile_hash"`
	ScenesDir   string `json:"scenes_dir"`
	Status      string `json:"status"`
}

// SceneRecord is the outcome of one scene within a run.
type SceneRecord struct {
	RunID    string `json:"run_id"`
	Seq      int64  `json:"seq"`
	Scene    string `json:"scene"`
	Video    string `json:"video,omitempty"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
	Label    []int  `json:"label,omitempty"`
	RecordID string `json:"record_id,omitempty"`
	Split    string `json:"split,omitempty"`
}

// BeginRun inserts a run with the next run seq and status running.
// Returns the run as stored.
func (s *Store) BeginRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		return Run{}, fmt.Errorf("begin run: id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	defer tx.Rollback()

	var maxSeq sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(seq) FROM runs`).Scan(&maxSeq); err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	run.Seq = maxSeq.Int64 + 1
	run.Status = RunRunning

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, profile, profile_hash, scenes_dir, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Seq, run.Profile, run.ProfileHash, run.ScenesDir, run.Status)
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	return run, nil
}

// FinishRun sets the final status of a run.
func (s *Store) FinishRun(ctx context.Context, runID, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET status = ? WHERE id = ?`, status, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run: unknown run %q", runID)
	}
	return nil
}

// WriteRecord inserts a scene record.
// Uses ON CONFLICT DO NOTHING for idempotency - rewriting the same
// (run_id, seq) or (run_id, scene) is silently ignored.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) WriteRecord(ctx context.Context, rec SceneRecord) error {
	if rec.Status != StatusAccepted && rec.Status != StatusSkipped {
		return fmt.Errorf("write record: invalid status %q", rec.Status)
	}

	labelJSON, err := marshalLabel(rec.Label)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records
		(run_id, seq, scene, video, status, reason, label, record_id, split)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		rec.RunID,
		rec.Seq,
		rec.Scene,
		rec.Video,
		rec.Status,
		rec.Reason,
		labelJSON,
		rec.RecordID,
		rec.Split,
	)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// AssignSplits records the split of every partitioned record, matched by
// scene name within the run.
func (s *Store) AssignSplits(ctx context.Context, runID string, res *split.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("assign splits: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE records SET split = ?
		WHERE run_id = ? AND scene = ? AND status = 'accepted'
	`)
	if err != nil {
		return fmt.Errorf("assign splits: %w", err)
	}
	defer stmt.Close()

	for _, n := range split.Names {
		for _, r := range res.Get(n) {
			if _, err := stmt.ExecContext(ctx, string(n), runID, r.Scene); err != nil {
				return fmt.Errorf("assign splits: %s: %w", r.Scene, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("assign splits: %w", err)
	}
	return nil
}
