package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run id is not in the ledger.
var ErrRunNotFound = errors.New("run not found")

// GetRun returns one run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, profile, profile_hash, scenes_dir, status
		FROM runs WHERE id = ?
	`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

// LatestRun returns the run with the highest seq.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, profile, profile_hash, scenes_dir, status
		FROM runs ORDER BY seq DESC LIMIT 1
	`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

// ListRuns returns all runs ordered by seq.
// Returns an empty slice (not nil) if the ledger is empty.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, profile, profile_hash, scenes_dir, status
		FROM runs
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRecords returns every scene record of a run ordered by seq.
func (s *Store) ReadRecords(ctx context.Context, runID string) ([]SceneRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, scene, video, status, reason, label, record_id, split
		FROM records
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []SceneRecord{}
	for rows.Next() {
		var rec SceneRecord
		var labelJSON string
		if err := rows.Scan(&rec.RunID, &rec.Seq, &rec.Scene, &rec.Video, &rec.Status,
			&rec.Reason, &labelJSON, &rec.RecordID, &rec.Split); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if rec.Label, err = unmarshalLabel(labelJSON); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// SplitCounts returns the number of accepted records per split of a run.
// Accepted records not yet assigned are counted under the empty name.
func (s *Store) SplitCounts(ctx context.Context, runID string) (map[string]int, error) {
	return s.countBy(ctx, `
		SELECT split, COUNT(*) FROM records
		WHERE run_id = ? AND status = 'accepted'
		GROUP BY split ORDER BY split
	`, runID)
}

// SkipCounts returns the number of skipped scenes per reason of a run.
func (s *Store) SkipCounts(ctx context.Context, runID string) (map[string]int, error) {
	return s.countBy(ctx, `
		SELECT reason, COUNT(*) FROM records
		WHERE run_id = ? AND status = 'skipped'
		GROUP BY reason ORDER BY reason
	`, runID)
}

func (s *Store) countBy(ctx context.Context, query, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	if err := row.Scan(&run.ID, &run.Seq, &run.Profile, &run.ProfileHash, &run.ScenesDir, &run.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}
