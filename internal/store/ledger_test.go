package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/labelgen/internal/ir"
	"github.com/roach88/labelgen/internal/split"
)

func TestBeginRunAssignsSeq(t *testing.T) {
	s := createTestStore(t)

	r1 := beginTestRun(t, s, "run-a")
	r2 := beginTestRun(t, s, "run-b")

	assert.Equal(t, int64(1), r1.Seq)
	assert.Equal(t, int64(2), r2.Seq)
	assert.Equal(t, RunRunning, r2.Status)

	_, err := s.BeginRun(context.Background(), Run{ID: "run-a", Profile: "v1"})
	assert.Error(t, err, "duplicate run id")

	_, err = s.BeginRun(context.Background(), Run{})
	assert.Error(t, err)
}

func TestListAndGetRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.NotNil(t, runs)

	_, err = s.LatestRun(ctx)
	assert.True(t, errors.Is(err, ErrRunNotFound))

	beginTestRun(t, s, "run-b")
	beginTestRun(t, s, "run-a")
	require.NoError(t, s.FinishRun(ctx, "run-b", RunCompleted))

	runs, err = s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-b", runs[0].ID, "ordered by seq, not id")
	assert.Equal(t, RunCompleted, runs[0].Status)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-a", latest.ID)

	got, err := s.GetRun(ctx, "run-b")
	require.NoError(t, err)
	assert.Equal(t, "/scenes", got.ScenesDir)

	_, err = s.GetRun(ctx, "nope")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	assert.Error(t, s.FinishRun(ctx, "nope", RunFailed))
}

func TestWriteAndReadRecords(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := beginTestRun(t, s, "run-1")

	label := []int{3, 10, 7, 21, 0}
	accepted := SceneRecord{
		RunID:    run.ID,
		Seq:      1,
		Scene:    "a.json",
		Video:    "CATER_000000.avi",
		Status:   StatusAccepted,
		Label:    label,
		RecordID: ir.MustRecordID("CATER_000000.avi", label),
	}
	skipped := SceneRecord{
		RunID:  run.ID,
		Seq:    2,
		Scene:  "b.json",
		Status: StatusSkipped,
		Reason: "insufficient_coverage",
	}

	// Written out of order; read back by seq.
	require.NoError(t, s.WriteRecord(ctx, skipped))
	require.NoError(t, s.WriteRecord(ctx, accepted))
	// Idempotent.
	require.NoError(t, s.WriteRecord(ctx, accepted))

	records, err := s.ReadRecords(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, accepted, records[0])
	assert.Equal(t, skipped, records[1])

	skips, err := s.SkipCounts(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"insufficient_coverage": 1}, skips)

	assert.Error(t, s.WriteRecord(ctx, SceneRecord{RunID: run.ID, Seq: 3, Scene: "c.json", Status: "bogus"}))
}

func TestAssignSplitsAndCounts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := beginTestRun(t, s, "run-1")

	scenes := []string{"a.json", "b.json", "c.json"}
	for i, name := range scenes {
		require.NoError(t, s.WriteRecord(ctx, SceneRecord{
			RunID:  run.ID,
			Seq:    int64(i + 1),
			Scene:  name,
			Video:  name + ".avi",
			Status: StatusAccepted,
			Label:  []int{3, 10, 7, 21, 0},
		}))
	}

	counts, err := s.SplitCounts(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"": 3}, counts)

	res := &split.Result{
		Validation: []split.Record{{Scene: "a.json"}},
		Train:      []split.Record{{Scene: "b.json"}, {Scene: "c.json"}},
	}
	require.NoError(t, s.AssignSplits(ctx, run.ID, res))

	counts, err = s.SplitCounts(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"train": 2, "val": 1}, counts)

	records, err := s.ReadRecords(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "val", records[0].Split)
}

func TestLabelMarshalling(t *testing.T) {
	text, err := marshalLabel(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", text)

	text, err = marshalLabel([]int{4, 15, 7, 18, 0})
	require.NoError(t, err)
	assert.Equal(t, "[4,15,7,18,0]", text)

	label, err := unmarshalLabel(text)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 15, 7, 18, 0}, label)

	_, err = unmarshalLabel("{")
	assert.Error(t, err)
}
