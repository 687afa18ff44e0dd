package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/labelgen/internal/metrics"
	"github.com/roach88/labelgen/internal/pipeline"
	"github.com/roach88/labelgen/internal/profile"
	"github.com/roach88/labelgen/internal/scene"
	"github.com/roach88/labelgen/internal/split"
	"github.com/roach88/labelgen/internal/store"
	"github.com/roach88/labelgen/internal/testutil"
	"github.com/roach88/labelgen/internal/vocab"
)

func v1(t *testing.T) *profile.Profile {
	t.Helper()
	p, err := profile.Builtin("v1")
	require.NoError(t, err)
	return p
}

// writeScenes writes a small batch: three usable scenes (one held out),
// one with an empty window and one that is not JSON.
func writeScenes(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.CoveringScene("CATER_000000.avi").WriteFile(t, dir, "scene_a.json")
	testutil.CoveringScene("CATER_000001.avi").
		Object("Cube_1", "red", "metal", "cube").
		Move("Cube_1", "_slide", "", 20, 40).
		WriteFile(t, dir, "scene_b.json")
	testutil.NewScene("CATER_000002.avi").
		Object("Cube_1", "red", "metal", "cube").
		Move("Cube_1", "_slide", "", 0, 29).
		WriteFile(t, dir, "scene_c.json")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene_d.json"), []byte("{broken"), 0644))
	testutil.CoveringScene("CATER_000004.avi").WriteFile(t, dir, "scene_e.json")
	return dir
}

func TestRunEndToEnd(t *testing.T) {
	scenes := writeScenes(t)
	out := filepath.Join(t.TempDir(), "splits")

	res, err := pipeline.Run(context.Background(), pipeline.Config{
		ScenesDir: scenes,
		OutDir:    out,
		Profile:   v1(t),
		RunIDs:    testutil.NewFixedRunIDGenerator("run-1"),
	})
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunID)
	require.Len(t, res.Scenes, 5)
	assert.Equal(t, 3, res.Accepted())
	assert.Equal(t, map[string]int{
		string(scene.ReasonInsufficientCoverage): 1,
		string(scene.ReasonUnreadable):           1,
	}, res.Skipped)

	assert.Equal(t, []split.Record{{Scene: "scene_b.json", Video: "CATER_000001.avi", Label: res.Scenes[1].Label.Encoded}}, res.Split.TestValidation)
	require.Len(t, res.Split.Validation, 1)
	assert.Equal(t, "CATER_000000.avi", res.Split.Validation[0].Video)
	require.Len(t, res.Split.Train, 1)
	assert.Equal(t, "CATER_000004.avi", res.Split.Train[0].Video)
	assert.Empty(t, res.Split.Test)
	assert.Equal(t, 3, res.Summary.Total)

	require.Len(t, res.Files, 4)
	data, err := os.ReadFile(filepath.Join(out, "val.txt"))
	require.NoError(t, err)
	assert.Equal(t, "CATER_000000.avi:3,10,7,21,3,10,7,21,3,10,7,21,0\n", string(data))

	data, err = os.ReadFile(filepath.Join(out, "test.txt"))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestRunRecordsStoreAndMetrics(t *testing.T) {
	scenes := writeScenes(t)
	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	rec := metrics.NewRecorder()
	metricsFile := filepath.Join(t.TempDir(), "labelgen.prom")

	_, err = pipeline.Run(context.Background(), pipeline.Config{
		ScenesDir:   scenes,
		Profile:     v1(t),
		Store:       st,
		Metrics:     rec,
		MetricsFile: metricsFile,
		RunIDs:      testutil.NewFixedRunIDGenerator("run-1"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	run, err := st.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, store.RunCompleted, run.Status)
	assert.Equal(t, "v1", run.Profile)
	assert.Len(t, run.ProfileHash, 64)

	records, err := st.ReadRecords(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "scene_a.json", records[0].Scene)
	assert.Equal(t, "val", records[0].Split)
	assert.NotEmpty(t, records[0].RecordID)
	assert.Equal(t, store.StatusSkipped, records[2].Status)
	assert.Equal(t, "insufficient_coverage", records[2].Reason)

	counts, err := st.SplitCounts(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"train": 1, "val": 1, "test_val": 1}, counts)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `labelgen_scenes_total{status="accepted"} 3`)
	assert.Contains(t, string(data), `labelgen_split_records{split="test_val"} 1`)
}

func TestRunRecordIDsStableAcrossRuns(t *testing.T) {
	scenes := writeScenes(t)
	cfg := pipeline.Config{ScenesDir: scenes, Profile: v1(t)}

	first, err := pipeline.Run(context.Background(), cfg)
	require.NoError(t, err)
	second, err := pipeline.Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	for i := range first.Scenes {
		assert.Equal(t, first.Scenes[i].RecordID, second.Scenes[i].RecordID)
	}
	assert.Equal(t, first.Split, second.Split)
}

func TestRunHardErrorAbortsAndMarksRunFailed(t *testing.T) {
	dir := t.TempDir()
	testutil.CoveringScene("CATER_000000.avi").WriteFile(t, dir, "a.json")
	testutil.CoveringScene("CATER_000001.avi").
		Object("Blob_1", "magenta", "metal", "cube").
		Move("Blob_1", "_slide", "", 10, 20).
		WriteFile(t, dir, "b.json")

	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	_, err = pipeline.Run(context.Background(), pipeline.Config{
		ScenesDir: dir,
		Profile:   v1(t),
		Store:     st,
		RunIDs:    testutil.NewFixedRunIDGenerator("run-bad"),
	})
	require.Error(t, err)
	var symErr *vocab.SymbolError
	require.True(t, errors.As(err, &symErr))
	assert.Equal(t, "magenta", symErr.Symbol)
	assert.Contains(t, err.Error(), "b.json")

	run, err := st.GetRun(context.Background(), "run-bad")
	require.NoError(t, err)
	assert.Equal(t, store.RunFailed, run.Status)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.Run(ctx, pipeline.Config{ScenesDir: writeScenes(t), Profile: v1(t)})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunVideosDir(t *testing.T) {
	scenes := writeScenes(t)
	videos := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(videos, "CATER_000000.avi"), []byte("avi"), 0644))

	res, err := pipeline.Run(context.Background(), pipeline.Config{
		ScenesDir: scenes,
		VideosDir: videos,
		Profile:   v1(t),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Accepted())
	assert.Equal(t, 3, res.Skipped[string(scene.ReasonInvalidVideo)])
}

func TestRunConfigErrors(t *testing.T) {
	_, err := pipeline.Run(context.Background(), pipeline.Config{ScenesDir: t.TempDir()})
	assert.Error(t, err)

	_, err = pipeline.Run(context.Background(), pipeline.Config{
		ScenesDir: filepath.Join(t.TempDir(), "missing"),
		Profile:   v1(t),
	})
	assert.Error(t, err)

	bad := *v1(t)
	bad.Frames = 100
	_, err = pipeline.Run(context.Background(), pipeline.Config{ScenesDir: t.TempDir(), Profile: &bad})
	assert.Error(t, err)
}

func TestProcessInMemory(t *testing.T) {
	inputs := []pipeline.Input{
		{Name: "a", Record: testutil.CoveringScene("CATER_000000.avi").Record()},
		{Name: "b", Record: testutil.NewScene("").Record()},
	}
	res, err := pipeline.Process(context.Background(), pipeline.Config{Profile: v1(t)}, inputs)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Accepted())
	assert.Equal(t, "missing_field", res.Scenes[1].Reason())
}

func TestUUIDv7Generator(t *testing.T) {
	gen := pipeline.UUIDv7Generator{}
	a, b := gen.Generate(), gen.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
