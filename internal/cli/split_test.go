package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/labelgen/internal/split"
)

// labelLines are seven records; the second (slide red metal spl) is held
// out by slide_red.
var labelLines = "" +
	"CATER_000000.avi:" + coveringLine + "\n" +
	"CATER_000001.avi:5,12,6,21,0\n" +
	"CATER_000002.avi:" + coveringLine + "\n" +
	"CATER_000003.avi:" + coveringLine + "\n" +
	"CATER_000004.avi:" + coveringLine + "\n" +
	"CATER_000005.avi:" + coveringLine + "\n" +
	"CATER_000006.avi:" + coveringLine + "\n"

func writeLabels(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labels.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSplitCommandWritesFiles(t *testing.T) {
	labels := writeLabels(t, labelLines)
	out := t.TempDir()

	stdout, _, err := execute(NewSplitCommand(&RootOptions{Format: "json"}), labels, "--out", out)
	require.NoError(t, err)

	var result SplitResult
	decodeResponse(t, stdout, &result)
	assert.Equal(t, "v1", result.Profile)
	assert.Equal(t, 7, result.Total)
	assert.Equal(t, map[string]int{"slide_red": 1}, result.HeldOut)
	assert.Equal(t, 1, result.Splits[split.TestValidation])
	assert.Equal(t, 2, result.Splits[split.Validation])
	assert.Equal(t, 4, result.Splits[split.Train])
	assert.Len(t, result.Files, 4)

	val, err := split.ReadFile(filepath.Join(out, "val.txt"))
	require.NoError(t, err)
	require.Len(t, val, 2)
	assert.Equal(t, "CATER_000000.avi", val[0].Video)
	assert.Equal(t, "CATER_000004.avi", val[1].Video)
}

func TestSplitCommandReportsOnlyWithoutOut(t *testing.T) {
	labels := writeLabels(t, labelLines)

	stdout, _, err := execute(NewSplitCommand(&RootOptions{Format: "text"}), labels, "--profile", "v2")
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Partitioned 7 record(s) (profile v2)")
	assert.NotContains(t, stdout.String(), "wrote")
}

func TestSplitCommandBadInput(t *testing.T) {
	labels := writeLabels(t, "CATER_000000.avi:1,x\n")
	_, _, err := execute(NewSplitCommand(&RootOptions{Format: "text"}), labels)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "line 1")

	_, _, err = execute(NewSplitCommand(&RootOptions{Format: "text"}), "/nonexistent/labels.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "labels file not found")
}

func TestSplitCommandInvariantViolation(t *testing.T) {
	// One event group plus EOS, then a stray index.
	labels := writeLabels(t, "CATER_000000.avi:3,10,7,21,0,4\n")

	stdout, _, err := execute(NewSplitCommand(&RootOptions{Format: "json"}), labels)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, stdout, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvariant, resp.Error.Code)
}
