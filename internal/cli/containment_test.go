package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/labelgen/internal/testutil"
)

func writeContainScene(t *testing.T) string {
	t.Helper()
	return testutil.CoveringScene("CATER_000000.avi").
		Object("Cone_0", "red", "metal", "cone").
		Object("Sphere_1", "blue", "rubber", "sphere").
		Move("Sphere_1", "_slide", "", 5, 15).
		Move("Cone_0", "_contain", "Sphere_1", 40, 50).
		WriteFile(t, t.TempDir(), "contain.json")
}

func TestContainmentCommandJSON(t *testing.T) {
	path := writeContainScene(t)

	stdout, _, err := execute(NewContainmentCommand(&RootOptions{Format: "json"}), path, "--frame", "45")
	require.NoError(t, err)

	var result ContainmentResult
	decodeResponse(t, stdout, &result)
	assert.Equal(t, 45, result.Frame)
	assert.Equal(t, []Holding{
		{Container: "Cone_0", Holds: "Sphere_1"},
		{Container: "Filler_0", Holds: ""},
		{Container: "Sphere_1", Holds: ""},
	}, result.Holdings)
}

func TestContainmentCommandBeforeContain(t *testing.T) {
	path := writeContainScene(t)

	stdout, _, err := execute(NewContainmentCommand(&RootOptions{Format: "text"}), path, "--frame", "39")
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Containment at frame 39")
	assert.Contains(t, stdout.String(), "Cone_0 holds nothing")
	assert.NotContains(t, stdout.String(), "holds Sphere_1")
}

func TestContainmentCommandStartFrameIsInclusive(t *testing.T) {
	path := writeContainScene(t)

	stdout, _, err := execute(NewContainmentCommand(&RootOptions{Format: "text"}), path, "--frame", "40")
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Cone_0 holds Sphere_1")
}

func TestContainmentCommandErrors(t *testing.T) {
	path := writeContainScene(t)

	_, _, err := execute(NewContainmentCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame")

	_, _, err = execute(NewContainmentCommand(&RootOptions{Format: "text"}), path, "--frame=-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(NewContainmentCommand(&RootOptions{Format: "text"}), "/nonexistent.json", "--frame", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scene file not found")
}
