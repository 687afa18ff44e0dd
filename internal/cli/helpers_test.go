package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/labelgen/internal/testutil"
)

// jsonResponse mirrors CLIResponse with the payload left raw.
type jsonResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

func decodeResponse(t *testing.T, buf *bytes.Buffer, data any) jsonResponse {
	t.Helper()
	var resp jsonResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp), "output: %s", buf.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (*bytes.Buffer, *bytes.Buffer, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out, errOut, err
}

// writeScenes writes three usable scenes (one held out by slide_red), one
// with an uncovered window and one that is not JSON.
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

// coveringLine is the encoded split line of testutil.CoveringScene.
const coveringLine = "3,10,7,21,3,10,7,21,3,10,7,21,0"
