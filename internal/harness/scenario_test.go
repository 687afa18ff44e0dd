package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: "One scene"
scenes:
  - name: a.json
    video: a.avi
    objects: []
    movements: []
assertions:
  - type: accepted_count
    count: 0
`

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario(writeScenario(t, minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", scenario.Name)
	assert.Empty(t, scenario.Profile)
	require.Len(t, scenario.Scenes, 1)
	assert.Equal(t, "a.avi", scenario.Scenes[0].Video)
	assert.Len(t, scenario.Assertions, 1)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, minimalScenario+"assertion: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_BuiltinProfileNotResolvedAsPath(t *testing.T) {
	scenario, err := ParseScenario([]byte(minimalScenario+"profile: v2\n"), "/some/dir")
	require.NoError(t, err)
	assert.Equal(t, "v2", scenario.Profile)

	scenario, err = ParseScenario([]byte(minimalScenario+"profile: custom.cue\n"), "/some/dir")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/some/dir", "custom.cue"), scenario.Profile)
}

func TestValidateScenario(t *testing.T) {
	valid := func() Scenario {
		return Scenario{
			Name:        "s",
			Description: "d",
			Scenes:      []SceneSpec{{Name: "a"}},
			Assertions:  []Assertion{{Type: AssertAcceptedCount}},
		}
	}

	tests := []struct {
		name   string
		mutate func(s *Scenario)
		want   string
	}{
		{"missing name", func(s *Scenario) { s.Name = "" }, "name is required"},
		{"missing description", func(s *Scenario) { s.Description = "" }, "description is required"},
		{"no scenes", func(s *Scenario) { s.Scenes = nil }, "scenes list is required"},
		{"nothing checked", func(s *Scenario) { s.Assertions = nil }, "at least one"},
		{"unnamed scene", func(s *Scenario) { s.Scenes = append(s.Scenes, SceneSpec{}) }, "scenes[1]: name is required"},
		{"duplicate scene", func(s *Scenario) { s.Scenes = append(s.Scenes, SceneSpec{Name: "a"}) }, "duplicate scene"},
		{"unknown expect scene", func(s *Scenario) { s.Expect = []Expectation{{Scene: "b"}} }, "unknown scene"},
		{"rejected with split", func(s *Scenario) { s.Expect = []Expectation{{Scene: "a", Rejected: true, Split: "train"}} }, "rejected scene"},
		{"assertion type missing", func(s *Scenario) { s.Assertions = []Assertion{{}} }, "type is required"},
		{"unknown assertion", func(s *Scenario) { s.Assertions = []Assertion{{Type: "bogus"}} }, "unknown assertion type"},
		{"split_count without split", func(s *Scenario) { s.Assertions = []Assertion{{Type: AssertSplitCount}} }, "split is required"},
		{"skip_count without reason", func(s *Scenario) { s.Assertions = []Assertion{{Type: AssertSkipCount}} }, "reason is required"},
		{"held_out_count without rule", func(s *Scenario) { s.Assertions = []Assertion{{Type: AssertHeldOutCount}} }, "rule is required"},
		{"negative count", func(s *Scenario) { s.Assertions = []Assertion{{Type: AssertAcceptedCount, Count: -1}} }, "non-negative"},
	}

	s := valid()
	require.NoError(t, validateScenario(&s))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := validateScenario(&s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
