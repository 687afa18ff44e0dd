package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/labelgen/internal/profile"
	"github.com/roach88/labelgen/internal/scene"
)

// Scenario defines a conformance test scenario.
// A scenario is a batch of inline scenes run through the full labelling
// pipeline, with per-scene expectations and batch-level assertions.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Profile is a built-in profile name or a profile file path relative
	// to the scenario file. Defaults to the default built-in profile.
	Profile string `yaml:"profile,omitempty"`

	// RunID is an optional fixed run id for deterministic golden files.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Scenes are labelled in list order.
	Scenes []SceneSpec `yaml:"scenes"`

	// Expect holds per-scene expectations.
	Expect []Expectation `yaml:"expect,omitempty"`

	// Assertions validate batch-level outcomes.
	// Supported types: split_count, skip_count, held_out_count, accepted_count
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// ExpectError, when set, expects the run to abort with an error whose
	// message contains this text.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// SceneSpec is an inline scene record.
type SceneSpec struct {
	Name      string         `yaml:"name"`
	Video     string         `yaml:"video"`
	Objects   []scene.Object `yaml:"objects"`
	Movements []ObjectMoves  `yaml:"movements"`
}

// ObjectMoves lists the raw movement tuples of one object, in order.
// Each move is [action, target, start, end]; target may be null.
type ObjectMoves struct {
	Object string  `yaml:"object"`
	Moves  [][]any `yaml:"moves"`
}

// Expectation specifies the outcome of one scene.
type Expectation struct {
	Scene string `yaml:"scene"`

	// Rejected expects the scene to be skipped, optionally with Reason.
	Rejected bool   `yaml:"rejected,omitempty"`
	Reason   string `yaml:"reason,omitempty"`

	// Tokens and Encoded, when set, must match the derived label exactly.
	Tokens  []string `yaml:"tokens,omitempty"`
	Encoded []int    `yaml:"encoded,omitempty"`

	// Split, when set, is the split the scene must land in.
	Split string `yaml:"split,omitempty"`
}

// Assertion validates batch-level outcomes.
type Assertion struct {
	// Type specifies the assertion type:
	// - "split_count": Split holds exactly Count records
	// - "skip_count": Count scenes were skipped with Reason
	// - "held_out_count": Count records were held out by Rule
	// - "accepted_count": Count scenes were labelled
	Type string `yaml:"type"`

	Split  string `yaml:"split,omitempty"`
	Reason string `yaml:"reason,omitempty"`
	Rule   string `yaml:"rule,omitempty"`
	Count  int    `yaml:"count"`
}

// Assertion type constants.
const (
	AssertSplitCount    = "split_count"
	AssertSkipCount     = "skip_count"
	AssertHeldOutCount  = "held_out_count"
	AssertAcceptedCount = "accepted_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A profile path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving a profile path relative to
// basePath.
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Profile != "" && !slices.Contains(profile.BuiltinNames(), scenario.Profile) &&
		!filepath.IsAbs(scenario.Profile) && basePath != "" {
		scenario.Profile = filepath.Join(basePath, scenario.Profile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Scenes) == 0 {
		return fmt.Errorf("scenes list is required and must be non-empty")
	}
	if len(s.Expect) == 0 && len(s.Assertions) == 0 && s.ExpectError == "" {
		return fmt.Errorf("at least one expect, assertions or expect_error entry is required")
	}

	names := make(map[string]bool, len(s.Scenes))
	for i, sc := range s.Scenes {
		if sc.Name == "" {
			return fmt.Errorf("scenes[%d]: name is required", i)
		}
		if names[sc.Name] {
			return fmt.Errorf("scenes[%d]: duplicate scene name %q", i, sc.Name)
		}
		names[sc.Name] = true
	}

	for i, e := range s.Expect {
		if !names[e.Scene] {
			return fmt.Errorf("expect[%d]: unknown scene %q", i, e.Scene)
		}
		if e.Rejected && (len(e.Tokens) > 0 || len(e.Encoded) > 0 || e.Split != "") {
			return fmt.Errorf("expect[%d]: a rejected scene has no tokens or split", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}

	switch a.Type {
	case AssertSplitCount:
		if a.Split == "" {
			return fmt.Errorf("assertions[%d]: split is required for split_count", index)
		}
	case AssertSkipCount:
		if a.Reason == "" {
			return fmt.Errorf("assertions[%d]: reason is required for skip_count", index)
		}
	case AssertHeldOutCount:
		if a.Rule == "" {
			return fmt.Errorf("assertions[%d]: rule is required for held_out_count", index)
		}
	case AssertAcceptedCount:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// Record converts the inline scene to a scene record, keeping the
// movement list order.
func (s SceneSpec) Record() (*scene.Record, error) {
	rec := &scene.Record{
		ImageFilename: s.Video,
		Objects:       s.Objects,
	}
	if s.Objects == nil {
		rec.Objects = []scene.Object{}
	}
	if s.Movements == nil {
		return rec, nil
	}

	rec.Movements = &scene.Movements{}
	for _, om := range s.Movements {
		moves := make([]json.RawMessage, 0, len(om.Moves))
		for _, m := range om.Moves {
			raw, err := json.Marshal(m)
			if err != nil {
				return nil, fmt.Errorf("scene %s: object %s: %w", s.Name, om.Object, err)
			}
			moves = append(moves, raw)
		}
		rec.Movements.Objects = append(rec.Movements.Objects, scene.ObjectMoves{
			ObjectID: om.Object,
			Moves:    moves,
		})
	}
	return rec, nil
}
