package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/labelgen/internal/ir"
)

// Snapshot renders a result as canonical JSON for golden comparison.
// Tokens are omitted; the encoded label carries the same information.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	scenes := make([]any, len(result.Outcomes))
	for i, o := range result.Outcomes {
		m := map[string]any{
			"scene":  o.Scene,
			"status": o.Status,
		}
		if o.Reason != "" {
			m["reason"] = o.Reason
		}
		if o.Video != "" {
			m["video"] = o.Video
		}
		if len(o.Encoded) > 0 {
			m["encoded"] = o.Encoded
		}
		if o.Split != "" {
			m["split"] = o.Split
		}
		scenes[i] = m
	}

	splits := make(map[string]any, len(result.Splits))
	for name, lines := range result.Splits {
		splits[name] = lines
	}

	return ir.MarshalCanonical(map[string]any{
		"scenario_name": scenarioName,
		"run_id":        result.RunID,
		"scenes":        scenes,
		"splits":        splits,
	})
}

// RunWithGolden executes a scenario and compares the outcome against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the outcome doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
