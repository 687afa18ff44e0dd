package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/labelgen/internal/pipeline"
	"github.com/roach88/labelgen/internal/profile"
	"github.com/roach88/labelgen/internal/split"
	"github.com/roach88/labelgen/internal/store"
	"github.com/roach88/labelgen/internal/testutil"
)

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory ledger for isolation, under a
// fixed run id for reproducible golden output.
//
// Execution flow:
// 1. Resolve the profile
// 2. Convert inline scenes to scene records
// 3. Run the labelling pipeline over them in scenario order
// 4. Evaluate expectations and assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is like Run but logs pipeline activity to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	prof, err := profile.Resolve(scenario.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	inputs := make([]pipeline.Input, 0, len(scenario.Scenes))
	for _, sc := range scenario.Scenes {
		rec, err := sc.Record()
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, pipeline.Input{Name: sc.Name, Record: rec})
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	runIDs := testutil.NewFixedRunIDGenerator(scenario.RunID)

	res, err := pipeline.Process(ctx, pipeline.Config{
		ScenesDir: "scenario:" + scenario.Name,
		Profile:   prof,
		Store:     st,
		RunIDs:    runIDs,
		Logger:    logger,
	}, inputs)
	if err != nil {
		if scenario.ExpectError == "" {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		result := NewResult()
		result.RunID = runIDs.Generate()
		if !strings.Contains(err.Error(), scenario.ExpectError) {
			result.AddError(fmt.Sprintf("expected error containing %q, got: %v", scenario.ExpectError, err))
		}
		return result, nil
	}

	result, err := collect(ctx, st, res)
	if err != nil {
		return nil, err
	}

	if scenario.ExpectError != "" {
		result.AddError(fmt.Sprintf("expected error containing %q, run succeeded", scenario.ExpectError))
	}
	for _, e := range scenario.Expect {
		checkExpectation(result, e)
	}
	for _, a := range scenario.Assertions {
		if err := evaluateAssertion(ctx, st, res.RunID, result, a); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// collect builds the result from the ledger, so the harness observes
// exactly what a run records.
func collect(ctx context.Context, st *store.Store, res *pipeline.Result) (*Result, error) {
	result := NewResult()
	result.RunID = res.RunID

	records, err := st.ReadRecords(ctx, res.RunID)
	if err != nil {
		return nil, fmt.Errorf("failed to read run records: %w", err)
	}
	if len(records) != len(res.Scenes) {
		return nil, fmt.Errorf("ledger holds %d records for %d scenes", len(records), len(res.Scenes))
	}

	for i, rec := range records {
		o := Outcome{
			Scene:   rec.Scene,
			Status:  rec.Status,
			Reason:  rec.Reason,
			Video:   rec.Video,
			Encoded: rec.Label,
			Split:   rec.Split,
		}
		if lbl := res.Scenes[i].Label; lbl != nil {
			o.Tokens = lbl.Tokens
		}
		result.Outcomes = append(result.Outcomes, o)
	}

	for _, n := range split.Names {
		lines := []string{}
		for _, r := range res.Split.Get(n) {
			lines = append(lines, split.FormatLine(r))
		}
		result.Splits[string(n)] = lines
	}
	for rule, n := range res.Split.HeldOutMatches {
		result.HeldOut[rule] = n
	}
	return result, nil
}
