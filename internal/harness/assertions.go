package harness

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/labelgen/internal/store"
)

// checkExpectation compares one scene's outcome with its expectation and
// records every mismatch on the result.
func checkExpectation(result *Result, e Expectation) {
	o := result.outcome(e.Scene)
	if o == nil {
		result.AddError(fmt.Sprintf("scene %s: no outcome", e.Scene))
		return
	}

	if e.Rejected {
		if o.Status != store.StatusSkipped {
			result.AddError(fmt.Sprintf("scene %s: expected rejection, got %s", e.Scene, o.Status))
			return
		}
		if e.Reason != "" && e.Reason != o.Reason {
			result.AddError(fmt.Sprintf("scene %s: expected reason %s, got %s", e.Scene, e.Reason, o.Reason))
		}
		return
	}

	if o.Status != store.StatusAccepted {
		result.AddError(fmt.Sprintf("scene %s: expected a label, got skipped (%s)", e.Scene, o.Reason))
		return
	}
	if len(e.Tokens) > 0 && !slices.Equal(e.Tokens, o.Tokens) {
		result.AddError(fmt.Sprintf("scene %s: tokens mismatch\n  expected: %v\n  actual:   %v", e.Scene, e.Tokens, o.Tokens))
	}
	if len(e.Encoded) > 0 && !slices.Equal(e.Encoded, o.Encoded) {
		result.AddError(fmt.Sprintf("scene %s: encoding mismatch\n  expected: %v\n  actual:   %v", e.Scene, e.Encoded, o.Encoded))
	}
	if e.Split != "" && e.Split != o.Split {
		result.AddError(fmt.Sprintf("scene %s: expected split %s, got %s", e.Scene, e.Split, o.Split))
	}
}

// evaluateAssertion checks one batch-level assertion. Split and skip
// counts are read back from the run ledger.
func evaluateAssertion(ctx context.Context, st *store.Store, runID string, result *Result, a Assertion) error {
	var got int
	var what string

	switch a.Type {
	case AssertSplitCount:
		counts, err := st.SplitCounts(ctx, runID)
		if err != nil {
			return err
		}
		got, what = counts[a.Split], "split "+a.Split
	case AssertSkipCount:
		counts, err := st.SkipCounts(ctx, runID)
		if err != nil {
			return err
		}
		got, what = counts[a.Reason], "skips with reason "+a.Reason
	case AssertHeldOutCount:
		got, what = result.HeldOut[a.Rule], "held out by "+a.Rule
	case AssertAcceptedCount:
		for _, o := range result.Outcomes {
			if o.Status == store.StatusAccepted {
				got++
			}
		}
		what = "accepted scenes"
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}

	if got != a.Count {
		result.AddError(fmt.Sprintf("%s: expected %d, got %d", what, a.Count, got))
	}
	return nil
}
