package split

import (
	"fmt"

	"github.com/roach88/labelgen/internal/vocab"
)

// Name identifies a split. The value doubles as the output file stem.
type Name string

const (
	Train          Name = "train"
	Validation     Name = "val"
	Test           Name = "test"
	TestValidation Name = "test_val"
)

// Names lists every split in output order.
var Names = []Name{Train, Validation, Test, TestValidation}

// Record is one accepted (video, label) pair. Scene is carried along for
// bookkeeping and is not part of the output format.
type Record struct {
	Scene string `json:"scene,omitempty"`
	Video string `json:"video"`
	Label []int  `json:"label"`
}

// Result holds the four disjoint splits.
type Result struct {
	Train          []Record `json:"train"`
	Validation     []Record `json:"val"`
	Test           []Record `json:"test"`
	TestValidation []Record `json:"test_val"`

	// HeldOutMatches counts held-out records per first matching rule.
	HeldOutMatches map[string]int `json:"held_out_matches"`
}

// Get returns the records of one split.
func (r *Result) Get(n Name) []Record {
	switch n {
	case Train:
		return r.Train
	case Validation:
		return r.Validation
	case Test:
		return r.Test
	case TestValidation:
		return r.TestValidation
	default:
		return nil
	}
}

// Total returns the number of records across all splits.
func (r *Result) Total() int {
	return len(r.Train) + len(r.Validation) + len(r.Test) + len(r.TestValidation)
}

// Options controls positional splitting.
type Options struct {
	// ValidationStride sends every Nth non-held-out record (index % N == 0)
	// to validation.
	ValidationStride int
	// TestValStride sends every Nth held-out record to test-validation.
	TestValStride int
}

// DefaultOptions matches the first dataset version.
var DefaultOptions = Options{ValidationStride: 3, TestValStride: 4}

// Partitioner assigns records to splits.
type Partitioner struct {
	matcher *Matcher
	opts    Options
}

// NewPartitioner creates a partitioner from compiled held-out rules.
func NewPartitioner(v *vocab.Vocabulary, rules []Rule, opts Options) (*Partitioner, error) {
	if opts.ValidationStride <= 0 {
		return nil, fmt.Errorf("validation stride must be positive, got %d", opts.ValidationStride)
	}
	if opts.TestValStride <= 0 {
		return nil, fmt.Errorf("test-validation stride must be positive, got %d", opts.TestValStride)
	}
	return &Partitioner{matcher: NewMatcher(v, rules), opts: opts}, nil
}

// Partition splits records deterministically by input position.
//
// A label breaking the length invariant aborts the partition with a
// *label.InvariantError; it is never skipped.
func (p *Partitioner) Partition(records []Record) (*Result, error) {
	var heldOut, rest []Record
	matches := make(map[string]int)

	for i, rec := range records {
		name, ok, err := p.matcher.Match(rec.Label)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, rec.Video, err)
		}
		if ok {
			matches[name]++
			heldOut = append(heldOut, rec)
		} else {
			rest = append(rest, rec)
		}
	}

	res := &Result{HeldOutMatches: matches}
	for i, rec := range heldOut {
		if i%p.opts.TestValStride == 0 {
			res.TestValidation = append(res.TestValidation, rec)
		} else {
			res.Test = append(res.Test, rec)
		}
	}
	for i, rec := range rest {
		if i%p.opts.ValidationStride == 0 {
			res.Validation = append(res.Validation, rec)
		} else {
			res.Train = append(res.Train, rec)
		}
	}
	return res, nil
}
