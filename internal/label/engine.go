package label

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/labelgen/internal/scene"
	"github.com/roach88/labelgen/internal/vocab"
)

// Options configures an Engine.
type Options struct {
	Windows Windows

	// StrictOverlap skips scenes with more than one conflicting containment
	// pair instead of labelling them from the first pair only.
	StrictOverlap bool

	// Logger receives ambiguity warnings. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Engine derives encoded labels for individual scenes.
// An Engine holds no per-scene state and is safe for concurrent use.
type Engine struct {
	vocab  *vocab.Vocabulary
	opts   Options
	logger *slog.Logger
}

// Label is the result of deriving one scene.
type Label struct {
	Tokens  []string `json:"tokens"`
	Encoded []int    `json:"encoded"`

	// Overlap is the conflicting pair used for ordering, if any.
	Overlap *Overlap `json:"overlap,omitempty"`

	// Conflicts counts all conflicting containment pairs in the scene.
	Conflicts int `json:"conflicts"`
}

// NewEngine creates an engine bound to a vocabulary.
func NewEngine(v *vocab.Vocabulary, opts Options) (*Engine, error) {
	if v == nil {
		return nil, fmt.Errorf("vocabulary is required")
	}
	if err := opts.Windows.Validate(); err != nil {
		return nil, fmt.Errorf("invalid windows: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{vocab: v, opts: opts, logger: logger}, nil
}

// Vocabulary returns the engine's vocabulary.
func (e *Engine) Vocabulary() *vocab.Vocabulary {
	return e.vocab
}

// Derive turns a normalized scene into an encoded label.
//
// Returns a *scene.SkipError when the scene fails the coverage check (or the
// ambiguity check in strict mode). Returns a *vocab.SymbolError or
// *InvariantError for schema violations; callers must treat those as fatal.
func (e *Engine) Derive(seq scene.Sequence, attrs scene.Attributes) (*Label, error) {
	if err := CheckCoverage(seq, e.opts.Windows); err != nil {
		return nil, err
	}

	pairs := ConflictingPairs(seq)
	if len(pairs) > 1 {
		if e.opts.StrictOverlap {
			return nil, scene.Skip(scene.ReasonAmbiguousOverlap,
				"%d conflicting containment pairs", len(pairs))
		}
		e.logger.Warn("multiple conflicting containment pairs, using the first",
			"pairs", len(pairs),
			"main", pairs[0].Main,
			"sub", pairs[0].Sub,
		)
	}

	lbl := &Label{Conflicts: len(pairs)}
	if len(pairs) > 0 {
		ov := pairs[0]
		lbl.Overlap = &ov
	}

	tokens, err := Linearize(seq, attrs, lbl.Overlap)
	if err != nil {
		return nil, err
	}
	lbl.Tokens = tokens

	encoded, err := e.vocab.Encode(tokens)
	if err != nil {
		return nil, fmt.Errorf("encode label: %w", err)
	}
	if err := ValidateEncoded(encoded, e.vocab); err != nil {
		return nil, err
	}
	lbl.Encoded = encoded

	return lbl, nil
}
