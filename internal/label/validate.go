package label

import (
	"fmt"

	"github.com/roach88/labelgen/internal/vocab"
)

// GroupSize is the number of tokens emitted per event.
const GroupSize = 4

// InvariantError reports an encoded label that breaks the label shape:
// four tokens per event plus exactly one trailing terminal marker. It
// indicates an encoding bug upstream and is never skipped.
type InvariantError struct {
	Length  int
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("label invariant violated (length %d): %s", e.Length, e.Message)
}

// ValidateEncoded checks the shape of an encoded label.
func ValidateEncoded(encoded []int, v *vocab.Vocabulary) error {
	if len(encoded)%GroupSize != 1 {
		return &InvariantError{Length: len(encoded), Message: "length % 4 must be 1"}
	}
	if encoded[len(encoded)-1] != v.TerminalIndex() {
		return &InvariantError{Length: len(encoded), Message: "last token must be the terminal marker"}
	}
	return nil
}

// Groups splits a validated encoded label into its per-event groups,
// excluding the terminal marker. The groups alias encoded.
func Groups(encoded []int, v *vocab.Vocabulary) ([][]int, error) {
	if err := ValidateEncoded(encoded, v); err != nil {
		return nil, err
	}
	n := len(encoded) / GroupSize
	groups := make([][]int, n)
	for i := 0; i < n; i++ {
		groups[i] = encoded[i*GroupSize : (i+1)*GroupSize : (i+1)*GroupSize]
	}
	return groups, nil
}
