package label

import (
	"fmt"

	"github.com/roach88/labelgen/internal/scene"
	"github.com/roach88/labelgen/internal/vocab"
)

// Order returns the output order of a sequence of n events as a permutation
// of indices. Without an overlap it is the identity. With one, the main and
// sub positions are swapped if needed so that main comes first; every other
// event keeps its position.
func Order(n int, ov *Overlap) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if ov != nil && ov.Sub < ov.Main {
		order[ov.Main], order[ov.Sub] = order[ov.Sub], order[ov.Main]
	}
	return order
}

// Linearize emits four tokens per event (action, color, material, shape) in
// Order, followed by the terminal marker. With an overlap, the event placed
// at the later of the two pair positions is the sub event and emits the
// containing-relation symbol instead of its action.
func Linearize(seq scene.Sequence, attrs scene.Attributes, ov *Overlap) ([]string, error) {
	order := Order(len(seq), ov)
	subPos := -1
	if ov != nil {
		subPos = max(ov.Main, ov.Sub)
	}

	tokens := make([]string, 0, 4*len(seq)+1)
	for pos, idx := range order {
		e := seq[idx]
		a, ok := attrs[e.ObjectID]
		if !ok {
			return nil, fmt.Errorf("event %d: no attributes for object %q", idx, e.ObjectID)
		}
		action := e.Action
		if pos == subPos {
			action = vocab.Containing
		}
		tokens = append(tokens, action, a.Color, a.Material, a.Shape)
	}
	tokens = append(tokens, vocab.Terminal)
	return tokens, nil
}
