package label

import "github.com/roach88/labelgen/internal/scene"

// Overlap identifies a conflicting event pair by sequence index.
// Main is the container's event, Sub the contained object's event.
type Overlap struct {
	Main int `json:"main"`
	Sub  int `json:"sub"`
}

// DetectOverlap returns the first conflicting containment pair of seq, in
// scan order (outer index ascending, then inner index ascending).
func DetectOverlap(seq scene.Sequence) (Overlap, bool) {
	pairs := containmentPairs(seq, 1)
	if len(pairs) == 0 {
		return Overlap{}, false
	}
	return pairs[0], true
}

// ConflictingPairs returns every conflicting containment pair of seq in scan
// order. Only the first one is used for labelling.
func ConflictingPairs(seq scene.Sequence) []Overlap {
	return containmentPairs(seq, 0)
}

// containmentPairs scans all unordered pairs sharing a start frame. A limit
// of zero means no limit.
func containmentPairs(seq scene.Sequence, limit int) []Overlap {
	var pairs []Overlap
	for i := 0; i < len(seq); i++ {
		for j := i + 1; j < len(seq); j++ {
			if seq[i].Start != seq[j].Start {
				continue
			}
			state := ContainmentAt(seq, seq[i].Start)
			switch {
			case state.Holds(seq[i].ObjectID, seq[j].ObjectID):
				pairs = append(pairs, Overlap{Main: i, Sub: j})
			case state.Holds(seq[j].ObjectID, seq[i].ObjectID):
				pairs = append(pairs, Overlap{Main: j, Sub: i})
			default:
				continue
			}
			if limit > 0 && len(pairs) >= limit {
				return pairs
			}
		}
	}
	return pairs
}
