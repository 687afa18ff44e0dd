package label

import (
	"github.com/roach88/labelgen/internal/scene"
	"github.com/roach88/labelgen/internal/vocab"
)

// Containment maps each container object to the object it currently holds.
// An empty value means the object holds nothing.
type Containment map[string]string

// ContainmentAt replays seq up to and including frame.
//
// A contain event makes its object hold the target; a pick-and-place event
// empties it. The state is rebuilt on every call and never cached.
func ContainmentAt(seq scene.Sequence, frame int) Containment {
	state := make(Containment)
	for _, id := range seq.Objects() {
		state[id] = ""
	}
	for _, e := range seq {
		if e.Start > frame {
			break
		}
		switch e.Action {
		case vocab.ActionContain:
			state[e.ObjectID] = e.Target
		case vocab.ActionPickPlace:
			state[e.ObjectID] = ""
		}
	}
	return state
}

// Holds reports whether container currently holds object.
func (c Containment) Holds(container, object string) bool {
	return object != "" && c[container] == object
}
