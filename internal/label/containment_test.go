package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/labelgen/internal/scene"
)

func TestContainmentAtReplaysUpToFrame(t *testing.T) {
	seq := scene.Sequence{
		{ObjectID: "Cone_0", Action: "_contain", Target: "Cube_1", Start: 5, End: 20},
		{ObjectID: "Cube_1", Action: "_slide", Start: 10, End: 30},
		{ObjectID: "Cone_0", Action: "_pick_place", Start: 40, End: 50},
		{ObjectID: "Cone_0", Action: "_contain", Target: "Sphere_2", Start: 60, End: 70},
	}

	state := ContainmentAt(seq, 0)
	assert.Equal(t, Containment{"Cone_0": "", "Cube_1": ""}, state)

	state = ContainmentAt(seq, 5)
	assert.True(t, state.Holds("Cone_0", "Cube_1"), "events at the query frame are included")

	state = ContainmentAt(seq, 39)
	assert.True(t, state.Holds("Cone_0", "Cube_1"))

	state = ContainmentAt(seq, 40)
	assert.False(t, state.Holds("Cone_0", "Cube_1"), "pick-and-place empties the container")

	state = ContainmentAt(seq, 100)
	assert.True(t, state.Holds("Cone_0", "Sphere_2"))
	assert.False(t, state.Holds("Cube_1", ""))
}

func TestDetectOverlapFromEarlierContain(t *testing.T) {
	// The containment is established before the tie at frame 20.
	seq := scene.Sequence{
		{ObjectID: "Cone_0", Action: "_contain", Target: "Cube_1", Start: 5, End: 15},
		{ObjectID: "Cube_1", Action: "_rotate", Start: 20, End: 30},
		{ObjectID: "Cone_0", Action: "_slide", Start: 20, End: 40},
	}

	ov, ok := DetectOverlap(seq)
	require.True(t, ok)
	assert.Equal(t, Overlap{Main: 2, Sub: 1}, ov)
}

func TestDetectOverlapClearedByPickPlace(t *testing.T) {
	seq := scene.Sequence{
		{ObjectID: "Cone_0", Action: "_contain", Target: "Cube_1", Start: 5, End: 8},
		{ObjectID: "Cone_0", Action: "_pick_place", Start: 10, End: 20},
		{ObjectID: "Cube_1", Action: "_slide", Start: 10, End: 30},
	}

	_, ok := DetectOverlap(seq)
	assert.False(t, ok)
	assert.Empty(t, ConflictingPairs(seq))
}

func TestDetectOverlapIgnoresUnrelatedTies(t *testing.T) {
	seq := scene.Sequence{
		{ObjectID: "A", Action: "_slide", Start: 10, End: 20},
		{ObjectID: "B", Action: "_rotate", Start: 10, End: 20},
	}

	_, ok := DetectOverlap(seq)
	assert.False(t, ok)
}

func TestOrder(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 3}, Order(4, nil))
	assert.Equal(t, []int{0, 1, 2, 3}, Order(4, &Overlap{Main: 1, Sub: 2}))
	assert.Equal(t, []int{0, 2, 1, 3}, Order(4, &Overlap{Main: 2, Sub: 1}))
	assert.Equal(t, []int{3, 1, 2, 0}, Order(4, &Overlap{Main: 3, Sub: 0}))
	assert.Empty(t, Order(0, nil))
}

func TestLinearizeMissingAttributes(t *testing.T) {
	seq := scene.Sequence{{ObjectID: "Ghost", Action: "_slide", Start: 0, End: 90}}

	_, err := Linearize(seq, scene.Attributes{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ghost")
}

func TestWindowsBoundsAndCoverage(t *testing.T) {
	w := Windows{Frames: 90, Count: 3}
	require.NoError(t, w.Validate())

	start, end := w.Bounds(2)
	assert.Equal(t, 60, start)
	assert.Equal(t, 90, end)

	// An event ending exactly on a window start covers that window.
	seq := scene.Sequence{
		{ObjectID: "A", Action: "_slide", Start: 0, End: 30},
		{ObjectID: "A", Action: "_slide", Start: 30, End: 60},
	}
	assert.NoError(t, CheckCoverage(seq, w))

	seq = scene.Sequence{{ObjectID: "A", Action: "_slide", Start: 0, End: 29}}
	err := CheckCoverage(seq, w)
	assert.Equal(t, scene.ReasonInsufficientCoverage, scene.SkipReason(err))
	assert.Contains(t, err.Error(), "window 1")
}

func TestValidateEncoded(t *testing.T) {
	v := newTestEngine(t, false).Vocabulary()

	assert.NoError(t, ValidateEncoded([]int{4, 15, 7, 18, 0}, v))
	assert.NoError(t, ValidateEncoded([]int{0}, v))

	err := ValidateEncoded([]int{4, 15, 7, 18}, v)
	var invErr *InvariantError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, 4, invErr.Length)

	assert.Error(t, ValidateEncoded([]int{4, 15, 7, 18, 5}, v))
	assert.Error(t, ValidateEncoded(nil, v))

	groups, err := Groups([]int{4, 15, 7, 18, 5, 12, 6, 20, 0}, v)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{4, 15, 7, 18}, {5, 12, 6, 20}}, groups)
}
