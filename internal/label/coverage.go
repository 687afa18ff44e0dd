package label

import (
	"fmt"

	"github.com/roach88/labelgen/internal/scene"
)

// Windows splits a scene of Frames frames into Count consecutive windows of
// equal size.
type Windows struct {
	Frames int
	Count  int
}

// DefaultWindows is three windows of thirty frames.
var DefaultWindows = Windows{Frames: 90, Count: 3}

// Validate checks that the windows are well formed.
func (w Windows) Validate() error {
	if w.Count <= 0 {
		return fmt.Errorf("window count must be positive, got %d", w.Count)
	}
	if w.Frames < w.Count {
		return fmt.Errorf("frames (%d) must be at least the window count (%d)", w.Frames, w.Count)
	}
	if w.Frames%w.Count != 0 {
		return fmt.Errorf("frames (%d) must divide evenly into %d windows", w.Frames, w.Count)
	}
	return nil
}

// Bounds returns the inclusive frame bounds of window i.
func (w Windows) Bounds(i int) (start, end int) {
	size := w.Frames / w.Count
	return i * size, (i + 1) * size
}

// CheckCoverage skips scenes with an empty window. An event covers a window
// when start <= windowEnd and end >= windowStart.
func CheckCoverage(seq scene.Sequence, w Windows) error {
	for i := 0; i < w.Count; i++ {
		start, end := w.Bounds(i)
		covered := false
		for _, e := range seq {
			if e.Start <= end && e.End >= start {
				covered = true
				break
			}
		}
		if !covered {
			return scene.Skip(scene.ReasonInsufficientCoverage,
				"window %d [%d,%d] has no events", i, start, end)
		}
	}
	return nil
}
