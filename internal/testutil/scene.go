package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/labelgen/internal/scene"
)

// SceneBuilder assembles scene records for tests.
//
// Objects and movement lists keep insertion order, so tests control the
// flatten order that tie-breaking depends on:
//
//	rec := testutil.NewScene("CATER_000001.avi").
//		Object("Cone_0", "red", "metal", "cone").
//		Move("Cone_0", "_slide", "", 0, 30).
//		Record()
type SceneBuilder struct {
	rec scene.Record
}

// NewScene starts a scene with the given video file name.
func NewScene(video string) *SceneBuilder {
	return &SceneBuilder{rec: scene.Record{
		ImageFilename: video,
		Objects:       []scene.Object{},
		Movements:     &scene.Movements{},
	}}
}

// Object adds an object to the object list.
func (b *SceneBuilder) Object(instance, color, material, shape string) *SceneBuilder {
	b.rec.Objects = append(b.rec.Objects, scene.Object{
		Instance: instance,
		Color:    color,
		Material: material,
		Shape:    shape,
	})
	return b
}

// Move appends a movement tuple to objectID's list. An empty target is
// encoded as null. The object's list is created on first use, after any
// existing lists.
func (b *SceneBuilder) Move(objectID, action, target string, start, end int) *SceneBuilder {
	var t any
	if target != "" {
		t = target
	}
	return b.RawMove(objectID, []any{action, t, start, end})
}

// RawMove appends an arbitrary JSON value as a movement entry, for
// malformed-input tests.
func (b *SceneBuilder) RawMove(objectID string, tuple any) *SceneBuilder {
	raw, err := json.Marshal(tuple)
	if err != nil {
		panic(err)
	}
	for i := range b.rec.Movements.Objects {
		if b.rec.Movements.Objects[i].ObjectID == objectID {
			b.rec.Movements.Objects[i].Moves = append(b.rec.Movements.Objects[i].Moves, raw)
			return b
		}
	}
	b.rec.Movements.Objects = append(b.rec.Movements.Objects, scene.ObjectMoves{
		ObjectID: objectID,
		Moves:    []json.RawMessage{raw},
	})
	return b
}

// Record returns the assembled record.
func (b *SceneBuilder) Record() *scene.Record {
	rec := b.rec
	return &rec
}

// JSON returns the record as the renderer would write it.
func (b *SceneBuilder) JSON() []byte {
	data, err := json.Marshal(b.rec)
	if err != nil {
		panic(err)
	}
	return data
}

// WriteFile writes the record to dir/name and returns the path.
func (b *SceneBuilder) WriteFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b.JSON(), 0644); err != nil {
		t.Fatalf("failed to write scene %s: %v", path, err)
	}
	return path
}

// CoveringScene returns a single-object builder whose pick-and-place events cover
// every window of a 90-frame, 3-window scene. Tests add their own objects
// and events on top.
func CoveringScene(video string) *SceneBuilder {
	return NewScene(video).
		Object("Filler_0", "gold", "rubber", "spl").
		Move("Filler_0", "_pick_place", "", 1, 20).
		Move("Filler_0", "_pick_place", "", 35, 55).
		Move("Filler_0", "_pick_place", "", 65, 85)
}
