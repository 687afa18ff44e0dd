package scene

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/labelgen/internal/vocab"
)

// Normalize flattens a scene record into an event sequence and an attribute
// table.
//
// Events are flattened in movement-map document order (object order, then
// per-object log order), no-op events are dropped, and the result is stably
// sorted by start frame. The record is never modified.
//
// Any structural problem returns a *SkipError; the caller skips the scene and
// continues the batch.
func Normalize(rec *Record) (Sequence, Attributes, error) {
	if rec == nil {
		return nil, nil, Skip(ReasonMissingField, "scene record is empty")
	}
	if rec.Objects == nil {
		return nil, nil, Skip(ReasonMissingField, "objects is required")
	}
	if rec.Movements == nil {
		return nil, nil, Skip(ReasonMissingField, "movements is required")
	}

	attrs, err := buildAttributes(rec.Objects)
	if err != nil {
		return nil, nil, err
	}

	var seq Sequence
	for _, obj := range rec.Movements.Objects {
		objectID := nfc(obj.ObjectID)
		if _, ok := attrs[objectID]; !ok {
			return nil, nil, Skip(ReasonMalformedMove, "movements reference unknown object %q", objectID)
		}
		for i, raw := range obj.Moves {
			ev, noop, err := parseMove(objectID, raw)
			if err != nil {
				return nil, nil, Skip(ReasonMalformedMove, "movements[%q][%d]: %v", objectID, i, err)
			}
			if noop {
				continue
			}
			seq = append(seq, ev)
		}
	}

	sort.SliceStable(seq, func(i, j int) bool {
		return seq[i].Start < seq[j].Start
	})

	return seq, attrs, nil
}

func buildAttributes(objects []Object) (Attributes, error) {
	attrs := make(Attributes, len(objects))
	for i, obj := range objects {
		a := Attribute{
			InstanceID: nfc(obj.Instance),
			Color:      nfc(obj.Color),
			Material:   nfc(obj.Material),
			Shape:      nfc(obj.Shape),
		}
		switch {
		case a.InstanceID == "":
			return nil, Skip(ReasonMissingField, "objects[%d].instance is required", i)
		case a.Color == "":
			return nil, Skip(ReasonMissingField, "objects[%d].color is required", i)
		case a.Material == "":
			return nil, Skip(ReasonMissingField, "objects[%d].material is required", i)
		case a.Shape == "":
			return nil, Skip(ReasonMissingField, "objects[%d].shape is required", i)
		}
		if _, dup := attrs[a.InstanceID]; dup {
			return nil, Skip(ReasonMalformedMove, "objects[%d]: duplicate instance %q", i, a.InstanceID)
		}
		attrs[a.InstanceID] = a
	}
	return attrs, nil
}

// parseMove decodes one [action, target|null, start, end] tuple.
// The second return value reports a no-op event.
func parseMove(objectID string, raw json.RawMessage) (Event, bool, error) {
	var tuple []json.RawMessage
	if err := json.Unmarshal(raw, &tuple); err != nil {
		return Event{}, false, fmt.Errorf("expected a tuple: %w", err)
	}
	if len(tuple) != 4 {
		return Event{}, false, fmt.Errorf("expected 4 elements, got %d", len(tuple))
	}

	var action string
	if err := json.Unmarshal(tuple[0], &action); err != nil {
		return Event{}, false, fmt.Errorf("action: %w", err)
	}
	action = nfc(action)
	if action == vocab.ActionNoOp {
		return Event{}, true, nil
	}

	var target *string
	if err := json.Unmarshal(tuple[1], &target); err != nil {
		return Event{}, false, fmt.Errorf("target: %w", err)
	}

	start, err := parseFrame(tuple[2])
	if err != nil {
		return Event{}, false, fmt.Errorf("start frame: %w", err)
	}
	end, err := parseFrame(tuple[3])
	if err != nil {
		return Event{}, false, fmt.Errorf("end frame: %w", err)
	}
	if end < start {
		return Event{}, false, fmt.Errorf("end frame %d precedes start frame %d", end, start)
	}

	ev := Event{ObjectID: objectID, Action: action, Start: start, End: end}
	if action == vocab.ActionContain {
		if target == nil || *target == "" {
			return Event{}, false, fmt.Errorf("contain requires a target")
		}
		ev.Target = nfc(*target)
	}
	return ev, false, nil
}

func parseFrame(raw json.RawMessage) (int, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	if i, err := n.Int64(); err == nil {
		if i < 0 {
			return 0, fmt.Errorf("negative frame %d", i)
		}
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < 0 {
		return 0, fmt.Errorf("frame %v is not a non-negative integer", f)
	}
	return int(f), nil
}

func nfc(s string) string {
	return norm.NFC.String(s)
}
