package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Record is a raw scene description as written by the renderer.
//
// Only the fields the label pipeline needs are decoded. Movement tuples are
// kept raw so that a malformed tuple skips the scene during normalization
// instead of failing the whole decode.
type Record struct {
	ImageFilename string     `json:"image_filename"`
	Objects       []Object   `json:"objects"`
	Movements     *Movements `json:"movements"`
}

// Object is one entry of the renderer's object list.
type Object struct {
	Instance string `json:"instance"`
	Color    string `json:"color"`
	Material string `json:"material"`
	Shape    string `json:"shape"`
}

// ObjectMoves is the movement list of a single object, in log order.
type ObjectMoves struct {
	ObjectID string
	Moves    []json.RawMessage
}

// Movements preserves the key order of the renderer's movement map.
// Tie-breaking between events with equal start frames depends on it.
type Movements struct {
	Objects []ObjectMoves
}

// UnmarshalJSON decodes a JSON object of object-id -> move list, keeping
// keys in document order.
func (m *Movements) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("movements: expected object, got %v", tok)
	}

	m.Objects = m.Objects[:0]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("movements: expected string key, got %v", keyTok)
		}

		var moves []json.RawMessage
		if err := dec.Decode(&moves); err != nil {
			return fmt.Errorf("movements[%q]: %w", key, err)
		}
		m.Objects = append(m.Objects, ObjectMoves{ObjectID: key, Moves: moves})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes movements as a JSON object in stored key order.
func (m Movements) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, obj := range m.Objects {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(obj.ObjectID)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		moves := obj.Moves
		if moves == nil {
			moves = []json.RawMessage{}
		}
		val, err := json.Marshal(moves)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseRecord decodes a scene record from JSON.
func ParseRecord(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	return &rec, nil
}

// LoadRecord reads and decodes a scene record file.
func LoadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	return ParseRecord(data)
}

// Discover returns the names of all *.json files in dir, sorted.
// Split positions depend on this order, so it must be stable across runs.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenes directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
