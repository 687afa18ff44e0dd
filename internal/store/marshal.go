package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/labelgen/internal/ir"
)

// marshalLabel converts an encoded label to canonical JSON TEXT for storage.
func marshalLabel(label []int) (string, error) {
	if label == nil {
		label = []int{}
	}
	data, err := ir.MarshalCanonical(label)
	if err != nil {
		return "", fmt.Errorf("marshal label: %w", err)
	}
	return string(data), nil
}

// unmarshalLabel parses label JSON TEXT. An empty array yields nil.
func unmarshalLabel(data string) ([]int, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var label []int
	if err := json.Unmarshal([]byte(data), &label); err != nil {
		return nil, fmt.Errorf("unmarshal label: %w", err)
	}
	return label, nil
}
