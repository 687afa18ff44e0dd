package scene

// Event is a single movement performed by one object.
// Target is set only for contain events.
type Event struct {
	ObjectID string `json:"object_id"`
	Action   string `json:"action"`
	Target   string `json:"target,omitempty"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

// Sequence is a scene's events ordered by start frame. Events sharing a
// start frame keep the order in which they were flattened.
type Sequence []Event

// Attribute is the static description of one object.
type Attribute struct {
	InstanceID string `json:"instance_id"`
	Color      string `json:"color"`
	Material   string `json:"material"`
	Shape      string `json:"shape"`
}

// Attributes maps instance id to attribute.
type Attributes map[string]Attribute

// Objects returns the distinct object ids of the sequence in first-seen order.
func (s Sequence) Objects() []string {
	seen := make(map[string]bool, len(s))
	var out []string
	for _, e := range s {
		if !seen[e.ObjectID] {
			seen[e.ObjectID] = true
			out = append(out, e.ObjectID)
		}
	}
	return out
}
