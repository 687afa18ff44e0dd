package harness

// Outcome is the observed result of one scene.
type Outcome struct {
	Scene   string   `json:"scene"`
	Status  string   `json:"status"` // "accepted" or "skipped"
	Reason  string   `json:"reason,omitempty"`
	Video   string   `json:"video,omitempty"`
	Tokens  []string `json:"tokens,omitempty"`
	Encoded []int    `json:"encoded,omitempty"`
	Split   string   `json:"split,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expectations and assertions match.
	Pass bool `json:"pass"`

	// RunID is the run id the scenario ran under.
	RunID string `json:"run_id"`

	// Outcomes holds one entry per scene, in scenario order.
	Outcomes []Outcome `json:"outcomes"`

	// Splits holds the lines of every split file, keyed by split name.
	Splits map[string][]string `json:"splits"`

	// HeldOut counts held-out records per rule.
	HeldOut map[string]int `json:"held_out,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []Outcome{},
		Splits:   make(map[string][]string),
		HeldOut:  make(map[string]int),
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// outcome returns the outcome of a scene, or nil.
func (r *Result) outcome(sceneName string) *Outcome {
	for i := range r.Outcomes {
		if r.Outcomes[i].Scene == sceneName {
			return &r.Outcomes[i]
		}
	}
	return nil
}
