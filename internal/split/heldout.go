package split

import (
	"fmt"
	"strings"

	"github.com/roach88/labelgen/internal/label"
	"github.com/roach88/labelgen/internal/vocab"
)

// Combination is a held-out attribute/action combination. Empty fields
// match anything.
type Combination struct {
	Name     string `json:"name" yaml:"name"`
	Action   string `json:"action,omitempty" yaml:"action,omitempty"`
	Color    string `json:"color,omitempty" yaml:"color,omitempty"`
	Material string `json:"material,omitempty" yaml:"material,omitempty"`
	Shape    string `json:"shape,omitempty" yaml:"shape,omitempty"`
}

// String renders the combination as "action ∧ color ∧ ...".
func (c Combination) String() string {
	var parts []string
	for _, f := range []string{c.Action, c.Color, c.Material, c.Shape} {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ∧ ")
}

// Group is one decoded event group: action, color, material, shape.
type Group [label.GroupSize]string

// Predicate reports whether a group matches a held-out rule.
type Predicate func(Group) bool

// Rule is a named compiled predicate.
type Rule struct {
	Name  string
	Match Predicate
}

// Compile turns combinations into rules. Every non-empty field must be a
// vocabulary symbol of the matching category.
func Compile(combos []Combination, v *vocab.Vocabulary) ([]Rule, error) {
	rules := make([]Rule, 0, len(combos))
	for i, c := range combos {
		if c.Name == "" {
			return nil, fmt.Errorf("held_out[%d]: name is required", i)
		}
		fields := []struct {
			value string
			cat   vocab.Category
		}{
			{c.Action, vocab.CategoryAction},
			{c.Color, vocab.CategoryColor},
			{c.Material, vocab.CategoryMaterial},
			{c.Shape, vocab.CategoryShape},
		}
		set := 0
		for _, f := range fields {
			if f.value == "" {
				continue
			}
			set++
			if got := v.CategoryOf(f.value); got != f.cat && !(f.cat == vocab.CategoryAction && f.value == vocab.Containing) {
				return nil, fmt.Errorf("held_out[%d] %s: %q is not a %s", i, c.Name, f.value, f.cat)
			}
		}
		if set == 0 {
			return nil, fmt.Errorf("held_out[%d] %s: at least one field is required", i, c.Name)
		}
		rules = append(rules, Rule{Name: c.Name, Match: predicate(c)})
	}
	return rules, nil
}

func predicate(c Combination) Predicate {
	want := Group{c.Action, c.Color, c.Material, c.Shape}
	return func(g Group) bool {
		for i := range want {
			if want[i] != "" && want[i] != g[i] {
				return false
			}
		}
		return true
	}
}

// Matcher evaluates held-out rules against encoded labels.
type Matcher struct {
	vocab *vocab.Vocabulary
	rules []Rule
}

// NewMatcher creates a matcher over compiled rules.
func NewMatcher(v *vocab.Vocabulary, rules []Rule) *Matcher {
	return &Matcher{vocab: v, rules: rules}
}

// Match returns the name of the first rule matched by any group of the
// label. The scan stops at the first matching group.
func (m *Matcher) Match(encoded []int) (string, bool, error) {
	groups, err := label.Groups(encoded, m.vocab)
	if err != nil {
		return "", false, err
	}
	for _, ids := range groups {
		var g Group
		for i, id := range ids {
			sym, err := m.vocab.Symbol(id)
			if err != nil {
				return "", false, err
			}
			g[i] = sym
		}
		for _, r := range m.rules {
			if r.Match(g) {
				return r.Name, true, nil
			}
		}
	}
	return "", false, nil
}
