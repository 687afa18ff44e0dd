package profile

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/labelgen/internal/ir"
	"github.com/roach88/labelgen/internal/label"
	"github.com/roach88/labelgen/internal/split"
	"github.com/roach88/labelgen/internal/vocab"
)

//go:embed schema.cue
var schemaSource string

//go:embed builtin/*.cue
var builtinFS embed.FS

// DefaultName is the built-in profile used when none is configured.
const DefaultName = "v1"

// Profile is a dataset profile: window layout, split strides and the
// held-out combinations.
type Profile struct {
	Name             string              `json:"name"`
	Frames           int                 `json:"frames"`
	Windows          int                 `json:"windows"`
	ValidationStride int                 `json:"validation_stride"`
	TestValStride    int                 `json:"test_val_stride"`
	StrictOverlap    bool                `json:"strict_overlap"`
	HeldOut          []split.Combination `json:"held_out"`
}

// ProfileError reports an invalid profile, with a source position when the
// problem was found by CUE.
type ProfileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ProfileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads and validates a profile file. The file must define a
// top-level "profile" struct.
func Load(filename string) (*Profile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return Parse(data, filename)
}

// Parse compiles profile source against the embedded schema.
func Parse(data []byte, filename string) (*Profile, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("embedded schema: %w", err)
	}

	src := ctx.CompileBytes(data, cue.Filename(filename))
	if err := src.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	pv := src.LookupPath(cue.ParsePath("profile"))
	if !pv.Exists() {
		return nil, &ProfileError{
			Field:   "profile",
			Message: "profile is required",
			Pos:     src.Pos(),
		}
	}

	unified := schema.LookupPath(cue.ParsePath("#Profile")).Unify(pv)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var p Profile
	if err := unified.Decode(&p); err != nil {
		return nil, formatCUEError(err)
	}
	return &p, nil
}

// Builtin returns a built-in profile by name.
func Builtin(name string) (*Profile, error) {
	filename := path.Join("builtin", name+".cue")
	data, err := builtinFS.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("unknown built-in profile %q (available: %s)",
			name, strings.Join(BuiltinNames(), ", "))
	}
	return Parse(data, filename)
}

// BuiltinNames lists the built-in profile names in sorted order.
func BuiltinNames() []string {
	entries, _ := builtinFS.ReadDir("builtin")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".cue"))
	}
	sort.Strings(names)
	return names
}

// Resolve returns the built-in profile called ref, or loads ref as a file.
// An empty ref selects DefaultName.
func Resolve(ref string) (*Profile, error) {
	if ref == "" {
		ref = DefaultName
	}
	for _, name := range BuiltinNames() {
		if name == ref {
			return Builtin(name)
		}
	}
	return Load(ref)
}

// Validate checks the profile against a vocabulary: the windows must tile
// the frame range and every held-out field must be a symbol of its category.
func (p *Profile) Validate(v *vocab.Vocabulary) error {
	if err := p.LabelWindows().Validate(); err != nil {
		return &ProfileError{Field: "windows", Message: err.Error()}
	}
	if _, err := p.Rules(v); err != nil {
		return &ProfileError{Field: "held_out", Message: err.Error()}
	}
	seen := make(map[string]bool, len(p.HeldOut))
	for _, c := range p.HeldOut {
		if seen[c.Name] {
			return &ProfileError{Field: "held_out", Message: fmt.Sprintf("duplicate combination name %q", c.Name)}
		}
		seen[c.Name] = true
	}
	return nil
}

// LabelWindows returns the coverage windows of the profile.
func (p *Profile) LabelWindows() label.Windows {
	return label.Windows{Frames: p.Frames, Count: p.Windows}
}

// LabelOptions returns engine options for the profile.
func (p *Profile) LabelOptions() label.Options {
	return label.Options{Windows: p.LabelWindows(), StrictOverlap: p.StrictOverlap}
}

// SplitOptions returns partitioner options for the profile.
func (p *Profile) SplitOptions() split.Options {
	return split.Options{ValidationStride: p.ValidationStride, TestValStride: p.TestValStride}
}

// Rules compiles the held-out combinations.
func (p *Profile) Rules(v *vocab.Vocabulary) ([]split.Rule, error) {
	return split.Compile(p.HeldOut, v)
}

// Map returns the profile in canonical map form.
func (p *Profile) Map() map[string]any {
	heldOut := make([]any, len(p.HeldOut))
	for i, c := range p.HeldOut {
		m := map[string]any{"name": c.Name}
		for k, val := range map[string]string{
			"action":   c.Action,
			"color":    c.Color,
			"material": c.Material,
			"shape":    c.Shape,
		} {
			if val != "" {
				m[k] = val
			}
		}
		heldOut[i] = m
	}
	return map[string]any{
		"name":              p.Name,
		"frames":            p.Frames,
		"windows":           p.Windows,
		"validation_stride": p.ValidationStride,
		"test_val_stride":   p.TestValStride,
		"strict_overlap":    p.StrictOverlap,
		"held_out":          heldOut,
	}
}

// Hash returns the content hash of the profile.
func (p *Profile) Hash() (string, error) {
	return ir.ProfileHash(p.Map())
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &ProfileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
