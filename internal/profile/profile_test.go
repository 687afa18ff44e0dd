package profile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/labelgen/internal/label"
	"github.com/roach88/labelgen/internal/split"
	"github.com/roach88/labelgen/internal/vocab"
)

func TestBuiltinV1(t *testing.T) {
	p, err := Builtin("v1")
	require.NoError(t, err)

	assert.Equal(t, "v1", p.Name)
	assert.Equal(t, label.DefaultWindows, p.LabelWindows())
	assert.Equal(t, split.DefaultOptions, p.SplitOptions())
	assert.False(t, p.StrictOverlap)
	require.Len(t, p.HeldOut, 5)
	assert.Equal(t, split.Combination{Name: "slide_red", Action: "_slide", Color: "red"}, p.HeldOut[2])
	assert.NoError(t, p.Validate(vocab.Default()))
}

func TestBuiltinV2DiffersOnlyInStride(t *testing.T) {
	v1, err := Builtin("v1")
	require.NoError(t, err)
	v2, err := Builtin("v2")
	require.NoError(t, err)

	assert.Equal(t, 5, v2.ValidationStride)
	assert.Equal(t, v1.HeldOut, v2.HeldOut)
	assert.Equal(t, v1.TestValStride, v2.TestValStride)

	h1, err := v1.Hash()
	require.NoError(t, err)
	h2, err := v2.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestBuiltinUnknown(t *testing.T) {
	_, err := Builtin("v9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "v1, v2")
	assert.Equal(t, []string{"v1", "v2"}, BuiltinNames())
}

func TestLoadCustom(t *testing.T) {
	p, err := Load("testdata/custom.cue")
	require.NoError(t, err)

	assert.Equal(t, "custom", p.Name)
	assert.Equal(t, label.Windows{Frames: 120, Count: 4}, p.LabelWindows())
	assert.Equal(t, 3, p.ValidationStride, "default applies")
	assert.Equal(t, 4, p.TestValStride, "default applies")
	assert.True(t, p.LabelOptions().StrictOverlap)
	assert.NoError(t, p.Validate(vocab.Default()))
}

func TestLoadRejectsUnknownField(t *testing.T) {
	_, err := Load("testdata/unknown_field.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "windoes")
}

func TestLoadMissingProfile(t *testing.T) {
	_, err := Parse([]byte(`other: 1`), "x.cue")
	var perr *ProfileError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "profile", perr.Field)
}

func TestParseRejectsBadValues(t *testing.T) {
	_, err := Parse([]byte(`profile: {name: "x", frames: -1}`), "x.cue")
	assert.Error(t, err)

	_, err = Parse([]byte(`profile: {name: ""}`), "x.cue")
	assert.Error(t, err)

	_, err = Parse([]byte(`profile: {`), "x.cue")
	assert.Error(t, err)

	_, err = Load("testdata/missing.cue")
	assert.Error(t, err)
}

func TestValidateBadSymbol(t *testing.T) {
	p, err := Load("testdata/bad_symbol.cue")
	require.NoError(t, err, "schema accepts any string; symbols are checked against the vocabulary")

	err = p.Validate(vocab.Default())
	var perr *ProfileError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "held_out", perr.Field)
}

func TestValidateWindowsAndDuplicates(t *testing.T) {
	p, err := Parse([]byte(`profile: {name: "x", frames: 100, windows: 3}`), "x.cue")
	require.NoError(t, err)
	assert.Error(t, p.Validate(vocab.Default()))

	p, err = Parse([]byte(`profile: {name: "x", held_out: [{name: "a", color: "red"}, {name: "a", shape: "cube"}]}`), "x.cue")
	require.NoError(t, err)
	err = p.Validate(vocab.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestResolve(t *testing.T) {
	p, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultName, p.Name)

	p, err = Resolve("testdata/custom.cue")
	require.NoError(t, err)
	assert.Equal(t, "custom", p.Name)
}

func TestMapIsHashable(t *testing.T) {
	p, err := Builtin("v1")
	require.NoError(t, err)

	m := p.Map()
	assert.Equal(t, 90, m["frames"])
	heldOut := m["held_out"].([]any)
	assert.Equal(t, map[string]any{"name": "gray_cube", "color": "gray", "shape": "cube"}, heldOut[0])

	h1, err := p.Hash()
	require.NoError(t, err)
	h2, err := p.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestParseEnv(t *testing.T) {
	t.Setenv("LABELGEN_SCENES_DIR", "/data/scenes")
	t.Setenv("LABELGEN_PROFILE", "v2")

	e, err := ParseEnv()
	require.NoError(t, err)
	assert.Equal(t, "/data/scenes", e.ScenesDir)
	assert.Equal(t, "v2", e.Profile)
	assert.Empty(t, e.DB)
}
