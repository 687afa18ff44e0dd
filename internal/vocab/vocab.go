package vocab

import (
	"fmt"
)

// Reserved symbols.
const (
	Terminal   = "EOS"         // appended once to every label
	Containing = "_containing" // replaces the action of a contained object's event
)

// Action symbols as they appear in scene movement logs.
const (
	ActionNoOp      = "_no_op" // filtered out during normalization, never encoded
	ActionContain   = "_contain"
	ActionPickPlace = "_pick_place"
	ActionRotate    = "_rotate"
	ActionSlide     = "_slide"
)

// Category classifies a symbol.
type Category string

const (
	CategoryReserved Category = "reserved"
	CategoryAction   Category = "action"
	CategoryMaterial Category = "material"
	CategoryColor    Category = "color"
	CategoryShape    Category = "shape"
	CategoryUnknown  Category = ""
)

var (
	actions   = []string{ActionContain, ActionPickPlace, ActionRotate, ActionSlide}
	materials = []string{"metal", "rubber"}
	colors    = []string{"yellow", "cyan", "gold", "brown", "red", "gray", "purple", "blue", "green"}
	shapes    = []string{"sphere", "cube", "cylinder", "cone", "spl"}
)

// DefaultSymbols returns a copy of the standard symbol order.
// Index 0 is always the terminal marker.
func DefaultSymbols() []string {
	out := []string{Terminal, Containing}
	out = append(out, actions...)
	out = append(out, materials...)
	out = append(out, colors...)
	out = append(out, shapes...)
	return out
}

var defaultVocabulary = MustNew(DefaultSymbols())

// Default returns the process-wide vocabulary built from DefaultSymbols.
func Default() *Vocabulary {
	return defaultVocabulary
}

// Vocabulary is an immutable ordered symbol list.
type Vocabulary struct {
	symbols  []string
	index    map[string]int
	category map[string]Category
}

// New builds a vocabulary from an ordered symbol list.
// The list must contain the terminal marker and no duplicates.
func New(symbols []string) (*Vocabulary, error) {
	v := &Vocabulary{
		symbols:  make([]string, len(symbols)),
		index:    make(map[string]int, len(symbols)),
		category: make(map[string]Category, len(symbols)),
	}
	copy(v.symbols, symbols)

	for i, s := range v.symbols {
		if s == "" {
			return nil, fmt.Errorf("vocabulary: empty symbol at position %d", i)
		}
		if prev, dup := v.index[s]; dup {
			return nil, fmt.Errorf("vocabulary: duplicate symbol %q at positions %d and %d", s, prev, i)
		}
		v.index[s] = i
		v.category[s] = categorize(s)
	}
	if _, ok := v.index[Terminal]; !ok {
		return nil, fmt.Errorf("vocabulary: missing terminal symbol %q", Terminal)
	}
	if _, ok := v.index[Containing]; !ok {
		return nil, fmt.Errorf("vocabulary: missing containing symbol %q", Containing)
	}
	return v, nil
}

// MustNew is like New but panics on error.
// Use only for vocabularies known to be valid at compile time.
func MustNew(symbols []string) *Vocabulary {
	v, err := New(symbols)
	if err != nil {
		panic(err)
	}
	return v
}

func categorize(s string) Category {
	switch {
	case s == Terminal || s == Containing:
		return CategoryReserved
	case contains(actions, s):
		return CategoryAction
	case contains(materials, s):
		return CategoryMaterial
	case contains(colors, s):
		return CategoryColor
	case contains(shapes, s):
		return CategoryShape
	default:
		return CategoryUnknown
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// Len returns the number of symbols.
func (v *Vocabulary) Len() int {
	return len(v.symbols)
}

// Symbols returns a copy of the ordered symbol list.
func (v *Vocabulary) Symbols() []string {
	out := make([]string, len(v.symbols))
	copy(out, v.symbols)
	return out
}

// TerminalIndex returns the index of the terminal marker.
func (v *Vocabulary) TerminalIndex() int {
	return v.index[Terminal]
}

// Has reports whether sym is part of the vocabulary.
func (v *Vocabulary) Has(sym string) bool {
	_, ok := v.index[sym]
	return ok
}

// CategoryOf returns the category of sym, or CategoryUnknown.
func (v *Vocabulary) CategoryOf(sym string) Category {
	return v.category[sym]
}

// Index returns the position of sym.
func (v *Vocabulary) Index(sym string) (int, error) {
	i, ok := v.index[sym]
	if !ok {
		return 0, &SymbolError{Symbol: sym}
	}
	return i, nil
}

// Symbol returns the symbol at position i.
func (v *Vocabulary) Symbol(i int) (string, error) {
	if i < 0 || i >= len(v.symbols) {
		return "", &SymbolError{Index: i, ByIndex: true}
	}
	return v.symbols[i], nil
}

// Encode maps every token to its index. Any unknown token fails the whole
// encoding with a *SymbolError carrying the token position.
func (v *Vocabulary) Encode(tokens []string) ([]int, error) {
	out := make([]int, len(tokens))
	for pos, tok := range tokens {
		i, ok := v.index[tok]
		if !ok {
			return nil, &SymbolError{Symbol: tok, Position: pos}
		}
		out[pos] = i
	}
	return out, nil
}

// Decode maps every index back to its symbol.
func (v *Vocabulary) Decode(ids []int) ([]string, error) {
	out := make([]string, len(ids))
	for pos, i := range ids {
		if i < 0 || i >= len(v.symbols) {
			return nil, &SymbolError{Index: i, ByIndex: true, Position: pos}
		}
		out[pos] = v.symbols[i]
	}
	return out, nil
}

// SymbolError reports a symbol or index outside the vocabulary.
// It signals schema drift in the input data and is never a soft failure.
type SymbolError struct {
	Symbol   string
	Index    int
	ByIndex  bool
	Position int
}

func (e *SymbolError) Error() string {
	if e.ByIndex {
		return fmt.Sprintf("index %d at position %d is outside the vocabulary", e.Index, e.Position)
	}
	return fmt.Sprintf("symbol %q at position %d is not in the vocabulary", e.Symbol, e.Position)
}
