package lang

import "strconv"

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// KwSin represents the 'sin' keyword. It must be followed by a Number.
	KwSin
	// KwWhite represents the 'white' keyword.
	KwWhite
	// KwBrown represents the 'brown' keyword.
	KwBrown
	// KwPink represents the 'pink' keyword.
	KwPink
	// Pipe separates stages.
	Pipe
	// Number is an integer or decimal literal.
	Number
)

var kindNames = [...]string{
	Invalid: "invalid",
	KwSin:   "sin",
	KwWhite: "white",
	KwBrown: "brown",
	KwPink:  "pink",
	Pipe:    "|",
	Number:  "number",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

var keywords = map[string]Kind{
	"sin":   KwSin,
	"white": KwWhite,
	"brown": KwBrown,
	"pink":  KwPink,
}

// Token represents a single source token with its location.
type Token struct {
	Kind   Kind
	Offset int     // byte offset of the first character
	Text   string  // source text of the token
	Value  float64 // parsed value of a Number
}

func (t Token) String() string {
	if t.Text != "" {
		return t.Text
	}
	return t.Kind.String()
}
