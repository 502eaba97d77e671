package lang

import (
	"strconv"
	"unicode/utf8"
)

// Lexer scans the source text into tokens. It fails on the first
// unrecognized character.
type Lexer struct {
	src string
	pos int
}

// NewLexer returns a lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Tokenize scans the whole source. The returned slice can be parsed any
// number of times.
func Tokenize(src string) ([]Token, error) {
	lx := NewLexer(src)
	var tokens []Token
	for {
		tok, ok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// Next returns the next token. It returns false when the input is
// exhausted.
func (lx *Lexer) Next() (Token, bool, error) {
	lx.skipSpace()
	if lx.pos >= len(lx.src) {
		return Token{}, false, nil
	}

	ch := lx.src[lx.pos]
	switch {
	case ch == '|':
		tok := Token{Kind: Pipe, Offset: lx.pos, Text: "|"}
		lx.pos++
		return tok, true, nil
	case isLetter(ch):
		return lx.scanKeyword()
	case isDigit(ch) || ch == '.':
		return lx.scanNumber()
	}
	return Token{}, false, lx.errorAt(lx.pos, nil)
}

func (lx *Lexer) skipSpace() {
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case ' ', '\t', '\r', '\n':
			lx.pos++
		default:
			return
		}
	}
}

func (lx *Lexer) scanKeyword() (Token, bool, error) {
	start := lx.pos
	for lx.pos < len(lx.src) && isLetter(lx.src[lx.pos]) {
		lx.pos++
	}
	word := lx.src[start:lx.pos]
	kind, ok := keywords[word]
	if !ok {
		return Token{}, false, &Error{Kind: KindLex, Offset: start, Text: word}
	}
	return Token{Kind: kind, Offset: start, Text: word}, true, nil
}

// scanNumber accepts digits with an optional fraction: 440, 440.5, .5
func (lx *Lexer) scanNumber() (Token, bool, error) {
	start := lx.pos
	for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
		lx.pos++
	}
	if lx.pos < len(lx.src) && lx.src[lx.pos] == '.' {
		dot := lx.pos
		lx.pos++
		if lx.pos >= len(lx.src) || !isDigit(lx.src[lx.pos]) {
			return Token{}, false, lx.errorAt(dot, nil)
		}
		for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
			lx.pos++
		}
	}
	text := lx.src[start:lx.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, false, &Error{Kind: KindLex, Offset: start, Text: text, Err: err}
	}
	return Token{Kind: Number, Offset: start, Text: text, Value: v}, true, nil
}

// errorAt reports the rune at offset as unexpected.
func (lx *Lexer) errorAt(offset int, cause error) error {
	r, _ := utf8.DecodeRuneInString(lx.src[offset:])
	return &Error{Kind: KindLex, Offset: offset, Text: string(r), Err: cause}
}

func isLetter(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}
