package lang

// Parser builds a Pipeline from tokens with one token of lookahead.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser returns a parser over tokens.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse tokenizes and parses src.
func Parse(src string) (Pipeline, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// Parse consumes all tokens. An empty stage, produced by a leading,
// trailing or doubled pipe, is filled with Silence.
func (p *Parser) Parse() (Pipeline, error) {
	var (
		pipeline Pipeline
		stage    Stage
	)
	for {
		tok, ok := p.next()
		if !ok {
			break
		}
		switch tok.Kind {
		case KwSin:
			sound, err := p.sine(tok)
			if err != nil {
				return nil, err
			}
			stage = append(stage, sound)
		case KwWhite:
			stage = append(stage, Sound{Kind: White})
		case KwBrown:
			stage = append(stage, Sound{Kind: Brown})
		case KwPink:
			stage = append(stage, Sound{Kind: Pink})
		case Pipe:
			pipeline = append(pipeline, closeStage(stage))
			stage = nil
		default:
			return nil, &Error{Kind: KindUnexpectedToken, Offset: tok.Offset, Text: tok.String()}
		}
	}
	return append(pipeline, closeStage(stage)), nil
}

// sine consumes the frequency that must follow 'sin'.
func (p *Parser) sine(kw Token) (Sound, error) {
	arg, ok := p.peek()
	if !ok || arg.Kind != Number {
		return Sound{}, &Error{Kind: KindMissingArgument, Offset: kw.Offset, Text: kw.String()}
	}
	p.pos++
	if arg.Value <= 0 {
		return Sound{}, &Error{Kind: KindInvalidArgument, Offset: arg.Offset, Text: arg.String()}
	}
	return Sound{Kind: Sine, Frequency: arg.Value}, nil
}

func (p *Parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) next() (Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func closeStage(s Stage) Stage {
	if len(s) == 0 {
		return Stage{{Kind: Silence}}
	}
	return s
}
