package tdop

import (
	"github.com/sandrolain/gotdop/pkg/token"
	"github.com/sandrolain/gotdop/pkg/types"
)

// Parser is a recursive TDOP parser.
//
// Its only state is the current token and the source cursor: the Go call
// stack is the parse state. A Parser is single use and not safe for
// concurrent use; the Spec it reads is.
type Parser[N any] struct {
	spec   *Spec[N]
	source token.Source
	token  token.Token // current token
}

// NewParser creates a parser reading from source.
func NewParser[N any](spec *Spec[N], source token.Source) *Parser[N] {
	return &Parser[N]{
		spec:   spec,
		source: source,
		token:  token.Token{Kind: token.Unknown},
	}
}

// Current returns the token the parser is looking at.
func (p *Parser[N]) Current() token.Token {
	return p.token
}

// AtToken tests if we are looking at a token of the given kind.
func (p *Parser[N]) AtToken(kind token.Kind) bool {
	return p.token.Kind == kind
}

// Next moves to the next token.
func (p *Parser[N]) Next() {
	p.token = p.source.Next()
}

// Eat asserts the kind of the current token, then moves to the next token.
func (p *Parser[N]) Eat(kind token.Kind) error {
	if !p.AtToken(kind) {
		return types.Errorf(types.ErrExpectedToken, "expected %s, got %s", kind, describe(p.token)).
			WithToken(p.token.Text, p.token.Pos)
	}
	p.Next()
	return nil
}

// ParseUntil parses to the right, eating tokens until it encounters a token
// with binding power less than or equal to rbp.
func (p *Parser[N]) ParseUntil(rbp int) (N, error) {
	var zero N
	if p.AtToken(token.EOF) {
		return zero, types.NewError(types.ErrUnexpectedEnd, "Unexpected end of input").
			WithToken(p.token.Text, p.token.Pos)
	}

	t := p.token
	nullInfo, err := p.spec.LookupNull(t.Kind)
	if err != nil {
		return zero, unexpectedToken(t)
	}
	p.Next() // skip over the token, e.g. ! ~ + -

	node, err := nullInfo.Nud(p, t, nullInfo.BP)
	if err != nil {
		return zero, err
	}

	for {
		t = p.token
		leftInfo, err := p.spec.LookupLeft(t.Kind)
		if err != nil {
			return zero, unexpectedToken(t)
		}

		// If we see 1*2+  , rbp = 25 and lbp = 23, so stop.
		// If we see 1+2+  , rbp = 23 and lbp = 23, so stop.
		// If we see 1**2**, rbp = 26 and lbp = 27, so keep going.
		if rbp >= leftInfo.LBP {
			break
		}
		p.Next() // skip over the token, e.g. / *

		node, err = leftInfo.Led(p, t, node, leftInfo.RBP)
		if err != nil {
			return zero, err
		}
	}

	return node, nil
}

// Parse reads the first token and parses a whole expression.
// Tokens left over after the expression are not consumed.
func (p *Parser[N]) Parse() (N, error) {
	p.Next()
	return p.ParseUntil(0)
}

// unexpectedToken reports a kind missing from the operator table, naming the
// token text rather than its kind.
func unexpectedToken(t token.Token) error {
	return types.Errorf(types.ErrUnexpectedToken, "Unexpected token %s", describe(t)).
		WithToken(t.Text, t.Pos)
}
