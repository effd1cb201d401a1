package tdop

import (
	"github.com/sandrolain/gotdop/pkg/token"
	"github.com/sandrolain/gotdop/pkg/types"
)

// NullFunc parses a token that doesn't take anything on the left.
// bp is the binding power the token was registered with.
type NullFunc[N any] func(p *Parser[N], t token.Token, bp int) (N, error)

// LeftFunc parses a token that takes the expression left of it.
// rbp is the right binding power the token was registered with.
type LeftFunc[N any] func(p *Parser[N], t token.Token, left N, rbp int) (N, error)

// NullInfo is a row of the null table.
type NullInfo[N any] struct {
	Nud NullFunc[N]
	BP  int

	registered bool
}

// LeftInfo is a row of the left table.
type LeftInfo[N any] struct {
	Led LeftFunc[N]
	LBP int
	RBP int

	registered bool
}

// Spec is the operator table of a TDOP grammar.
//
// A Spec is populated once and must not be modified afterwards; from then on
// it may be shared by any number of parsers running concurrently.
type Spec[N any] struct {
	null [token.NumKinds]NullInfo[N]
	left [token.NumKinds]LeftInfo[N]
}

// NewSpec returns an empty operator table.
func NewSpec[N any]() *Spec[N] {
	return &Spec[N]{}
}

// Null registers kinds that don't take anything on the left.
//
// Examples: constant, prefix operator, error. Kinds without a left entry get
// one that reports infix use as an error.
func (s *Spec[N]) Null(bp int, nud NullFunc[N], kinds ...token.Kind) {
	for _, k := range kinds {
		s.null[k] = NullInfo[N]{Nud: nud, BP: bp, registered: true}
		if !s.left[k].registered {
			s.left[k] = LeftInfo[N]{Led: LeftError[N], registered: true}
		}
	}
}

func (s *Spec[N]) registerLed(lbp, rbp int, led LeftFunc[N], kinds []token.Kind) {
	for _, k := range kinds {
		if !s.null[k].registered {
			s.null[k] = NullInfo[N]{Nud: NullError[N], registered: true}
		}
		s.left[k] = LeftInfo[N]{Led: led, LBP: lbp, RBP: rbp, registered: true}
	}
}

// Left registers left associative infix or postfix kinds.
func (s *Spec[N]) Left(bp int, led LeftFunc[N], kinds ...token.Kind) {
	s.registerLed(bp, bp, led, kinds)
}

// LeftRightAssoc registers right associative infix kinds.
func (s *Spec[N]) LeftRightAssoc(bp int, led LeftFunc[N], kinds ...token.Kind) {
	s.registerLed(bp, bp-1, led, kinds)
}

// LookupNull returns the null entry for kind.
func (s *Spec[N]) LookupNull(kind token.Kind) (NullInfo[N], error) {
	if !kind.Valid() || !s.null[kind].registered {
		return NullInfo[N]{}, types.Errorf(types.ErrUnexpectedToken, "Unexpected token '%s'", kind)
	}
	return s.null[kind], nil
}

// LookupLeft returns the left entry for kind.
func (s *Spec[N]) LookupLeft(kind token.Kind) (LeftInfo[N], error) {
	if !kind.Valid() || !s.left[kind].registered {
		return LeftInfo[N]{}, types.Errorf(types.ErrUnexpectedToken, "Unexpected token '%s'", kind)
	}
	return s.left[kind], nil
}

// Default parsing functions give errors

// NullError reports t as misplaced in prefix position.
func NullError[N any](p *Parser[N], t token.Token, bp int) (N, error) {
	var zero N
	return zero, types.Errorf(types.ErrPrefixPosition, "%s can't be used in prefix position", describe(t)).
		WithToken(t.Text, t.Pos)
}

// LeftError reports t as misplaced in infix position.
func LeftError[N any](p *Parser[N], t token.Token, left N, rbp int) (N, error) {
	var zero N
	return zero, types.Errorf(types.ErrInfixPosition, "%s can't be used in infix position", describe(t)).
		WithToken(t.Text, t.Pos)
}

// describe renders a token for error messages.
func describe(t token.Token) string {
	if t.Text == "" {
		return t.Kind.String()
	}
	return "'" + t.Text + "'"
}
