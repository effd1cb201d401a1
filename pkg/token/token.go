// Package token defines the token kinds and the token source contract
// consumed by the TDOP parser.
package token

import (
	"fmt"

	"github.com/sandrolain/gotdop/pkg/types"
)

// Kind represents the type of a lexical token.
type Kind uint8

const (
	// Special tokens
	EOF Kind = iota
	Unknown

	// Literals
	Name   // x, foo_1
	Number // 42

	// Grouping symbols
	LParen   // (
	RParen   // )
	LBracket // [
	RBracket // ]

	// Basic symbols
	Comma    // ,
	Colon    // :
	Question // ?

	// Arithmetic operators
	Plus    // +
	Minus   // -
	Star    // *
	Slash   // /
	Percent // %
	DStar   // **
	DPlus   // ++
	DMinus  // --

	// Unary operators
	Bang  // !
	Tilde // ~

	// Shift and comparison operators
	DLess      // <<
	DGreat     // >>
	Less       // <
	Great      // >
	LessEqual  // <=
	GreatEqual // >=
	NotEqual   // !=
	DEqual     // ==

	// Bitwise and logical operators
	Amp   // &
	Caret // ^
	Pipe  // |
	DAmp  // &&
	DPipe // ||

	// Assignment operators
	Equal        // =
	PlusEqual    // +=
	MinusEqual   // -=
	StarEqual    // *=
	SlashEqual   // /=
	PercentEqual // %=
	DLessEqual   // <<=
	DGreatEqual  // >>=
	AmpEqual     // &=
	CaretEqual   // ^=
	PipeEqual    // |=

	// Node ids: never produced by a lexer, only used to tag tree nodes.
	PostIncrement // post++
	PostDecrement // post--

	// NumKinds is the number of kinds; operator tables are sized by it.
	NumKinds
)

var kindNames = [NumKinds]string{
	EOF:           "(eof)",
	Unknown:       "(unknown)",
	Name:          "(name)",
	Number:        "(number)",
	LParen:        "(",
	RParen:        ")",
	LBracket:      "[",
	RBracket:      "]",
	Comma:         ",",
	Colon:         ":",
	Question:      "?",
	Plus:          "+",
	Minus:         "-",
	Star:          "*",
	Slash:         "/",
	Percent:       "%",
	DStar:         "**",
	DPlus:         "++",
	DMinus:        "--",
	Bang:          "!",
	Tilde:         "~",
	DLess:         "<<",
	DGreat:        ">>",
	Less:          "<",
	Great:         ">",
	LessEqual:     "<=",
	GreatEqual:    ">=",
	NotEqual:      "!=",
	DEqual:        "==",
	Amp:           "&",
	Caret:         "^",
	Pipe:          "|",
	DAmp:          "&&",
	DPipe:         "||",
	Equal:         "=",
	PlusEqual:     "+=",
	MinusEqual:    "-=",
	StarEqual:     "*=",
	SlashEqual:    "/=",
	PercentEqual:  "%=",
	DLessEqual:    "<<=",
	DGreatEqual:   ">>=",
	AmpEqual:      "&=",
	CaretEqual:    "^=",
	PipeEqual:     "|=",
	PostIncrement: "post++",
	PostDecrement: "post--",
}

// String returns the operator text of the kind, or a parenthesized class
// name for literal and special kinds.
func (k Kind) String() string {
	if k < NumKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("(kind %d)", uint8(k))
}

// Valid reports whether k is a declared kind.
func (k Kind) Valid() bool {
	return k < NumKinds
}

// Pos is an optional 1-based line/column location.
type Pos = types.Position

// Token represents a lexical token. Tokens are immutable once produced.
type Token struct {
	Kind Kind
	Text string
	Pos  Pos
}

func (t Token) String() string {
	switch t.Kind {
	case Name, Number, Unknown:
		return fmt.Sprintf("<Token %s %s>", t.Kind, t.Text)
	default:
		return fmt.Sprintf("<Token %s>", t.Kind)
	}
}

// Source produces tokens one at a time. Once the input is exhausted Next
// returns an EOF token on every call.
type Source interface {
	Next() Token
}

// SliceSource serves a pre-built token slice.
type SliceSource struct {
	tokens []Token
	pos    int
}

// NewSliceSource returns a Source over tokens. A trailing EOF is implied.
func NewSliceSource(tokens ...Token) *SliceSource {
	return &SliceSource{tokens: tokens}
}

// Next implements Source.
func (s *SliceSource) Next() Token {
	if s.pos >= len(s.tokens) {
		return Token{Kind: EOF}
	}
	t := s.tokens[s.pos]
	s.pos++
	return t
}
