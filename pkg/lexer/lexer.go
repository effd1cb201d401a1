// Package lexer turns shell arithmetic text into a token stream that
// satisfies token.Source.
package lexer

import (
	"unicode/utf8"

	"github.com/sandrolain/gotdop/pkg/token"
)

const eof = -1

// Lexer converts an arithmetic expression into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
//
// Characters that start no known token are returned one at a time as
// token.Unknown; deciding whether they are an error is left to the parser.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input

	line      int // Line of the current position
	col       int // Column of the current position
	startLine int
	startCol  int
}

// New creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func New(input string) *Lexer {
	return &Lexer{
		input:     input,
		length:    len(input),
		line:      1,
		col:       1,
		startLine: 1,
		startCol:  1,
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns token.EOF for all subsequent calls.
func (l *Lexer) Next() token.Token {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.newToken(token.EOF)
	}

	if isDigit(ch) {
		l.acceptAll(isDigit)
		return l.newToken(token.Number)
	}

	if isNameStart(ch) {
		l.acceptAll(isNameChar)
		return l.newToken(token.Name)
	}

	if k, ok := l.scanOperator(ch); ok {
		return l.newToken(k)
	}

	return l.newToken(token.Unknown)
}

// Tokenize returns every token of input, up to and including the EOF token.
func Tokenize(input string) []token.Token {
	l := New(input)
	var tokens []token.Token
	for {
		t := l.Next()
		tokens = append(tokens, t)
		if t.Kind == token.EOF {
			return tokens
		}
	}
}

// scanOperator matches the longest operator starting with ch, which has
// already been consumed.
func (l *Lexer) scanOperator(ch rune) (token.Kind, bool) {
	if ch >= utf8.RuneSelf {
		return 0, false
	}
	rest := l.input[l.current:]
	for _, op := range operators[byte(ch)] {
		if len(rest) >= len(op.tail) && rest[:len(op.tail)] == op.tail {
			for range op.tail {
				l.nextRune()
			}
			return op.kind, true
		}
	}
	return 0, false
}

// operatorTail is an operator keyed by its first byte: tail holds the
// remaining bytes.
type operatorTail struct {
	tail string
	kind token.Kind
}

// operators lists, for every first byte, the operators starting with it,
// longest first.
var operators = [128][]operatorTail{
	'(': {{"", token.LParen}},
	')': {{"", token.RParen}},
	'[': {{"", token.LBracket}},
	']': {{"", token.RBracket}},
	',': {{"", token.Comma}},
	':': {{"", token.Colon}},
	'?': {{"", token.Question}},
	'~': {{"", token.Tilde}},
	'+': {{"+", token.DPlus}, {"=", token.PlusEqual}, {"", token.Plus}},
	'-': {{"-", token.DMinus}, {"=", token.MinusEqual}, {"", token.Minus}},
	'*': {{"*", token.DStar}, {"=", token.StarEqual}, {"", token.Star}},
	'/': {{"=", token.SlashEqual}, {"", token.Slash}},
	'%': {{"=", token.PercentEqual}, {"", token.Percent}},
	'!': {{"=", token.NotEqual}, {"", token.Bang}},
	'=': {{"=", token.DEqual}, {"", token.Equal}},
	'<': {{"<=", token.DLessEqual}, {"<", token.DLess}, {"=", token.LessEqual}, {"", token.Less}},
	'>': {{">=", token.DGreatEqual}, {">", token.DGreat}, {"=", token.GreatEqual}, {"", token.Great}},
	'&': {{"&", token.DAmp}, {"=", token.AmpEqual}, {"", token.Amp}},
	'|': {{"|", token.DPipe}, {"=", token.PipeEqual}, {"", token.Pipe}},
	'^': {{"=", token.CaretEqual}, {"", token.Caret}},
}

// Helper methods

func (l *Lexer) newToken(k token.Kind) token.Token {
	t := token.Token{
		Kind: k,
		Text: l.input[l.start:l.current],
		Pos:  token.Pos{Line: l.startLine, Col: l.startCol},
	}
	l.ignore()
	return t
}

func (l *Lexer) nextRune() rune {
	if l.current >= l.length {
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.current += w
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) peek() rune {
	if l.current >= l.length {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.current:])
	return r
}

func (l *Lexer) ignore() {
	l.start = l.current
	l.startLine = l.line
	l.startCol = l.col
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if r := l.peek(); r != eof && isValid(r) {
		l.nextRune()
		return true
	}
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNameStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isNameChar(r rune) bool {
	return isNameStart(r) || isDigit(r)
}
