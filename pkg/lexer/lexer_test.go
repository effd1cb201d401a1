package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gotdop/pkg/lexer"
	"github.com/sandrolain/gotdop/pkg/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestLexerKinds(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []token.Kind
	}{
		{
			name:     "empty",
			input:    "",
			expected: []token.Kind{token.EOF},
		},
		{
			name:     "whitespace only",
			input:    " \t\n\r\v",
			expected: []token.Kind{token.EOF},
		},
		{
			name:     "binary",
			input:    "1+2*3",
			expected: []token.Kind{token.Number, token.Plus, token.Number, token.Star, token.Number, token.EOF},
		},
		{
			name:     "longest match",
			input:    "a<<=b**c",
			expected: []token.Kind{token.Name, token.DLessEqual, token.Name, token.DStar, token.Name, token.EOF},
		},
		{
			name:     "postfix then binary",
			input:    "x--- y",
			expected: []token.Kind{token.Name, token.DMinus, token.Minus, token.Name, token.EOF},
		},
		{
			name:  "comparisons",
			input: "< <= > >= == != && || ! ~",
			expected: []token.Kind{
				token.Less, token.LessEqual, token.Great, token.GreatEqual, token.DEqual,
				token.NotEqual, token.DAmp, token.DPipe, token.Bang, token.Tilde, token.EOF,
			},
		},
		{
			name:  "compound assignment",
			input: "+= -= *= /= %= >>= &= ^= |= =",
			expected: []token.Kind{
				token.PlusEqual, token.MinusEqual, token.StarEqual, token.SlashEqual, token.PercentEqual,
				token.DGreatEqual, token.AmpEqual, token.CaretEqual, token.PipeEqual, token.Equal, token.EOF,
			},
		},
		{
			name:  "punctuation",
			input: "f(a[1:2], b ? c : d)",
			expected: []token.Kind{
				token.Name, token.LParen, token.Name, token.LBracket, token.Number, token.Colon,
				token.Number, token.RBracket, token.Comma, token.Name, token.Question, token.Name,
				token.Colon, token.Name, token.RParen, token.EOF,
			},
		},
		{
			name:     "unknown characters",
			input:    "{x}",
			expected: []token.Kind{token.Unknown, token.Name, token.Unknown, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, kinds(lexer.Tokenize(tt.input)))
		})
	}
}

func TestLexerText(t *testing.T) {
	tokens := lexer.Tokenize("foo_1 += 42")
	require.Len(t, tokens, 4)
	assert.Equal(t, "foo_1", tokens[0].Text)
	assert.Equal(t, "+=", tokens[1].Text)
	assert.Equal(t, "42", tokens[2].Text)
	assert.Equal(t, "", tokens[3].Text)
}

func TestLexerPositions(t *testing.T) {
	tokens := lexer.Tokenize("a +\n  bb")
	require.Len(t, tokens, 4)

	assert.Equal(t, token.Pos{Line: 1, Col: 1}, tokens[0].Pos)
	assert.Equal(t, token.Pos{Line: 1, Col: 3}, tokens[1].Pos)
	assert.Equal(t, token.Pos{Line: 2, Col: 3}, tokens[2].Pos)
	assert.Equal(t, token.Pos{Line: 2, Col: 5}, tokens[3].Pos)
}

func TestLexerEOFRepeats(t *testing.T) {
	l := lexer.New("x")
	require.Equal(t, token.Name, l.Next().Kind)
	for i := 0; i < 3; i++ {
		assert.Equal(t, token.EOF, l.Next().Kind)
	}
}
