package arith

import (
	"slices"
	"strconv"

	"github.com/sandrolain/gotdop/pkg/lexer"
	"github.com/sandrolain/gotdop/pkg/tdop"
	"github.com/sandrolain/gotdop/pkg/token"
	"github.com/sandrolain/gotdop/pkg/types"
)

// CommaPrec is the binding power of the comma operator. Function arguments
// are parsed just above it so that the comma separates them instead of
// building a sequence.
const CommaPrec = 1

type parser = tdop.Parser[Expr]

var spec = newSpec()

// Spec returns the operator table of shell arithmetic. It is shared and must
// not be modified.
func Spec() *tdop.Spec[Expr] {
	return spec
}

// newSpec builds the table. Compare with the C operator precedence table:
// http://en.cppreference.com/w/c/language/operator_precedence
func newSpec() *tdop.Spec[Expr] {
	s := tdop.NewSpec[Expr]()

	s.Left(31, leftIncDec, token.DPlus, token.DMinus)
	s.Left(31, leftFuncCall, token.LParen)
	s.Left(31, leftIndex, token.LBracket)

	// 29 binds to everything except function call, indexing and postfix ops
	s.Null(29, nullIncDec, token.DPlus, token.DMinus)
	s.Null(29, nullPrefixOp, token.Plus, token.Bang, token.Tilde, token.Minus)

	// 2 ** 3 ** 2 is 2 ** (3 ** 2)
	s.LeftRightAssoc(27, leftBinaryOp, token.DStar)
	s.Left(25, leftBinaryOp, token.Star, token.Slash, token.Percent)

	s.Left(23, leftBinaryOp, token.Plus, token.Minus)
	s.Left(21, leftBinaryOp, token.DLess, token.DGreat)
	s.Left(19, leftBinaryOp, token.Less, token.Great, token.LessEqual, token.GreatEqual)
	s.Left(17, leftBinaryOp, token.NotEqual, token.DEqual)

	s.Left(15, leftBinaryOp, token.Amp)
	s.Left(13, leftBinaryOp, token.Caret)
	s.Left(11, leftBinaryOp, token.Pipe)
	s.Left(9, leftBinaryOp, token.DAmp)
	s.Left(7, leftBinaryOp, token.DPipe)

	s.LeftRightAssoc(5, leftTernary, token.Question)

	// a = b = 2 is a = (b = 2)
	s.LeftRightAssoc(3, leftAssign,
		token.Equal,
		token.PlusEqual, token.MinusEqual, token.StarEqual, token.SlashEqual, token.PercentEqual,
		token.DLessEqual, token.DGreatEqual, token.AmpEqual, token.CaretEqual, token.PipeEqual)

	s.Left(CommaPrec, leftComma, token.Comma)

	// 0 doesn't bind until )
	s.Null(0, nullParen, token.LParen)

	// -1 is never used
	s.Null(-1, nullConstant, token.Name, token.Number)
	s.Null(-1, tdop.NullError[Expr], token.RParen, token.RBracket, token.Colon, token.EOF)

	return s
}

// Parse parses a complete arithmetic expression.
func Parse(src string) (Expr, error) {
	return ParseTokens(lexer.New(src))
}

// ParseTokens parses a complete expression from a token source. Tokens left
// after the expression are an error.
func ParseTokens(src token.Source) (Expr, error) {
	p := tdop.NewParser(spec, src)
	e, err := p.Parse()
	if err != nil {
		return nil, err
	}
	if err := p.Eat(token.EOF); err != nil {
		return nil, err
	}
	return e, nil
}

// Null denotations

func nullConstant(p *parser, t token.Token, bp int) (Expr, error) {
	if t.Kind == token.Name {
		return NewVar(t.Text), nil
	}
	i, err := strconv.Atoi(t.Text)
	if err != nil {
		return nil, types.Errorf(types.ErrUnexpectedToken, "invalid number %s", t.Text).
			WithToken(t.Text, t.Pos).WithCause(err)
	}
	return NewConst(i), nil
}

// nullParen parses arithmetic grouping.
func nullParen(p *parser, t token.Token, bp int) (Expr, error) {
	e, err := p.ParseUntil(bp)
	if err != nil {
		return nil, err
	}
	if err := p.Eat(token.RParen); err != nil {
		return nil, err
	}
	return e, nil
}

// nullPrefixOp parses a prefix operator. The high binding power makes
// !x && y mean (!x) && y.
func nullPrefixOp(p *parser, t token.Token, bp int) (Expr, error) {
	e, err := p.ParseUntil(bp)
	if err != nil {
		return nil, err
	}
	return NewUnary(t.Kind, e), nil
}

// nullIncDec parses ++x or ++x[1].
func nullIncDec(p *parser, t token.Token, bp int) (Expr, error) {
	e, err := p.ParseUntil(bp)
	if err != nil {
		return nil, err
	}
	if err := checkLvalue(e, t); err != nil {
		return nil, err
	}
	return NewUnary(t.Kind, e), nil
}

// Left denotations

// leftIncDec parses x++ and x--.
func leftIncDec(p *parser, t token.Token, left Expr, rbp int) (Expr, error) {
	if err := checkLvalue(left, t); err != nil {
		return nil, err
	}
	op := token.PostIncrement
	if t.Kind == token.DMinus {
		op = token.PostDecrement
	}
	return NewUnary(op, left), nil
}

// leftIndex parses f[x+1], and the slice f[1:4].
func leftIndex(p *parser, t token.Token, left Expr, rbp int) (Expr, error) {
	if _, ok := left.(*Var); !ok {
		return nil, types.Errorf(types.ErrNotIndexable, "%s can't be indexed", left).
			WithToken(t.Text, t.Pos)
	}
	index, err := p.ParseUntil(0)
	if err != nil {
		return nil, err
	}

	if !p.AtToken(token.Colon) {
		if err := p.Eat(token.RBracket); err != nil {
			return nil, err
		}
		return NewIndex(left, index), nil
	}

	p.Next()
	var end Expr
	if !p.AtToken(token.RBracket) {
		if end, err = p.ParseUntil(0); err != nil {
			return nil, err
		}
	}
	if err := p.Eat(token.RBracket); err != nil {
		return nil, err
	}
	return NewSlice(left, index, end), nil
}

// leftTernary parses a > 1 ? x : y.
func leftTernary(p *parser, t token.Token, left Expr, rbp int) (Expr, error) {
	then, err := p.ParseUntil(rbp)
	if err != nil {
		return nil, err
	}
	if err := p.Eat(token.Colon); err != nil {
		return nil, err
	}
	els, err := p.ParseUntil(rbp)
	if err != nil {
		return nil, err
	}
	return NewTernary(left, then, els), nil
}

// leftBinaryOp parses a normal binary operator like 1+2 or 2*3.
func leftBinaryOp(p *parser, t token.Token, left Expr, rbp int) (Expr, error) {
	right, err := p.ParseUntil(rbp)
	if err != nil {
		return nil, err
	}
	return NewBinary(t.Kind, left, right), nil
}

// leftAssign parses x += 1 or a[i] += 1.
func leftAssign(p *parser, t token.Token, left Expr, rbp int) (Expr, error) {
	if err := checkLvalue(left, t); err != nil {
		return nil, err
	}
	value, err := p.ParseUntil(rbp)
	if err != nil {
		return nil, err
	}
	return NewAssign(t.Kind, left, value), nil
}

// leftComma parses x, y. A sequence on the left is extended rather than
// nested, so 1, 2, 3 has three children.
func leftComma(p *parser, t token.Token, left Expr, rbp int) (Expr, error) {
	right, err := p.ParseUntil(rbp)
	if err != nil {
		return nil, err
	}
	if c, ok := left.(*Comma); ok {
		return NewComma(append(slices.Clip(c.Children), right)...), nil
	}
	return NewComma(left, right), nil
}

// leftFuncCall parses f(a, b). The comma separates arguments here, it does
// not build a sequence.
func leftFuncCall(p *parser, t token.Token, left Expr, rbp int) (Expr, error) {
	v, ok := left.(*Var)
	if !ok {
		return nil, types.Errorf(types.ErrNotCallable, "%s can't be called", left).
			WithToken(t.Text, t.Pos)
	}

	var args []Expr
	for !p.AtToken(token.RParen) {
		arg, err := p.ParseUntil(CommaPrec)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.AtToken(token.Comma) {
			break
		}
		p.Next()
	}
	if err := p.Eat(token.RParen); err != nil {
		return nil, err
	}
	return NewFuncCall(v.Name, args...), nil
}

// checkLvalue accepts the targets of assignment and increment: x and x[i].
func checkLvalue(e Expr, t token.Token) error {
	switch e.(type) {
	case *Var, *Index:
		return nil
	}
	return types.Errorf(types.ErrInvalidLvalue, "Can't assign to %s", e).
		WithToken(t.Text, t.Pos)
}
