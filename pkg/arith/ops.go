package arith

import (
	"context"
	"strconv"

	"github.com/sandrolain/gotdop/pkg/token"
	"github.com/sandrolain/gotdop/pkg/types"
)

// apply computes a binary operator. Overflow wraps around; division
// truncates towards zero.
func apply(op token.Kind, x, y int) (int, error) {
	switch op {
	case token.Plus:
		return x + y, nil
	case token.Minus:
		return x - y, nil
	case token.Star:
		return x * y, nil
	case token.Slash:
		if y == 0 {
			return 0, types.NewError(types.ErrDivisionByZero, "division by zero")
		}
		return x / y, nil
	case token.Percent:
		if y == 0 {
			return 0, types.NewError(types.ErrDivisionByZero, "division by zero")
		}
		return x % y, nil
	case token.DStar:
		if y < 0 {
			return 0, types.Errorf(types.ErrNegativeExponent, "exponent less than 0: %d", y)
		}
		return power(x, y), nil
	case token.DLess, token.DGreat:
		if y < 0 {
			return 0, types.Errorf(types.ErrNegativeShift, "negative shift count: %d", y)
		}
		if op == token.DLess {
			return x << uint(y), nil
		}
		return x >> uint(y), nil
	case token.Less:
		return boolInt(x < y), nil
	case token.Great:
		return boolInt(x > y), nil
	case token.LessEqual:
		return boolInt(x <= y), nil
	case token.GreatEqual:
		return boolInt(x >= y), nil
	case token.DEqual:
		return boolInt(x == y), nil
	case token.NotEqual:
		return boolInt(x != y), nil
	case token.Amp:
		return x & y, nil
	case token.Caret:
		return x ^ y, nil
	case token.Pipe:
		return x | y, nil
	case token.DAmp:
		return boolInt(x != 0 && y != 0), nil
	case token.DPipe:
		return boolInt(x != 0 || y != 0), nil
	}
	return 0, types.Errorf(types.ErrFieldType, "%s is not a binary operator", op)
}

// power computes x**y for y >= 0 by squaring.
func power(x, y int) int {
	result := 1
	for y > 0 {
		if y&1 == 1 {
			result *= x
		}
		x *= x
		y >>= 1
	}
	return result
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// builtins are available to every Evaluator.
var builtins = []FunctionDef{
	{Name: "abs", MinArgs: 1, MaxArgs: 1, Impl: func(_ context.Context, args []int) (int, error) {
		if args[0] < 0 {
			return -args[0], nil
		}
		return args[0], nil
	}},
	{Name: "min", MinArgs: 1, MaxArgs: -1, Impl: func(_ context.Context, args []int) (int, error) {
		m := args[0]
		for _, a := range args[1:] {
			m = min(m, a)
		}
		return m, nil
	}},
	{Name: "max", MinArgs: 1, MaxArgs: -1, Impl: func(_ context.Context, args []int) (int, error) {
		m := args[0]
		for _, a := range args[1:] {
			m = max(m, a)
		}
		return m, nil
	}},
}

func arity(fd *FunctionDef) string {
	switch {
	case fd.MaxArgs < 0:
		return "at least " + plural(fd.MinArgs, "argument")
	case fd.MinArgs == fd.MaxArgs:
		return plural(fd.MinArgs, "argument")
	default:
		return strconv.Itoa(fd.MinArgs) + " to " + plural(fd.MaxArgs, "argument")
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
