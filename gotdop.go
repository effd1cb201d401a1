// Package gotdop parses and evaluates shell arithmetic with a Top Down
// Operator Precedence parser, producing typed syntax trees described by an
// ASDL-like schema.
//
// # Quick Start
//
//	// Simple evaluation
//	env := arith.NewEnv()
//	v, err := gotdop.Eval("x = 1 + 2 * 3", env)
//
//	// Parse once, evaluate many times
//	expr, err := gotdop.Compile("a[i] * 2")
//	fmt.Println(expr) // (* (get a i) 2)
//
//	// Configured compiler with a cache, a logger and metrics
//	c, err := gotdop.New(gotdop.DefaultConfig(), logger, prometheus.DefaultRegisterer)
//	v, err := c.Eval(ctx, "x += 1", env)
//
// # More Information
//
// For detailed documentation, see:
//   - Parser engine: github.com/sandrolain/gotdop/pkg/tdop
//   - Arithmetic grammar and evaluator: github.com/sandrolain/gotdop/pkg/arith
//   - Tree runtime: github.com/sandrolain/gotdop/pkg/asdl
//   - Printer: github.com/sandrolain/gotdop/pkg/format
//   - Errors: github.com/sandrolain/gotdop/pkg/types
package gotdop

import (
	"context"
	"fmt"
	"time"

	"github.com/sandrolain/gotdop/pkg/arith"
)

// Version returns the current version of gotdop.
func Version() string {
	return "v0.1.0-dev"
}

// Compile parses an arithmetic expression. The tree is immutable and safe for
// concurrent use.
//
// Example:
//
//	expr, err := gotdop.Compile("x[1] += 2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(expr) // (+= (get x 1) 2)
func Compile(src string) (arith.Expr, error) {
	return arith.Parse(src)
}

// MustCompile is like Compile but panics if the expression cannot be parsed.
// It simplifies safe initialization of global variables.
func MustCompile(src string) arith.Expr {
	expr, err := Compile(src)
	if err != nil {
		panic(fmt.Sprintf("gotdop: Compile(%q): %v", src, err))
	}
	return expr
}

// Eval is a convenience function that parses and evaluates an expression
// in a single call.
//
// For repeated evaluations of the same expression, use Compile or a Compiler.
func Eval(src string, env *arith.Env, opts ...arith.EvalOption) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return EvalWithContext(ctx, src, env, opts...)
}

// EvalWithContext evaluates an expression with a custom context.
func EvalWithContext(ctx context.Context, src string, env *arith.Env, opts ...arith.EvalOption) (int, error) {
	expr, err := Compile(src)
	if err != nil {
		return 0, err
	}
	return arith.NewEvaluator(opts...).Eval(ctx, expr, env)
}
