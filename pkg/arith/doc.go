// Package arith parses and evaluates shell arithmetic, the C-like integer
// expressions found in $(( )).
//
// Parsing is driven by the operator table returned by Spec; the result is a
// tree of arith_expr nodes whose shape is declared by the embedded schema
// (see Schema). Every node prints as a fully parenthesized prefix expression:
//
//	e, _ := arith.Parse("x = 1 + 2 * 3")
//	fmt.Println(e) // (= x (+ 1 (* 2 3)))
//
// An Evaluator computes the value of a tree against an Env of integer
// variables and arrays.
package arith
