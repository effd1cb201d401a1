// Package tdop implements a "Top Down Operator Precedence" (Pratt) parser.
//
// A grammar is described by a Spec: two tables keyed by token kind. The null
// table holds the behavior of a token that has nothing to its left (literals,
// prefix operators, grouping); the left table holds the behavior of a token
// that takes an expression on its left (infix and postfix operators, calls,
// indexing). Each entry carries binding powers that encode precedence and
// associativity.
//
// # Architecture
//
// The package consists of two components:
//   - Spec: the operator table, built once and then shared read-only
//   - Parser: the precedence-climbing driver over a token.Source
//
// Both are generic over the node type N built by the callbacks, so the same
// driver serves arithmetic, boolean and word-level grammars.
//
// # Example
//
//	spec := tdop.NewSpec[Expr]()
//	spec.Left(23, binary, token.Plus, token.Minus)
//	spec.Left(25, binary, token.Star, token.Slash)
//	spec.Null(-1, constant, token.Number)
//	spec.Null(-1, tdop.NullError[Expr], token.EOF)
//
//	p := tdop.NewParser(spec, lexer.New("1+2*3"))
//	tree, err := p.Parse()
//
// # Binding powers
//
// The driver keeps consuming infix tokens while their left binding power is
// strictly greater than the right binding power it was called with. Left
// associative operators register equal left and right powers; right
// associative ones register a right power one lower than the left, so a
// recursive call still accepts another operator of the same power.
package tdop
