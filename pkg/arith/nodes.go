package arith

import (
	"github.com/sandrolain/gotdop/pkg/asdl"
	"github.com/sandrolain/gotdop/pkg/token"
	"github.com/sandrolain/gotdop/pkg/types"
)

// Tags of the arith_expr variants, in schema order.
const (
	TagConst asdl.Tag = iota + 1
	TagVar
	TagUnary
	TagBinary
	TagAssign
	TagTernary
	TagFuncCall
	TagIndex
	TagSlice
	TagComma
)

// Expr is an arith_expr node. The set of implementations is closed.
type Expr interface {
	asdl.Variant
	String() string
	exprNode()
}

// Const is an integer literal.
type Const struct {
	I int
}

// Var is a variable reference.
type Var struct {
	Name string
}

// Unary is a prefix operator, or a postfix one when Op is
// token.PostIncrement or token.PostDecrement.
type Unary struct {
	Op    token.Kind
	Child Expr
}

// Binary is an infix operator.
type Binary struct {
	Op          token.Kind
	Left, Right Expr
}

// Assign is a plain or compound assignment. Target is a *Var or *Index.
type Assign struct {
	Op     token.Kind
	Target Expr
	Value  Expr
}

// Ternary is cond ? then : else.
type Ternary struct {
	Cond, Then, Else Expr
}

// FuncCall is name(args...).
type FuncCall struct {
	Name string
	Args []Expr
}

// Index is array[index].
type Index struct {
	Array, Index Expr
}

// Slice is array[begin:end]; End may be nil.
type Slice struct {
	Array, Begin, End Expr
}

// Comma is a comma-separated sequence. Nested commas are flattened, so
// Children never holds a *Comma produced by the parser.
type Comma struct {
	Children []Expr
}

// Constructors take every field, so a tree built through them is always fully
// assigned.

func NewConst(i int) *Const { return &Const{I: i} }

func NewVar(name string) *Var { return &Var{Name: name} }

func NewUnary(op token.Kind, child Expr) *Unary { return &Unary{Op: op, Child: child} }

func NewTernary(cond, then, els Expr) *Ternary { return &Ternary{Cond: cond, Then: then, Else: els} }

func NewFuncCall(name string, args ...Expr) *FuncCall { return &FuncCall{Name: name, Args: args} }

func NewIndex(array, index Expr) *Index { return &Index{Array: array, Index: index} }

func NewSlice(array, begin, end Expr) *Slice { return &Slice{Array: array, Begin: begin, End: end} }

func NewComma(children ...Expr) *Comma { return &Comma{Children: children} }

func NewBinary(op token.Kind, left, right Expr) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}

func NewAssign(op token.Kind, target, value Expr) *Assign {
	return &Assign{Op: op, Target: target, Value: value}
}

func (*Const) Tag() asdl.Tag    { return TagConst }
func (*Var) Tag() asdl.Tag      { return TagVar }
func (*Unary) Tag() asdl.Tag    { return TagUnary }
func (*Binary) Tag() asdl.Tag   { return TagBinary }
func (*Assign) Tag() asdl.Tag   { return TagAssign }
func (*Ternary) Tag() asdl.Tag  { return TagTernary }
func (*FuncCall) Tag() asdl.Tag { return TagFuncCall }
func (*Index) Tag() asdl.Tag    { return TagIndex }
func (*Slice) Tag() asdl.Tag    { return TagSlice }
func (*Comma) Tag() asdl.Tag    { return TagComma }

func (*Const) TypeName() string    { return "arith_expr.Const" }
func (*Var) TypeName() string      { return "arith_expr.Var" }
func (*Unary) TypeName() string    { return "arith_expr.Unary" }
func (*Binary) TypeName() string   { return "arith_expr.Binary" }
func (*Assign) TypeName() string   { return "arith_expr.Assign" }
func (*Ternary) TypeName() string  { return "arith_expr.Ternary" }
func (*FuncCall) TypeName() string { return "arith_expr.FuncCall" }
func (*Index) TypeName() string    { return "arith_expr.Index" }
func (*Slice) TypeName() string    { return "arith_expr.Slice" }
func (*Comma) TypeName() string    { return "arith_expr.Comma" }

func (n *Const) FieldValues() ([]any, error) { return []any{n.I}, nil }
func (n *Var) FieldValues() ([]any, error)   { return []any{n.Name}, nil }

func (n *Unary) FieldValues() ([]any, error) {
	if err := requiredOp(n, n.Op, unaryOps); err != nil {
		return nil, err
	}
	if err := required(n, field{"child", n.Child}); err != nil {
		return nil, err
	}
	return []any{n.Op, n.Child}, nil
}

func (n *Binary) FieldValues() ([]any, error) {
	if err := requiredOp(n, n.Op, binaryOps); err != nil {
		return nil, err
	}
	if err := required(n, field{"left", n.Left}, field{"right", n.Right}); err != nil {
		return nil, err
	}
	return []any{n.Op, n.Left, n.Right}, nil
}

func (n *Assign) FieldValues() ([]any, error) {
	if err := requiredOp(n, n.Op, assignOps); err != nil {
		return nil, err
	}
	if err := required(n, field{"target", n.Target}, field{"value", n.Value}); err != nil {
		return nil, err
	}
	return []any{n.Op, n.Target, n.Value}, nil
}

func (n *Ternary) FieldValues() ([]any, error) {
	if err := required(n, field{"cond", n.Cond}, field{"then", n.Then}, field{"else", n.Else}); err != nil {
		return nil, err
	}
	return []any{n.Cond, n.Then, n.Else}, nil
}

func (n *FuncCall) FieldValues() ([]any, error) {
	return []any{n.Name, n.Args}, nil
}

func (n *Index) FieldValues() ([]any, error) {
	if err := required(n, field{"array", n.Array}, field{"index", n.Index}); err != nil {
		return nil, err
	}
	return []any{n.Array, n.Index}, nil
}

func (n *Slice) FieldValues() ([]any, error) {
	if err := required(n, field{"array", n.Array}, field{"begin", n.Begin}); err != nil {
		return nil, err
	}
	var end any
	if n.End != nil {
		end = n.End
	}
	return []any{n.Array, n.Begin, end}, nil
}

func (n *Comma) FieldValues() ([]any, error) {
	return []any{n.Children}, nil
}

type field struct {
	name  string
	child Expr
}

// required fails if a non-optional child is missing.
func required(n Expr, fields ...field) error {
	for _, f := range fields {
		if f.child == nil {
			return types.Errorf(types.ErrFieldUnassigned, "%s is missing field %s", n.TypeName(), f.name)
		}
	}
	return nil
}

// Operators each node kind accepts in its op field.
var (
	unaryOps = opSet(token.Plus, token.Minus, token.Bang, token.Tilde,
		token.DPlus, token.DMinus, token.PostIncrement, token.PostDecrement)
	binaryOps = opSet(token.DStar, token.Star, token.Slash, token.Percent, token.Plus, token.Minus,
		token.DLess, token.DGreat, token.Less, token.Great, token.LessEqual, token.GreatEqual,
		token.NotEqual, token.DEqual, token.Amp, token.Caret, token.Pipe, token.DAmp, token.DPipe)
	assignOps = opSet(token.Equal, token.PlusEqual, token.MinusEqual, token.StarEqual, token.SlashEqual,
		token.PercentEqual, token.DLessEqual, token.DGreatEqual, token.AmpEqual, token.CaretEqual, token.PipeEqual)
)

func opSet(kinds ...token.Kind) [token.NumKinds]bool {
	var set [token.NumKinds]bool
	for _, k := range kinds {
		set[k] = true
	}
	return set
}

// requiredOp fails if op is unset, which reads as token.EOF, or is not one of
// the operators n accepts.
func requiredOp(n Expr, op token.Kind, valid [token.NumKinds]bool) error {
	if op == token.EOF {
		return types.Errorf(types.ErrFieldUnassigned, "%s is missing field op", n.TypeName())
	}
	if !op.Valid() || !valid[op] {
		return types.Errorf(types.ErrFieldType, "%s can't have operator %s", n.TypeName(), op)
	}
	return nil
}

func (*Const) exprNode()    {}
func (*Var) exprNode()      {}
func (*Unary) exprNode()    {}
func (*Binary) exprNode()   {}
func (*Assign) exprNode()   {}
func (*Ternary) exprNode()  {}
func (*FuncCall) exprNode() {}
func (*Index) exprNode()    {}
func (*Slice) exprNode()    {}
func (*Comma) exprNode()    {}
