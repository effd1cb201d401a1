package arith

import (
	"github.com/sandrolain/gotdop/pkg/asdl"
	"github.com/sandrolain/gotdop/pkg/format"
)

// abbrevHooks render arith_expr nodes as fully parenthesized prefix
// expressions: (+ 1 (* 2 3)), (get x 1), (call f a b).
var abbrevHooks = format.Hooks{
	"arith_expr.Unary": func(obj asdl.Obj, n *format.PrettyNode) format.Pretty {
		return sexpr(obj.(*Unary).Op.String(), n.Field("child"))
	},
	"arith_expr.Binary": func(obj asdl.Obj, n *format.PrettyNode) format.Pretty {
		return sexpr(obj.(*Binary).Op.String(), n.Field("left"), n.Field("right"))
	},
	"arith_expr.Assign": func(obj asdl.Obj, n *format.PrettyNode) format.Pretty {
		return sexpr(obj.(*Assign).Op.String(), n.Field("target"), n.Field("value"))
	},
	"arith_expr.Ternary": func(_ asdl.Obj, n *format.PrettyNode) format.Pretty {
		return sexpr("?", n.Field("cond"), n.Field("then"), n.Field("else"))
	},
	"arith_expr.FuncCall": func(_ asdl.Obj, n *format.PrettyNode) format.Pretty {
		return sexpr("call", append([]format.Pretty{n.Field("name")}, elements(n.Field("args"))...)...)
	},
	"arith_expr.Index": func(_ asdl.Obj, n *format.PrettyNode) format.Pretty {
		return sexpr("get", n.Field("array"), n.Field("index"))
	},
	"arith_expr.Slice": func(_ asdl.Obj, n *format.PrettyNode) format.Pretty {
		return sexpr("slice", n.Field("array"), n.Field("begin"), n.Field("end"))
	},
	"arith_expr.Comma": func(_ asdl.Obj, n *format.PrettyNode) format.Pretty {
		return sexpr(",", elements(n.Field("children"))...)
	},
}

// AbbrevHooks returns the hooks that make format.MakeAbbreviatedTree print
// the canonical form.
func AbbrevHooks() format.Hooks {
	return abbrevHooks
}

// sexpr builds (head args...), skipping omitted fields.
func sexpr(head string, args ...format.Pretty) *format.PrettyNode {
	n := &format.PrettyNode{NodeType: head, Left: "(", Right: ")", Abbrev: true}
	for _, a := range args {
		if a != nil {
			n.UnnamedFields = append(n.UnnamedFields, a)
		}
	}
	return n
}

// elements spreads an array field; an omitted (empty) array has none.
func elements(p format.Pretty) []format.Pretty {
	if arr, ok := p.(*format.PrettyArray); ok {
		return arr.Children
	}
	return nil
}

// SExpr returns the canonical text of e, e.g. (+ 1 (* 2 3)).
func SExpr(e Expr) (string, error) {
	tree, err := format.MakeAbbreviatedTree(schema, e, abbrevHooks)
	if err != nil {
		return "", err
	}
	return format.String(tree), nil
}

// PrettyTree returns the full form of e, with type and field names.
func PrettyTree(e Expr) (*format.PrettyNode, error) {
	return format.MakePrettyTree(schema, e)
}

func str(e Expr) string {
	s, err := SExpr(e)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return s
}

func (n *Const) String() string    { return str(n) }
func (n *Var) String() string      { return str(n) }
func (n *Unary) String() string    { return str(n) }
func (n *Binary) String() string   { return str(n) }
func (n *Assign) String() string   { return str(n) }
func (n *Ternary) String() string  { return str(n) }
func (n *FuncCall) String() string { return str(n) }
func (n *Index) String() string    { return str(n) }
func (n *Slice) String() string    { return str(n) }
func (n *Comma) String() string    { return str(n) }
