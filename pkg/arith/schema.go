package arith

import (
	_ "embed"
	"reflect"

	"github.com/pkg/errors"

	"github.com/sandrolain/gotdop/pkg/asdl"
	"github.com/sandrolain/gotdop/pkg/token"
)

//go:embed arith.yaml
var schemaYAML []byte

var schema = asdl.MustParseSchema(schemaYAML,
	asdl.WithAppType("id", reflect.TypeOf(token.Kind(0))))

// prototypes holds one value of every variant, in tag order.
var prototypes = []Expr{
	&Const{}, &Var{}, &Unary{}, &Binary{}, &Assign{},
	&Ternary{}, &FuncCall{}, &Index{}, &Slice{}, &Comma{},
}

func init() {
	if err := checkSchema(schema); err != nil {
		panic(err)
	}
}

// checkSchema verifies that the Go node types agree with the schema on names,
// tags and field counts.
func checkSchema(reg *asdl.Registry) error {
	sum, ok := reg.MustDescribe("arith_expr").(*asdl.SumDescriptor)
	if !ok {
		return errors.Errorf("arith_expr is not a sum type")
	}
	if len(sum.Variants) != len(prototypes) {
		return errors.Errorf("schema declares %d variants, package has %d", len(sum.Variants), len(prototypes))
	}
	for _, p := range prototypes {
		desc, ok := sum.VariantByTag(p.Tag())
		if !ok || desc.QualifiedName() != p.TypeName() {
			return errors.Errorf("tag %d: schema and %T disagree", p.Tag(), p)
		}
		n := reflect.TypeOf(p).Elem().NumField()
		if n != len(desc.Fields) {
			return errors.Errorf("%s: schema has %d fields, %T has %d", desc.QualifiedName(), len(desc.Fields), p, n)
		}
	}
	return nil
}

// Schema returns the registry describing arith_expr.
func Schema() *asdl.Registry {
	return schema
}
