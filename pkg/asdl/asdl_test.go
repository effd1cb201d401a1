package asdl_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gotdop/pkg/asdl"
	"github.com/sandrolain/gotdop/pkg/types"
)

type opID int

const demoSchema = `
module: demo
types:
  - name: expr
    sum:
      - name: Num
        fields: [{name: n, type: int}]
      - name: Add
        fields: [{name: left, type: expr}, {name: right, type: expr}]
      - name: Call
        fields:
          - {name: fn, type: string}
          - {name: args, type: "expr*"}
          - {name: where, type: "loc?"}
  - name: loc
    product: [{name: line, type: int}, {name: col, type: int}]
  - name: tok
    product: [{name: id, type: id}, {name: ok, type: bool}]
`

func loadDemo(t *testing.T) *asdl.Registry {
	t.Helper()
	reg, err := asdl.ParseSchema([]byte(demoSchema), asdl.WithAppType("id", reflect.TypeOf(opID(0))))
	require.NoError(t, err)
	return reg
}

func compound(t *testing.T, reg *asdl.Registry, name string) *asdl.CompoundDescriptor {
	t.Helper()
	c, err := reg.Compound(name)
	require.NoError(t, err)
	return c
}

func construct(t *testing.T, reg *asdl.Registry, name string, positional ...any) *asdl.Record {
	t.Helper()
	r, err := asdl.Construct(compound(t, reg, name), positional, nil)
	require.NoError(t, err)
	return r
}

func TestLoadSchema(t *testing.T) {
	reg, err := asdl.LoadSchema(strings.NewReader(demoSchema), asdl.WithAppType("id", reflect.TypeOf(opID(0))))
	require.NoError(t, err)

	assert.Equal(t, "demo", reg.Module())
	assert.Equal(t, []string{"expr", "loc", "tok"}, reg.Types())

	d, err := reg.Describe("expr")
	require.NoError(t, err)
	sum, ok := d.(*asdl.SumDescriptor)
	require.True(t, ok, "expr should be a sum, got %s", d)
	require.Len(t, sum.Variants, 3)

	for i, name := range []string{"Num", "Add", "Call"} {
		v, ok := sum.Variant(name)
		require.True(t, ok)
		assert.Equal(t, asdl.Tag(i+1), v.Tag)
		assert.Same(t, sum, v.Sum)
		assert.Equal(t, "expr."+name, v.QualifiedName())

		byTag, ok := sum.VariantByTag(asdl.Tag(i + 1))
		require.True(t, ok)
		assert.Same(t, v, byTag)
	}
	_, ok = sum.VariantByTag(0)
	assert.False(t, ok)
	_, ok = sum.VariantByTag(4)
	assert.False(t, ok)
}

func TestDescribeFields(t *testing.T) {
	reg := loadDemo(t)

	call := compound(t, reg, "expr.Call")
	assert.Equal(t, []string{"fn", "args", "where"}, call.FieldNames())
	assert.Same(t, asdl.StrType, call.Fields[0].Desc)
	assert.Equal(t, "<Array <Sum expr>>", call.Fields[1].Desc.String())

	// loc is declared after expr; the second pass resolves it.
	where, ok := call.Fields[2].Desc.(*asdl.MaybeDescriptor)
	require.True(t, ok)
	assert.Same(t, reg.MustDescribe("loc"), where.Of)

	loc := compound(t, reg, "loc")
	assert.Nil(t, loc.Sum)
	assert.Equal(t, asdl.Tag(0), loc.Tag)
	i, ok := loc.FieldIndex("col")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = loc.FieldIndex("nope")
	assert.False(t, ok)

	id, err := reg.Describe("id")
	require.NoError(t, err)
	assert.Equal(t, "<UserType id>", id.String())
}

func TestDescribeUnknown(t *testing.T) {
	reg := loadDemo(t)

	_, err := reg.Describe("nope")
	assert.Equal(t, types.ErrUnknownType, types.CodeOf(err))

	_, err = reg.Compound("expr")
	assert.Equal(t, types.ErrUnknownType, types.CodeOf(err))
	assert.Contains(t, err.Error(), "not a product type or variant")

	assert.Panics(t, func() { reg.MustDescribe("nope") })
}

func TestSchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		schema  string
		message string
	}{
		{
			name:    "unknown key",
			schema:  "modul: x\n",
			message: "decoding schema: yaml: unmarshal errors",
		},
		{
			name:    "malformed yaml",
			schema:  "types: [{name: a, product: [{name: x, type: int}\n",
			message: "decoding schema: yaml: line",
		},
		{
			name:    "unnamed type",
			schema:  "types:\n  - product: []\n",
			message: "type without a name",
		},
		{
			name:    "duplicate type",
			schema:  "types:\n  - name: a\n  - name: a\n",
			message: "type a is declared twice",
		},
		{
			name:    "builtin redeclared",
			schema:  "types:\n  - name: int\n",
			message: "type int is declared twice",
		},
		{
			name:    "product and sum",
			schema:  "types:\n  - name: a\n    product: [{name: x, type: int}]\n    sum: [{name: B}]\n",
			message: "both a product and a sum",
		},
		{
			name:    "duplicate variant",
			schema:  "types:\n  - name: a\n    sum: [{name: B}, {name: B}]\n",
			message: "variant a.B is declared twice",
		},
		{
			name:    "duplicate field",
			schema:  "types:\n  - name: a\n    product: [{name: x, type: int}, {name: x, type: int}]\n",
			message: "field x of a is declared twice",
		},
		{
			name:    "unknown field type",
			schema:  "types:\n  - name: a\n    product: [{name: x, type: b}]\n",
			message: `unknown type "b"`,
		},
		{
			name:    "nested modifiers",
			schema:  "types:\n  - name: a\n    product: [{name: x, type: \"a?*\"}]\n",
			message: `invalid type "a?"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := asdl.ParseSchema([]byte(tt.schema))
			require.Error(t, err)
			assert.True(t, types.IsClass(err, types.SchemaError), "got %v", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestConstruct(t *testing.T) {
	reg := loadDemo(t)
	loc := compound(t, reg, "loc")

	r, err := asdl.Construct(loc, []any{3}, map[string]any{"col": 7})
	require.NoError(t, err)
	assert.Equal(t, "loc", r.TypeName())
	assert.Equal(t, asdl.Tag(0), r.Tag())
	assert.Same(t, loc, r.Descriptor())

	v, err := r.Get("col")
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	values, err := r.FieldValues()
	require.NoError(t, err)
	assert.Equal(t, []any{3, 7}, values)
}

func TestConstructErrors(t *testing.T) {
	reg := loadDemo(t)
	loc := compound(t, reg, "loc")

	tests := []struct {
		name       string
		positional []any
		named      map[string]any
		code       types.ErrorCode
	}{
		{"too many positional", []any{1, 2, 3}, nil, types.ErrTooManyArgs},
		{"unknown name", nil, map[string]any{"row": 1}, types.ErrUnknownField},
		{"bound twice", []any{1}, map[string]any{"line": 2}, types.ErrDuplicateField},
		{"partially assigned", []any{1}, nil, types.ErrFieldUnassigned},
		{"wrong scalar", []any{"1", 2}, nil, types.ErrFieldType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := asdl.Construct(loc, tt.positional, tt.named)
			require.Error(t, err)
			assert.Equal(t, tt.code, types.CodeOf(err), "got %v", err)
		})
	}
}

func TestRecordUnassigned(t *testing.T) {
	reg := loadDemo(t)

	// A record with no fields bound is consistent, but has nothing to read.
	r, err := asdl.Construct(compound(t, reg, "loc"), nil, nil)
	require.NoError(t, err)
	assert.NoError(t, r.CheckFullyAssigned())

	_, err = r.Get("line")
	assert.Equal(t, types.ErrFieldUnassigned, types.CodeOf(err))
	_, err = r.FieldValues()
	assert.Equal(t, types.ErrFieldUnassigned, types.CodeOf(err))

	require.NoError(t, r.Set("line", 1))
	assert.True(t, r.IsAssigned("line"))
	assert.False(t, r.IsAssigned("col"))
	assert.False(t, r.IsAssigned("nope"))

	err = r.CheckFullyAssigned()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loc is missing fields col")

	_, err = r.Get("line")
	assert.Equal(t, types.ErrFieldUnassigned, types.CodeOf(err))
}

func TestRecordSeal(t *testing.T) {
	reg := loadDemo(t)
	r := asdl.NewRecord(compound(t, reg, "loc"))

	require.NoError(t, r.Set("line", 1))
	assert.Equal(t, types.ErrFieldUnassigned, types.CodeOf(r.Seal()))
	assert.False(t, r.Sealed())

	require.NoError(t, r.Set("col", 2))
	require.NoError(t, r.Seal())
	assert.True(t, r.Sealed())

	assert.Equal(t, types.ErrSealed, types.CodeOf(r.Set("col", 3)))
	v, err := r.Get("col")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestRecordSetChecksTypes(t *testing.T) {
	reg := loadDemo(t)

	add := asdl.NewRecord(compound(t, reg, "expr.Add"))
	assert.Equal(t, types.ErrFieldType, types.CodeOf(add.Set("left", 1)))
	assert.Equal(t, types.ErrFieldType, types.CodeOf(add.Set("left", construct(t, reg, "loc", 1, 2))))
	assert.Equal(t, types.ErrUnknownField, types.CodeOf(add.Set("middle", 1)))
	assert.NoError(t, add.Set("left", construct(t, reg, "expr.Num", 1)))

	tok := asdl.NewRecord(compound(t, reg, "tok"))
	assert.Equal(t, types.ErrFieldType, types.CodeOf(tok.Set("id", 3)))
	assert.NoError(t, tok.Set("id", opID(3)))
	assert.Equal(t, types.ErrFieldType, types.CodeOf(tok.Set("ok", "yes")))
	assert.NoError(t, tok.Set("ok", true))
}

func TestValidate(t *testing.T) {
	reg := loadDemo(t)

	one := construct(t, reg, "expr.Num", 1)
	two := construct(t, reg, "expr.Num", 2)
	sum := construct(t, reg, "expr.Add", one, two)
	call := construct(t, reg, "expr.Call", "f", []any{sum, one}, nil)
	located := construct(t, reg, "expr.Call", "g", nil, construct(t, reg, "loc", 1, 1))

	for _, obj := range []asdl.Obj{one, sum, call, located} {
		assert.NoError(t, asdl.Validate(reg, obj), obj.TypeName())
	}
}

func TestValidateNested(t *testing.T) {
	reg := loadDemo(t)

	// An unassigned record passes the shallow check in Set, but not Validate.
	empty := asdl.NewRecord(compound(t, reg, "expr.Num"))
	add := construct(t, reg, "expr.Add", empty, construct(t, reg, "expr.Num", 2))

	err := asdl.Validate(reg, add)
	require.Error(t, err)
	assert.Equal(t, types.ErrFieldType, types.CodeOf(err))
	assert.Contains(t, err.Error(), "field left of expr.Add: expr.Num is missing fields n")

	call := construct(t, reg, "expr.Call", "f", []any{add}, nil)
	err = asdl.Validate(reg, call)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element 0")
}

type wrongTag struct{}

func (wrongTag) TypeName() string            { return "expr.Num" }
func (wrongTag) Tag() asdl.Tag               { return 2 }
func (wrongTag) FieldValues() ([]any, error) { return []any{1}, nil }

type shortNum struct{}

func (shortNum) TypeName() string            { return "expr.Num" }
func (shortNum) Tag() asdl.Tag               { return 1 }
func (shortNum) FieldValues() ([]any, error) { return nil, nil }

func TestValidateConcreteTypes(t *testing.T) {
	reg := loadDemo(t)

	err := asdl.Validate(reg, wrongTag{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expr.Num has tag 2, descriptor says 1")

	err = asdl.Validate(reg, shortNum{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has 0 field values, want 1")

	assert.Equal(t, types.ErrFieldType, types.CodeOf(asdl.Validate(reg, nil)))
}
