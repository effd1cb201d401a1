// Package format pretty-prints typed trees.
//
// Printing happens in two steps. MakePrettyTree and MakeAbbreviatedTree turn
// any asdl.Obj into a homogeneous tree of Pretty values, using only the
// schema descriptors. PrintTree then renders that tree to an Output, on a
// single line when it fits and wrapped otherwise.
package format

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/sandrolain/gotdop/pkg/asdl"
	"github.com/sandrolain/gotdop/pkg/types"
)

// Color classifies printed text so outputs can highlight it.
type Color int

const (
	ColorTypeName Color = iota
	ColorStringConst
	ColorOtherConst
	ColorUserType
)

// Pretty is a node of the homogeneous tree: *PrettyNode, *PrettyLeaf or
// *PrettyArray.
type Pretty interface {
	isPretty()
}

// PrettyLeaf is a scalar.
type PrettyLeaf struct {
	S     string
	Color Color
}

// PrettyArray is a list of values.
type PrettyArray struct {
	Children []Pretty
}

// PrettyField is a named field of a full-form node.
type PrettyField struct {
	Name  string
	Value Pretty
}

// PrettyNode is an object. In full form it prints as (Type name:value ...);
// abbreviated, it prints its unnamed fields after an optional type.
type PrettyNode struct {
	NodeType      string
	Left, Right   string
	Abbrev        bool
	Fields        []PrettyField
	UnnamedFields []Pretty
}

// NewPrettyNode returns a full-form node delimited by parentheses.
func NewPrettyNode(nodeType string) *PrettyNode {
	return &PrettyNode{NodeType: nodeType, Left: "(", Right: ")"}
}

// Field returns the value of the named field, or nil when it was omitted.
func (n *PrettyNode) Field(name string) Pretty {
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

func (*PrettyLeaf) isPretty()  {}
func (*PrettyArray) isPretty() {}
func (*PrettyNode) isPretty()  {}

// Leaf is a shortcut for &PrettyLeaf{s, color}.
func Leaf(s string, color Color) *PrettyLeaf {
	return &PrettyLeaf{S: s, Color: color}
}

// AbbrevHook rewrites the node built for obj, whose children are already
// abbreviated. Returning nil falls back to the default abbreviation.
type AbbrevHook func(obj asdl.Obj, node *PrettyNode) Pretty

// Hooks maps qualified type names, e.g. "arith_expr.Binary", to hooks.
type Hooks map[string]AbbrevHook

// MakePrettyTree builds the full form of obj: every non-empty field, by name.
func MakePrettyTree(reg *asdl.Registry, obj asdl.Obj) (*PrettyNode, error) {
	desc, err := reg.Compound(obj.TypeName())
	if err != nil {
		return nil, err
	}
	return makeNode(obj, desc, nil)
}

// MakeAbbreviatedTree builds the abbreviated form of obj. Objects with a
// single scalar field become that scalar; other objects print their fields
// without names. Hooks take precedence over both rules.
func MakeAbbreviatedTree(reg *asdl.Registry, obj asdl.Obj, hooks Hooks) (Pretty, error) {
	desc, err := reg.Compound(obj.TypeName())
	if err != nil {
		return nil, err
	}
	if hooks == nil {
		hooks = Hooks{}
	}
	return makeAbbrev(obj, desc, hooks)
}

func makeNode(obj asdl.Obj, desc *asdl.CompoundDescriptor, hooks Hooks) (*PrettyNode, error) {
	values, err := obj.FieldValues()
	if err != nil {
		return nil, err
	}
	if len(values) != len(desc.Fields) {
		return nil, types.Errorf(types.ErrFieldType, "%s has %d field values, want %d",
			desc.QualifiedName(), len(values), len(desc.Fields))
	}

	node := NewPrettyNode(desc.QualifiedName())
	for i, f := range desc.Fields {
		v, err := subtree(values[i], f.Desc, hooks)
		if err != nil {
			return nil, err
		}
		if v != nil {
			node.Fields = append(node.Fields, PrettyField{Name: f.Name, Value: v})
		}
	}
	return node, nil
}

func makeAbbrev(obj asdl.Obj, desc *asdl.CompoundDescriptor, hooks Hooks) (Pretty, error) {
	node, err := makeNode(obj, desc, hooks)
	if err != nil {
		return nil, err
	}
	if hook, ok := hooks[desc.QualifiedName()]; ok {
		if p := hook(obj, node); p != nil {
			return p, nil
		}
	}

	if len(desc.Fields) == 1 && len(node.Fields) == 1 {
		if _, scalar := desc.Fields[0].Desc.(*asdl.ScalarDescriptor); scalar {
			return node.Fields[0].Value, nil
		}
	}

	abbrev := &PrettyNode{NodeType: desc.Name, Left: "(", Right: ")", Abbrev: true}
	for _, f := range node.Fields {
		abbrev.UnnamedFields = append(abbrev.UnnamedFields, f.Value)
	}
	return abbrev, nil
}

// subtree converts a field value. It returns nil for values that are not
// displayed: empty arrays and absent maybes. A nil hooks map selects the full
// form for nested objects.
func subtree(v any, desc asdl.Descriptor, hooks Hooks) (Pretty, error) {
	switch d := desc.(type) {
	case *asdl.ScalarDescriptor:
		switch d.Kind {
		case asdl.Bool:
			b, _ := v.(bool)
			if b {
				return Leaf("T", ColorOtherConst), nil
			}
			return Leaf("F", ColorOtherConst), nil
		case asdl.Int:
			return Leaf(fmt.Sprint(v), ColorOtherConst), nil
		default:
			return Leaf(fmt.Sprint(v), ColorStringConst), nil
		}

	case *asdl.UserDescriptor:
		return Leaf(fmt.Sprint(v), ColorUserType), nil

	case *asdl.MaybeDescriptor:
		if isNil(v) {
			return nil, nil
		}
		return subtree(v, d.Of, hooks)

	case *asdl.ArrayDescriptor:
		if v == nil {
			return nil, nil
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice {
			return nil, types.Errorf(types.ErrFieldType, "expected array, got %T", v)
		}
		if rv.Len() == 0 {
			return nil, nil
		}
		arr := &PrettyArray{}
		for i := 0; i < rv.Len(); i++ {
			child, err := subtree(rv.Index(i).Interface(), d.Of, hooks)
			if err != nil {
				return nil, err
			}
			arr.Children = append(arr.Children, child)
		}
		return arr, nil

	case *asdl.SumDescriptor:
		obj, ok := v.(asdl.Obj)
		if !ok || isNil(v) {
			return nil, types.Errorf(types.ErrFieldUnassigned, "missing %s value", d.Name)
		}
		c, ok := d.Variant(obj.TypeName())
		if !ok {
			return nil, types.Errorf(types.ErrFieldType, "%s is not a variant of %s", obj.TypeName(), d.Name)
		}
		return object(obj, c, hooks)

	case *asdl.CompoundDescriptor:
		obj, ok := v.(asdl.Obj)
		if !ok || isNil(v) {
			return nil, types.Errorf(types.ErrFieldUnassigned, "missing %s value", d.QualifiedName())
		}
		return object(obj, d, hooks)
	}
	return nil, types.Errorf(types.ErrFieldType, "unsupported descriptor %s", desc)
}

func object(obj asdl.Obj, desc *asdl.CompoundDescriptor, hooks Hooks) (Pretty, error) {
	if hooks == nil {
		return makeNode(obj, desc, nil)
	}
	return makeAbbrev(obj, desc, hooks)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// quote renders a leaf, quoting strings that would not read back as a single
// word.
func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\r\"'\\") || !strconv.CanBackquote(s) {
		return strconv.Quote(s)
	}
	return s
}
