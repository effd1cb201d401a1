package asdl

import (
	"fmt"
	"reflect"
)

// Descriptor is runtime metadata about a field or declared type. It is one of
// *ScalarDescriptor, *ArrayDescriptor, *MaybeDescriptor, *UserDescriptor,
// *SumDescriptor or *CompoundDescriptor.
type Descriptor interface {
	fmt.Stringer
	isDescriptor()
}

// ScalarKind enumerates the builtin field types.
type ScalarKind int

const (
	Int ScalarKind = iota + 1
	Str
	Bool
)

func (k ScalarKind) String() string {
	switch k {
	case Int:
		return "int"
	case Str:
		return "string"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("scalar(%d)", int(k))
	}
}

// ScalarDescriptor describes a builtin type.
type ScalarDescriptor struct {
	Kind ScalarKind
}

// Builtin descriptors, shared by every registry.
var (
	IntType  = &ScalarDescriptor{Kind: Int}
	StrType  = &ScalarDescriptor{Kind: Str}
	BoolType = &ScalarDescriptor{Kind: Bool}
)

func (d *ScalarDescriptor) String() string { return "<" + d.Kind.String() + ">" }

// ArrayDescriptor describes a `T*` field.
type ArrayDescriptor struct {
	Of Descriptor
}

func (d *ArrayDescriptor) String() string { return fmt.Sprintf("<Array %s>", d.Of) }

// MaybeDescriptor describes a `T?` field.
type MaybeDescriptor struct {
	Of Descriptor
}

func (d *MaybeDescriptor) String() string { return fmt.Sprintf("<Maybe %s>", d.Of) }

// UserDescriptor describes an application type the schema refers to by name
// but does not declare, e.g. a token id.
type UserDescriptor struct {
	Name   string
	GoType reflect.Type
}

func (d *UserDescriptor) String() string { return fmt.Sprintf("<UserType %s>", d.Name) }

// SumDescriptor describes a sum type: a closed set of variants.
type SumDescriptor struct {
	Name     string
	Variants []*CompoundDescriptor
}

func (d *SumDescriptor) String() string { return fmt.Sprintf("<Sum %s>", d.Name) }

// Variant returns the variant with the given short or qualified name.
func (d *SumDescriptor) Variant(name string) (*CompoundDescriptor, bool) {
	for _, v := range d.Variants {
		if v.Name == name || v.QualifiedName() == name {
			return v, true
		}
	}
	return nil, false
}

// VariantByTag returns the variant with the given tag.
func (d *SumDescriptor) VariantByTag(tag Tag) (*CompoundDescriptor, bool) {
	i := int(tag) - 1
	if i < 0 || i >= len(d.Variants) {
		return nil, false
	}
	return d.Variants[i], true
}

// Field is a named, typed slot of a product or variant.
type Field struct {
	Name string
	Desc Descriptor
}

// CompoundDescriptor describes a product type or a variant of a sum type.
type CompoundDescriptor struct {
	Name   string
	Sum    *SumDescriptor // nil for product types
	Tag    Tag            // 1-based for variants, 0 for products
	Fields []Field

	lookup map[string]int
}

func newCompound(name string) *CompoundDescriptor {
	return &CompoundDescriptor{Name: name, lookup: map[string]int{}}
}

func (d *CompoundDescriptor) String() string { return fmt.Sprintf("<Compound %s>", d.QualifiedName()) }

// QualifiedName returns "sum.Variant" for variants and the type name for
// products.
func (d *CompoundDescriptor) QualifiedName() string {
	if d.Sum != nil {
		return d.Sum.Name + "." + d.Name
	}
	return d.Name
}

// FieldIndex returns the position of the named field.
func (d *CompoundDescriptor) FieldIndex(name string) (int, bool) {
	i, ok := d.lookup[name]
	return i, ok
}

// FieldNames returns the field names in declaration order.
func (d *CompoundDescriptor) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

func (*ScalarDescriptor) isDescriptor()   {}
func (*ArrayDescriptor) isDescriptor()    {}
func (*MaybeDescriptor) isDescriptor()    {}
func (*UserDescriptor) isDescriptor()     {}
func (*SumDescriptor) isDescriptor()      {}
func (*CompoundDescriptor) isDescriptor() {}
