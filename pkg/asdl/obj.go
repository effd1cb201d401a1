package asdl

import (
	"reflect"

	"github.com/sandrolain/gotdop/pkg/types"
)

// Obj is implemented by every value of a product type or variant, whether it
// is a concrete Go struct or a dynamic Record.
type Obj interface {
	// TypeName returns the qualified descriptor name, e.g. "arith_expr.Binary".
	TypeName() string
	// FieldValues returns the field values in declaration order. Arrays are
	// slices, absent maybes are nil.
	FieldValues() ([]any, error)
}

// Variant is an Obj belonging to a sum type.
type Variant interface {
	Obj
	Tag() Tag
}

// Validate checks obj, and everything reachable from it, against the
// descriptors of reg.
func Validate(reg *Registry, obj Obj) error {
	if isNil(obj) {
		return types.NewError(types.ErrFieldType, "nil object")
	}
	desc, err := reg.Compound(obj.TypeName())
	if err != nil {
		return err
	}
	return validateObj(obj, desc)
}

func validateObj(obj Obj, desc *CompoundDescriptor) error {
	if v, ok := obj.(Variant); ok && v.Tag() != desc.Tag {
		return types.Errorf(types.ErrFieldType, "%s has tag %d, descriptor says %d", desc.QualifiedName(), v.Tag(), desc.Tag)
	}

	values, err := obj.FieldValues()
	if err != nil {
		return err
	}
	if len(values) != len(desc.Fields) {
		return types.Errorf(types.ErrFieldType, "%s has %d field values, want %d", desc.QualifiedName(), len(values), len(desc.Fields))
	}
	for i, f := range desc.Fields {
		if err := checkValue(values[i], f.Desc, true); err != nil {
			return types.Errorf(types.ErrFieldType, "field %s of %s: %s", f.Name, desc.QualifiedName(), message(err)).WithCause(err)
		}
	}
	return nil
}

// checkValue reports whether v conforms to d. With deep set, nested objects
// are validated as well.
func checkValue(v any, d Descriptor, deep bool) error {
	switch d := d.(type) {
	case *MaybeDescriptor:
		if isNil(v) {
			return nil
		}
		return checkValue(v, d.Of, deep)

	case *ScalarDescriptor:
		if !scalarMatches(v, d.Kind) {
			return types.Errorf(types.ErrFieldType, "expected %s, got %T", d.Kind, v)
		}
		return nil

	case *UserDescriptor:
		if v == nil || (d.GoType != nil && reflect.TypeOf(v) != d.GoType) {
			return types.Errorf(types.ErrFieldType, "expected %s, got %T", d.Name, v)
		}
		return nil

	case *ArrayDescriptor:
		if v == nil {
			return nil // empty array
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice {
			return types.Errorf(types.ErrFieldType, "expected array, got %T", v)
		}
		for i := 0; i < rv.Len(); i++ {
			if err := checkValue(rv.Index(i).Interface(), d.Of, deep); err != nil {
				return types.Errorf(types.ErrFieldType, "element %d: %s", i, message(err)).WithCause(err)
			}
		}
		return nil

	case *SumDescriptor:
		obj, ok := v.(Variant)
		if !ok || isNil(v) {
			return types.Errorf(types.ErrFieldType, "expected %s, got %T", d.Name, v)
		}
		c, ok := d.Variant(obj.TypeName())
		if !ok {
			return types.Errorf(types.ErrFieldType, "%s is not a variant of %s", obj.TypeName(), d.Name)
		}
		if deep {
			return validateObj(obj, c)
		}
		return nil

	case *CompoundDescriptor:
		obj, ok := v.(Obj)
		if !ok || isNil(v) || obj.TypeName() != d.QualifiedName() {
			return types.Errorf(types.ErrFieldType, "expected %s, got %T", d.QualifiedName(), v)
		}
		if deep {
			return validateObj(obj, d)
		}
		return nil
	}
	return types.Errorf(types.ErrFieldType, "unsupported descriptor %s", d)
}

func scalarMatches(v any, k ScalarKind) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch k {
	case Int:
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return true
		}
	case Str:
		return rv.Kind() == reflect.String
	case Bool:
		return rv.Kind() == reflect.Bool
	}
	return false
}

// isNil reports whether v is nil or a typed nil pointer.
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

func message(err error) string {
	if e, ok := err.(*types.Error); ok {
		return e.Message
	}
	return err.Error()
}
