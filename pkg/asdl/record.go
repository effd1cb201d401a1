package asdl

import (
	"maps"
	"slices"
	"strings"

	"github.com/sandrolain/gotdop/pkg/types"
)

// Record is a schema-described value whose fields are bound at runtime.
//
// A Record is either fully assigned or not assigned at all: reading a field
// of a partially assigned record is an error, and so is binding the same
// field twice during construction. After Seal the record is immutable.
type Record struct {
	desc     *CompoundDescriptor
	values   []any
	assigned []bool
	sealed   bool
}

// NewRecord returns a record with every field unassigned.
func NewRecord(desc *CompoundDescriptor) *Record {
	return &Record{
		desc:     desc,
		values:   make([]any, len(desc.Fields)),
		assigned: make([]bool, len(desc.Fields)),
	}
}

// Construct binds positional arguments, then named ones, and checks that the
// record ends up fully assigned (or not assigned at all).
func Construct(desc *CompoundDescriptor, positional []any, named map[string]any) (*Record, error) {
	r := NewRecord(desc)

	if len(positional) > len(desc.Fields) {
		return nil, types.Errorf(types.ErrTooManyArgs, "%s takes %d fields, got %d positional arguments",
			desc.QualifiedName(), len(desc.Fields), len(positional))
	}
	for i, v := range positional {
		if err := r.bind(i, v); err != nil {
			return nil, err
		}
	}

	for _, name := range slices.Sorted(maps.Keys(named)) {
		i, ok := desc.FieldIndex(name)
		if !ok {
			return nil, unknownField(desc, name)
		}
		if r.assigned[i] {
			return nil, types.Errorf(types.ErrDuplicateField, "%s: field %s is bound both by position and by name",
				desc.QualifiedName(), name)
		}
		if err := r.bind(i, named[name]); err != nil {
			return nil, err
		}
	}

	if err := r.CheckFullyAssigned(); err != nil {
		return nil, err
	}
	return r, nil
}

// Descriptor returns the record's descriptor.
func (r *Record) Descriptor() *CompoundDescriptor {
	return r.desc
}

// TypeName implements Obj.
func (r *Record) TypeName() string {
	return r.desc.QualifiedName()
}

// Tag implements Variant. It is 0 for product types.
func (r *Record) Tag() Tag {
	return r.desc.Tag
}

// Set assigns a field. The value is checked against the field descriptor;
// nested objects are checked by Validate, not here.
func (r *Record) Set(name string, v any) error {
	if r.sealed {
		return types.Errorf(types.ErrSealed, "%s is sealed", r.desc.QualifiedName())
	}
	i, ok := r.desc.FieldIndex(name)
	if !ok {
		return unknownField(r.desc, name)
	}
	return r.bind(i, v)
}

func (r *Record) bind(i int, v any) error {
	f := r.desc.Fields[i]
	if err := checkValue(v, f.Desc, false); err != nil {
		return types.Errorf(types.ErrFieldType, "field %s of %s: %s", f.Name, r.desc.QualifiedName(), message(err)).WithCause(err)
	}
	r.values[i] = v
	r.assigned[i] = true
	return nil
}

// IsAssigned reports whether the named field has a value.
func (r *Record) IsAssigned(name string) bool {
	i, ok := r.desc.FieldIndex(name)
	return ok && r.assigned[i]
}

// CheckFullyAssigned fails unless all fields, or none of them, are assigned.
func (r *Record) CheckFullyAssigned() error {
	missing := r.missing()
	if len(missing) == 0 || len(missing) == len(r.desc.Fields) {
		return nil
	}
	return types.Errorf(types.ErrFieldUnassigned, "%s is missing fields %s",
		r.desc.QualifiedName(), strings.Join(missing, ", "))
}

// Seal freezes a fully assigned record.
func (r *Record) Seal() error {
	if err := r.requireAssigned(); err != nil {
		return err
	}
	r.sealed = true
	return nil
}

// Sealed reports whether Seal succeeded.
func (r *Record) Sealed() bool {
	return r.sealed
}

// Get returns the value of the named field.
func (r *Record) Get(name string) (any, error) {
	i, ok := r.desc.FieldIndex(name)
	if !ok {
		return nil, unknownField(r.desc, name)
	}
	if err := r.requireAssigned(); err != nil {
		return nil, err
	}
	return r.values[i], nil
}

// FieldValues implements Obj.
func (r *Record) FieldValues() ([]any, error) {
	if err := r.requireAssigned(); err != nil {
		return nil, err
	}
	return append([]any(nil), r.values...), nil
}

func (r *Record) requireAssigned() error {
	if missing := r.missing(); len(missing) > 0 {
		return types.Errorf(types.ErrFieldUnassigned, "%s is missing fields %s",
			r.desc.QualifiedName(), strings.Join(missing, ", "))
	}
	return nil
}

func (r *Record) missing() []string {
	var names []string
	for i, ok := range r.assigned {
		if !ok {
			names = append(names, r.desc.Fields[i].Name)
		}
	}
	return names
}

func unknownField(desc *CompoundDescriptor, name string) error {
	return types.Errorf(types.ErrUnknownField, "%s has no field %s", desc.QualifiedName(), name)
}
