package asdl

import (
	"bytes"
	"io"
	"reflect"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sandrolain/gotdop/pkg/types"
)

// Tag identifies a variant within its sum type. Tags are 1-based and follow
// schema order; 0 is reserved for product types.
type Tag int

// schemaFile is the YAML form of a schema.
//
//	module: arith
//	types:
//	  - name: arith_expr
//	    sum:
//	      - name: Const
//	        fields: [{name: i, type: int}]
//	  - name: loc
//	    product: [{name: line, type: int}]
type schemaFile struct {
	Module string       `yaml:"module"`
	Types  []schemaType `yaml:"types"`
}

type schemaType struct {
	Name    string          `yaml:"name"`
	Product []schemaField   `yaml:"product"`
	Sum     []schemaVariant `yaml:"sum"`
}

type schemaVariant struct {
	Name   string        `yaml:"name"`
	Fields []schemaField `yaml:"fields"`
}

type schemaField struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Option configures schema loading.
type Option func(*options)

type options struct {
	appTypes map[string]reflect.Type
	logger   log.Logger
}

// WithAppType binds a type name the schema uses but does not declare to a Go
// type, e.g. WithAppType("id", reflect.TypeOf(token.Kind(0))).
func WithAppType(name string, goType reflect.Type) Option {
	return func(o *options) {
		o.appTypes[name] = goType
	}
}

// WithLogger sets the logger used while loading.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Registry maps type names of one schema to their descriptors. It is built
// once and is read-only afterwards.
type Registry struct {
	module string
	types  map[string]Descriptor
	order  []string
}

// LoadSchema reads a YAML schema from r.
func LoadSchema(r io.Reader, opts ...Option) (*Registry, error) {
	o := options{appTypes: map[string]reflect.Type{}, logger: log.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	var f schemaFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, types.Errorf(types.ErrInvalidSchema, "decoding schema: %v", err).WithCause(errors.WithStack(err))
	}

	reg, err := build(&f, &o)
	if err != nil {
		return nil, err
	}
	level.Debug(o.logger).Log("msg", "loaded schema", "module", reg.module, "types", len(reg.order))
	return reg, nil
}

// ParseSchema parses a YAML schema held in memory.
func ParseSchema(data []byte, opts ...Option) (*Registry, error) {
	return LoadSchema(bytes.NewReader(data), opts...)
}

// MustParseSchema is like ParseSchema but panics on error.
// It simplifies initialization of package-level registries.
func MustParseSchema(data []byte, opts ...Option) *Registry {
	reg, err := ParseSchema(data, opts...)
	if err != nil {
		panic(err)
	}
	return reg
}

// build resolves the schema in two passes: the first declares every type so
// that the second can resolve field types referring to types declared later.
func build(f *schemaFile, o *options) (*Registry, error) {
	reg := &Registry{module: f.Module, types: map[string]Descriptor{}}

	for name, t := range o.appTypes {
		reg.types[name] = &UserDescriptor{Name: name, GoType: t}
	}

	for _, t := range f.Types {
		if t.Name == "" {
			return nil, schemaErrorf("type without a name")
		}
		if _, dup := reg.types[t.Name]; dup || isBuiltin(t.Name) {
			return nil, schemaErrorf("type %s is declared twice", t.Name)
		}
		if len(t.Sum) > 0 && t.Product != nil {
			return nil, schemaErrorf("type %s is both a product and a sum", t.Name)
		}

		if len(t.Sum) == 0 {
			reg.types[t.Name] = newCompound(t.Name)
			reg.order = append(reg.order, t.Name)
			continue
		}

		sum := &SumDescriptor{Name: t.Name}
		for i, v := range t.Sum {
			if v.Name == "" {
				return nil, schemaErrorf("variant %d of %s has no name", i+1, t.Name)
			}
			if _, dup := sum.Variant(v.Name); dup {
				return nil, schemaErrorf("variant %s.%s is declared twice", t.Name, v.Name)
			}
			c := newCompound(v.Name)
			c.Sum = sum
			c.Tag = Tag(i + 1)
			sum.Variants = append(sum.Variants, c)
		}
		reg.types[t.Name] = sum
		reg.order = append(reg.order, t.Name)
	}

	for _, t := range f.Types {
		switch d := reg.types[t.Name].(type) {
		case *CompoundDescriptor:
			if err := reg.resolveFields(d, t.Product); err != nil {
				return nil, err
			}
		case *SumDescriptor:
			for i, v := range t.Sum {
				c := d.Variants[i]
				if err := reg.resolveFields(c, v.Fields); err != nil {
					return nil, err
				}
				reg.types[c.QualifiedName()] = c
			}
		}
	}

	return reg, nil
}

func (r *Registry) resolveFields(c *CompoundDescriptor, fields []schemaField) error {
	for _, f := range fields {
		if f.Name == "" {
			return schemaErrorf("%s has a field without a name", c.QualifiedName())
		}
		if _, dup := c.lookup[f.Name]; dup {
			return schemaErrorf("field %s of %s is declared twice", f.Name, c.QualifiedName())
		}
		desc, err := r.resolveType(f.Type)
		if err != nil {
			return types.Errorf(types.ErrInvalidSchema, "field %s of %s: %s", f.Name, c.QualifiedName(), err.Message)
		}
		c.lookup[f.Name] = len(c.Fields)
		c.Fields = append(c.Fields, Field{Name: f.Name, Desc: desc})
	}
	return nil
}

// resolveType turns a field type string such as "arith_expr*" into a
// descriptor.
func (r *Registry) resolveType(s string) (Descriptor, *types.Error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasSuffix(s, "*"):
		of, err := r.resolveBase(strings.TrimSuffix(s, "*"))
		if err != nil {
			return nil, err
		}
		return &ArrayDescriptor{Of: of}, nil
	case strings.HasSuffix(s, "?"):
		of, err := r.resolveBase(strings.TrimSuffix(s, "?"))
		if err != nil {
			return nil, err
		}
		return &MaybeDescriptor{Of: of}, nil
	default:
		return r.resolveBase(s)
	}
}

func (r *Registry) resolveBase(name string) (Descriptor, *types.Error) {
	switch name {
	case "int":
		return IntType, nil
	case "string":
		return StrType, nil
	case "bool":
		return BoolType, nil
	}
	if strings.ContainsAny(name, "*?.") || name == "" {
		return nil, schemaErrorf("invalid type %q", name)
	}
	d, ok := r.types[name]
	if !ok {
		return nil, schemaErrorf("unknown type %q", name)
	}
	return d, nil
}

// Module returns the schema's module name.
func (r *Registry) Module() string {
	return r.module
}

// Describe returns the descriptor of a declared type, an application type, or
// a variant given as "sum.Variant".
func (r *Registry) Describe(name string) (Descriptor, error) {
	if d, ok := r.types[name]; ok {
		return d, nil
	}
	return nil, types.Errorf(types.ErrUnknownType, "no type named %q in module %s", name, r.module)
}

// MustDescribe is like Describe but panics if the name is unknown.
func (r *Registry) MustDescribe(name string) Descriptor {
	d, err := r.Describe(name)
	if err != nil {
		panic(err)
	}
	return d
}

// Compound returns the descriptor of a product type or variant.
func (r *Registry) Compound(name string) (*CompoundDescriptor, error) {
	d, err := r.Describe(name)
	if err != nil {
		return nil, err
	}
	c, ok := d.(*CompoundDescriptor)
	if !ok {
		return nil, types.Errorf(types.ErrUnknownType, "%s is not a product type or variant", name)
	}
	return c, nil
}

// Types lists the declared type names in schema order.
func (r *Registry) Types() []string {
	return append([]string(nil), r.order...)
}

func isBuiltin(name string) bool {
	return name == "int" || name == "string" || name == "bool"
}

func schemaErrorf(format string, args ...interface{}) *types.Error {
	return types.Errorf(types.ErrInvalidSchema, format, args...)
}
