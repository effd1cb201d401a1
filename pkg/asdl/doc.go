// Package asdl is the runtime side of typed syntax trees described by an
// ASDL-like schema.
//
// A schema declares product types and sum types; each sum type is a closed set
// of variants identified by a 1-based tag. The schema is written in YAML and
// loaded into a Registry that maps every type name to a Descriptor. Types the
// schema uses but does not declare (token ids, for instance) are bound to Go
// types with WithAppType.
//
// Tree values implement Obj. Grammars usually define concrete structs for
// speed; Record covers values whose shape is only known at runtime and
// enforces the construction discipline: all fields or none, no field bound
// twice, immutable once sealed. Validate checks either kind of value against
// its descriptors.
package asdl
