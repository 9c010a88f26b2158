// Package config implements declarative hyperparameter records for
// experiments. A config is a flat struct of int, float64, bool, and
// string fields, optionally wrapped in a pointer (the field may be
// nil) or a slice (the field holds a flat sequence). The package
// derives a YAML codec and a command-line flag surface from the struct
// declaration itself, so a schema is written exactly once and used in
// three places: Go code, config files, and entrypoint flags.
//
// Field names in files and on flags are taken from the yaml struct
// tag when present, otherwise the lowercased Go field name is used.
// The help struct tag provides flag help text.
package config

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Kind enumerates the scalar kinds a config field can hold.
type Kind int

const (
	Int Kind = iota
	Float
	Bool
	String
)

// String returns a string representation of the Kind
func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float64"
	case Bool:
		return "bool"
	case String:
		return "string"
	default:
		return "invalid"
	}
}

// Field describes a single declared field of a config type
type Field struct {
	// Name is the key the field uses in config files and on the
	// command line
	Name string

	// Kind is the scalar kind of the field after stripping any
	// pointer or slice wrapping
	Kind Kind

	// Sequence indicates that the field holds a flat slice of Kind
	Sequence bool

	// Optional indicates that the field is a pointer and may be nil
	Optional bool

	// Help is the flag help text, taken from the help struct tag
	Help string

	// index is the field's index in the declaring struct
	index int
}

// Schema describes the declared fields of a config type. A Schema is
// computed once per concrete type and cached, so repeated loads and
// saves of the same type do not re-inspect it.
type Schema struct {
	rtype  reflect.Type
	fields []Field
	names  map[string]int
}

var schemas sync.Map // reflect.Type -> *Schema

// SchemaOf returns the Schema of cfg, which must be a non-nil pointer
// to a struct. SchemaOf returns a *SchemaError if any field's declared
// type does not reduce to int, float64, bool, or string after
// stripping at most one pointer or slice.
func SchemaOf(cfg interface{}) (*Schema, error) {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("schemaOf: config must be a non-nil pointer "+
			"to a struct, got %T", cfg)
	}

	rtype := v.Elem().Type()
	if cached, ok := schemas.Load(rtype); ok {
		return cached.(*Schema), nil
	}

	schema, err := newSchema(rtype)
	if err != nil {
		return nil, err
	}

	schemas.Store(rtype, schema)
	return schema, nil
}

// newSchema inspects rtype and builds its Schema
func newSchema(rtype reflect.Type) (*Schema, error) {
	schema := &Schema{
		rtype: rtype,
		names: make(map[string]int),
	}

	for i := 0; i < rtype.NumField(); i++ {
		structField := rtype.Field(i)
		if structField.PkgPath != "" || structField.Anonymous {
			return nil, &SchemaError{
				Field: structField.Name,
				Type:  structField.Type,
			}
		}

		field := Field{
			Name:  fieldName(structField),
			Help:  structField.Tag.Get("help"),
			index: i,
		}

		ftype := structField.Type
		if ftype.Kind() == reflect.Ptr {
			field.Optional = true
			ftype = ftype.Elem()
		}
		if ftype.Kind() == reflect.Slice {
			// Optional sequences and nested containers are not
			// supported
			if field.Optional || ftype.Elem().Kind() == reflect.Slice {
				return nil, &SchemaError{
					Field: structField.Name,
					Type:  structField.Type,
				}
			}
			field.Sequence = true
			ftype = ftype.Elem()
		}

		kind, ok := kindOf(ftype)
		if !ok {
			return nil, &SchemaError{
				Field: structField.Name,
				Type:  structField.Type,
			}
		}
		field.Kind = kind

		if _, exists := schema.names[field.Name]; exists {
			return nil, fmt.Errorf("schemaOf: duplicate field name %q in %v",
				field.Name, rtype)
		}
		schema.names[field.Name] = len(schema.fields)
		schema.fields = append(schema.fields, field)
	}

	return schema, nil
}

// Fields returns the declared fields of the schema, in declaration
// order
func (s *Schema) Fields() []Field {
	fields := make([]Field, len(s.fields))
	copy(fields, s.fields)
	return fields
}

// Lookup returns the Field with the given name and whether it exists
func (s *Schema) Lookup(name string) (Field, bool) {
	i, ok := s.names[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// kindOf maps a bare Go scalar type to its Kind
func kindOf(rtype reflect.Type) (Kind, bool) {
	switch rtype.Kind() {
	case reflect.Int:
		return Int, true
	case reflect.Float64:
		return Float, true
	case reflect.Bool:
		return Bool, true
	case reflect.String:
		return String, true
	default:
		return 0, false
	}
}

// fieldName returns the name a struct field uses in config files and
// on the command line
func fieldName(structField reflect.StructField) string {
	tag := structField.Tag.Get("yaml")
	if tag != "" {
		if comma := strings.Index(tag, ","); comma >= 0 {
			tag = tag[:comma]
		}
		if tag != "" && tag != "-" {
			return tag
		}
	}
	return strings.ToLower(structField.Name)
}
