package config

import (
	"errors"
	"fmt"
	"reflect"
)

// SchemaError reports a config field whose declared type is not one of
// the supported flat kinds.
type SchemaError struct {
	Field string
	Type  reflect.Type
}

// Error satisfies the error interface
func (e *SchemaError) Error() string {
	return fmt.Sprintf("unsupported type %v for config field %v: fields "+
		"must be flat int, float64, bool, or string values, pointers, or "+
		"slices", e.Type, e.Field)
}

// CoercionError reports a raw value that could not be converted to its
// field's declared kind.
type CoercionError struct {
	Field string
	Value interface{}
	Kind  Kind
}

// Error satisfies the error interface
func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %v (%T) to %v for config field %v",
		e.Value, e.Value, e.Kind, e.Field)
}

// ParseError reports a config file whose contents could not be parsed
// as a flat YAML mapping.
type ParseError struct {
	Path string
	Err  error
}

// Error satisfies the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %v: %v", e.Path, e.Err)
}

// Unwrap returns the underlying parser error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsSchemaError returns whether or not an error reports an unsupported
// config field type.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsCoercionError returns whether or not an error reports a value that
// could not be converted to its field's declared kind.
func IsCoercionError(err error) bool {
	var coercionErr *CoercionError
	return errors.As(err, &coercionErr)
}

// IsParseError returns whether or not an error reports a malformed
// config file.
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}
