package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validate checks that cfg declares a valid flat schema. Fields of a
// Go config struct already hold their declared types, so no per-field
// conversion is needed here; Validate exists so that a badly declared
// config type fails on first use rather than on first load or save.
func Validate(cfg interface{}) error {
	_, err := SchemaOf(cfg)
	return err
}

// Save writes cfg's fields as a flat name-to-value YAML mapping at
// path, overwriting any existing file. Values are encoded with plain
// YAML tags only, so the output is human-readable and loadable by any
// YAML parser.
func Save(cfg interface{}, path string) error {
	schema, err := SchemaOf(cfg)
	if err != nil {
		return err
	}

	v := reflect.ValueOf(cfg).Elem()
	mapping := make(map[string]interface{}, len(schema.fields))
	for _, field := range schema.fields {
		fv := v.Field(field.index)
		if field.Optional {
			if fv.IsNil() {
				mapping[field.Name] = nil
				continue
			}
			fv = fv.Elem()
		}
		mapping[field.Name] = fv.Interface()
	}

	data, err := yaml.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("save: could not encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("save: could not write config: %w", err)
	}
	return nil
}

// Load reads the flat YAML mapping at path into cfg, then applies
// overrides on top; overrides win on key collision. Keys that do not
// name a declared field are dropped silently, so files written by
// older or newer schemas still load. Fields present in neither the
// file nor the overrides keep whatever values cfg already holds, which
// is how declared defaults survive a partial file.
//
// Each incoming value is coerced to its field's declared kind; see
// the package documentation for the conversion rules. Load returns a
// *ParseError for malformed file contents and a *CoercionError for
// values that cannot be converted.
func Load(path string, cfg interface{}, overrides map[string]interface{}) error {
	schema, err := SchemaOf(cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load: could not read config: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return &ParseError{Path: path, Err: err}
	}
	if raw == nil {
		raw = make(map[string]interface{})
	}
	for name, value := range overrides {
		raw[name] = value
	}

	v := reflect.ValueOf(cfg).Elem()
	for name, value := range raw {
		field, known := schema.Lookup(name)
		if !known {
			continue
		}

		fv, err := coerce(field, value, v.Field(field.index).Type())
		if err != nil {
			return err
		}
		v.Field(field.index).Set(fv)
	}
	return nil
}

// coerce converts a dynamically typed value to a reflect.Value
// assignable to a struct field of type ftype, following the field's
// declared kind.
func coerce(field Field, value interface{}, ftype reflect.Type) (reflect.Value,
	error) {
	if value == nil {
		if !field.Optional {
			return reflect.Value{}, &CoercionError{
				Field: field.Name,
				Value: value,
				Kind:  field.Kind,
			}
		}
		return reflect.Zero(ftype), nil
	}

	if field.Optional {
		elem, err := coerceScalar(field, value)
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(ftype.Elem())
		ptr.Elem().Set(reflect.ValueOf(elem))
		return ptr, nil
	}

	if field.Sequence {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice {
			return reflect.Value{}, &CoercionError{
				Field: field.Name,
				Value: value,
				Kind:  field.Kind,
			}
		}

		out := reflect.MakeSlice(ftype, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem, err := coerceScalar(field, rv.Index(i).Interface())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(reflect.ValueOf(elem))
		}
		return out, nil
	}

	scalar, err := coerceScalar(field, value)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(scalar), nil
}

// coerceScalar converts a single dynamically typed value to the
// field's scalar kind. Strings holding booleans are parsed with
// strconv.ParseBool rather than by emptiness.
func coerceScalar(field Field, value interface{}) (interface{}, error) {
	fail := func() (interface{}, error) {
		return nil, &CoercionError{
			Field: field.Name,
			Value: value,
			Kind:  field.Kind,
		}
	}

	switch field.Kind {
	case Int:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case uint64:
			return int(v), nil
		case float64:
			return int(v), nil
		case float32:
			return int(v), nil
		case bool:
			if v {
				return 1, nil
			}
			return 0, nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fail()
			}
			return n, nil
		}

	case Float:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case uint64:
			return float64(v), nil
		case bool:
			if v {
				return 1.0, nil
			}
			return 0.0, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fail()
			}
			return f, nil
		}

	case Bool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case int:
			return v != 0, nil
		case int64:
			return v != 0, nil
		case uint64:
			return v != 0, nil
		case float64:
			return v != 0, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fail()
			}
			return b, nil
		}

	case String:
		switch v := value.(type) {
		case string:
			return v, nil
		case int:
			return strconv.Itoa(v), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case uint64:
			return strconv.FormatUint(v, 10), nil
		case float64:
			return strconv.FormatFloat(v, 'g', -1, 64), nil
		case bool:
			return strconv.FormatBool(v), nil
		}
	}

	return fail()
}
