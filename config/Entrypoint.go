package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/alecthomas/kingpin/v2"
)

// FromArgs populates cfg from command-line arguments. One flag is
// derived per declared field, spelled --<name> with underscores
// written as dashes (a field named use_gpu gets the flag --use-gpu;
// both spellings are accepted on input). Boolean fields get on/off
// switches supporting both --<name> and --no-<name>. Sequence fields
// take one or more whitespace-separated values after the flag, each
// parsed as the element kind. All other fields take a single value.
//
// If app is nil, a fresh kingpin application is created. If args is
// nil, the process argument list is used. Arguments that do not match
// a derived flag are ignored rather than rejected, so several config
// types can populate themselves from one shared application and one
// argument list.
//
// Fields whose flags do not appear in the arguments keep the values
// cfg already holds, so an empty argument list leaves cfg equal to its
// declared defaults. Scalar flag values that fail their kind's
// conversion surface as a parse error from the underlying application;
// sequence elements surface as a *CoercionError.
func FromArgs(cfg interface{}, app *kingpin.Application, args []string) error {
	schema, err := SchemaOf(cfg)
	if err != nil {
		return err
	}

	if app == nil {
		name := strings.ToLower(schema.rtype.Name())
		if name == "" {
			name = "config"
		}
		app = kingpin.New(name, "")
	}
	if args == nil {
		args = os.Args[1:]
	}

	kept, seen := scanArgs(schema, args)

	v := reflect.ValueOf(cfg).Elem()
	assign := make([]func() error, 0, len(schema.fields))
	for _, field := range schema.fields {
		field := field
		fv := v.Field(field.index)
		clause := app.Flag(flagName(field.Name), field.Help)

		switch {
		case field.Sequence:
			// Sequence elements arrive as text and flow through the
			// same coercion as file values
			target := clause.Strings()
			assign = append(assign, func() error {
				out := reflect.MakeSlice(fv.Type(), len(*target),
					len(*target))
				for i, raw := range *target {
					value, err := coerceScalar(field, raw)
					if err != nil {
						return err
					}
					out.Index(i).Set(reflect.ValueOf(value))
				}
				fv.Set(out)
				return nil
			})

		case field.Kind == Int:
			setScalarDefault(clause, field, fv)
			target := clause.Int()
			assign = append(assign, func() error {
				setField(fv, field, *target)
				return nil
			})

		case field.Kind == Float:
			setScalarDefault(clause, field, fv)
			target := clause.Float64()
			assign = append(assign, func() error {
				setField(fv, field, *target)
				return nil
			})

		case field.Kind == Bool:
			setScalarDefault(clause, field, fv)
			target := clause.Bool()
			assign = append(assign, func() error {
				setField(fv, field, *target)
				return nil
			})

		case field.Kind == String:
			setScalarDefault(clause, field, fv)
			target := clause.String()
			assign = append(assign, func() error {
				setField(fv, field, *target)
				return nil
			})
		}
	}

	if _, err := app.Parse(kept); err != nil {
		return fmt.Errorf("fromArgs: could not parse arguments: %w", err)
	}

	for i, field := range schema.fields {
		if seen[field.Name] {
			if err := assign[i](); err != nil {
				return err
			}
		}
	}
	return nil
}

// flagName returns the command-line spelling of a field name
func flagName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// scanArgs filters args down to the flags derived from schema,
// normalizing spellings and expanding multi-valued sequence flags into
// the repeated occurrences the parser expects. It returns the filtered
// argument list and the set of field names whose flags occurred.
//
// Tokens belonging to unrecognized flags are dropped, including any
// detached values that follow them.
func scanArgs(schema *Schema, args []string) ([]string, map[string]bool) {
	kept := make([]string, 0, len(args))
	seen := make(map[string]bool)

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") || arg == "--" {
			continue
		}

		name, value, hasValue := cutFlag(arg[2:])
		norm := strings.ReplaceAll(name, "-", "_")

		field, known := schema.Lookup(norm)
		switch {
		case known && field.Sequence:
			if hasValue {
				kept = append(kept, "--"+flagName(field.Name)+"="+value)
				seen[field.Name] = true
			}
			for i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
				i++
				kept = append(kept, "--"+flagName(field.Name)+"="+args[i])
				seen[field.Name] = true
			}

		case known && field.Kind == Bool && !field.Sequence:
			if hasValue {
				kept = append(kept, "--"+flagName(field.Name)+"="+value)
			} else {
				kept = append(kept, "--"+flagName(field.Name))
			}
			seen[field.Name] = true

		case known:
			if hasValue {
				kept = append(kept, "--"+flagName(field.Name)+"="+value)
			} else if i+1 < len(args) {
				i++
				kept = append(kept, "--"+flagName(field.Name)+"="+args[i])
			} else {
				// Missing value: hand the bare flag to the parser so
				// that it reports the error
				kept = append(kept, "--"+flagName(field.Name))
			}
			seen[field.Name] = true

		case strings.HasPrefix(norm, "no_"):
			if f, ok := schema.Lookup(strings.TrimPrefix(norm, "no_")); ok &&
				f.Kind == Bool && !f.Sequence {
				kept = append(kept, "--no-"+flagName(f.Name))
				seen[f.Name] = true
				continue
			}
			fallthrough

		default:
			// Unknown flag: drop it along with its detached values
			if !hasValue {
				for i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
					i++
				}
			}
		}
	}

	return kept, seen
}

// cutFlag splits a flag body around the first "="
func cutFlag(body string) (name, value string, hasValue bool) {
	if eq := strings.Index(body, "="); eq >= 0 {
		return body[:eq], body[eq+1:], true
	}
	return body, "", false
}

// setScalarDefault registers the field's current value as the flag
// default so that generated help text shows it. Parsed defaults are
// never assigned back; only flags that actually occurred are.
func setScalarDefault(clause *kingpin.FlagClause, field Field,
	fv reflect.Value) {
	if field.Optional {
		if fv.IsNil() {
			return
		}
		fv = fv.Elem()
	}

	switch field.Kind {
	case Int:
		clause.Default(strconv.Itoa(int(fv.Int())))
	case Float:
		clause.Default(strconv.FormatFloat(fv.Float(), 'g', -1, 64))
	case Bool:
		clause.Default(strconv.FormatBool(fv.Bool()))
	case String:
		if fv.String() != "" {
			clause.Default(fv.String())
		}
	}
}

// setField assigns a parsed scalar onto a struct field, wrapping it in
// a fresh pointer for optional fields.
func setField(fv reflect.Value, field Field, value interface{}) {
	rv := reflect.ValueOf(value)
	if field.Optional {
		ptr := reflect.New(fv.Type().Elem())
		ptr.Elem().Set(rv)
		fv.Set(ptr)
		return
	}
	fv.Set(rv)
}
