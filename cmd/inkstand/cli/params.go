// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// FlagsFromParams returns a flag set bound to the tagged fields of
// params, a pointer to a struct. It panics on a malformed params type,
// which is a programming error.
//
//	var params showParams
//	command := &cli.Command{
//	    Flags: func() *pflag.FlagSet {
//	        return cli.FlagsFromParams("show", &params)
//	    },
//	    Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
//	        // params is populated here
//	    },
//	}
func FlagsFromParams(name string, params any) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if err := BindFlags(params, flagSet); err != nil {
		panic(fmt.Sprintf("cli.FlagsFromParams(%q): %v", name, err))
	}
	return flagSet
}

// BindFlags registers a flag for each tagged field of params, a
// pointer to a struct. Embedded structs are walked, so parameter
// groups such as [JSONOutput] compose by embedding.
//
// Tags:
//
//   - flag:"name" or flag:"name,n" gives the long name and an optional
//     one-letter shorthand. Untagged fields are skipped.
//   - desc:"text" is the help text.
//   - default:"value" is parsed as the field's type. A []string default
//     is comma separated.
//
// Field types: string, bool, int, []string.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Pointer || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStruct(value.Elem(), flagSet)
}

// flagSpec is a field's flag tag set, parsed.
type flagSpec struct {
	name, shorthand, usage, fallback string
}

func specFor(field reflect.StructField) (flagSpec, bool) {
	tag, ok := field.Tag.Lookup("flag")
	if !ok || tag == "" {
		return flagSpec{}, false
	}
	name, shorthand, _ := strings.Cut(tag, ",")
	return flagSpec{
		name:      name,
		shorthand: shorthand,
		usage:     field.Tag.Get("desc"),
		fallback:  field.Tag.Get("default"),
	}, true
}

func bindStruct(structValue reflect.Value, flagSet *pflag.FlagSet) error {
	structType := structValue.Type()
	for index := range structType.NumField() {
		field := structType.Field(index)
		fieldValue := structValue.Field(index)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := bindStruct(fieldValue, flagSet); err != nil {
				return fmt.Errorf("embedded %s: %w", field.Name, err)
			}
			continue
		}

		spec, ok := specFor(field)
		if !ok {
			continue
		}
		if !fieldValue.CanAddr() {
			return fmt.Errorf("field %s: not addressable", field.Name)
		}
		if err := spec.bind(fieldValue.Addr().Interface(), flagSet); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

func (s flagSpec) bind(target any, flagSet *pflag.FlagSet) error {
	switch target := target.(type) {
	case *string:
		flagSet.StringVarP(target, s.name, s.shorthand, s.fallback, s.usage)

	case *bool:
		fallback, err := parseDefault(s, strconv.ParseBool)
		if err != nil {
			return err
		}
		flagSet.BoolVarP(target, s.name, s.shorthand, fallback, s.usage)

	case *int:
		fallback, err := parseDefault(s, strconv.Atoi)
		if err != nil {
			return err
		}
		flagSet.IntVarP(target, s.name, s.shorthand, fallback, s.usage)

	case *[]string:
		var fallback []string
		if s.fallback != "" {
			fallback = strings.Split(s.fallback, ",")
		}
		// StringArray, not StringSlice: tags and field filters may
		// contain commas.
		flagSet.StringArrayVarP(target, s.name, s.shorthand, fallback, s.usage)

	default:
		return fmt.Errorf("unsupported type %T for flag --%s", target, s.name)
	}
	return nil
}

// parseDefault parses the default tag, or returns the zero value when
// there is none.
func parseDefault[T any](s flagSpec, parse func(string) (T, error)) (T, error) {
	var zero T
	if s.fallback == "" {
		return zero, nil
	}
	value, err := parse(s.fallback)
	if err != nil {
		return zero, fmt.Errorf("default for --%s: %w", s.name, err)
	}
	return value, nil
}
