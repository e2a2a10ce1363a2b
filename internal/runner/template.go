package runner

import (
	"errors"
	"fmt"
	"os"
	"reflect"
)

// ExpandTemplates expands ${VAR} references in place in the struct pointed to
// by in. Strings, *string and []string fields are only expanded when they
// carry a `template` tag (`template:"-"` opts out). map[string]string fields
// are always expanded. Nested structs, struct pointers and slices of either
// are walked whether tagged or not.
func ExpandTemplates[T any](in *T, variables map[string]string) error {
	if in == nil {
		return nil
	}

	v := reflect.ValueOf(in).Elem()
	if v.Kind() != reflect.Struct && v.Kind() != reflect.Slice {
		return fmt.Errorf("cannot expand templates in %s: expected a struct or a slice", v.Type())
	}

	return expandValue(v, false, variables)
}

func expandValue(v reflect.Value, tagged bool, variables map[string]string) error {
	switch v.Kind() {
	case reflect.String:
		if !tagged {
			return nil
		}
		expanded, err := Expand(v.String(), variables)
		if err != nil {
			return err
		}
		v.SetString(expanded)

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return expandValue(v.Elem(), tagged, variables)

	case reflect.Struct:
		t := v.Type()
		for i := range t.NumField() {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			tag, ok := sf.Tag.Lookup("template")
			if err := expandValue(v.Field(i), ok && tag != "-", variables); err != nil {
				return fmt.Errorf("%s: %w", sf.Name, err)
			}
		}

	case reflect.Slice:
		for i := range v.Len() {
			if err := expandValue(v.Index(i), tagged, variables); err != nil {
				return err
			}
		}

	case reflect.Map:
		if v.IsNil() || v.Type() != reflect.TypeFor[map[string]string]() {
			return nil
		}
		expanded, err := ExpandMap(v.Interface().(map[string]string), variables)
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(expanded))
	}

	return nil
}

// Expand replaces ${VAR} and $VAR references using variables. "$$" yields a
// literal dollar sign. Every reference to a variable outside the map is
// reported.
func Expand(value string, variables map[string]string) (string, error) {
	var errs error

	result := os.Expand(value, func(key string) string {
		if key == "$" {
			return "$"
		}
		if val, ok := variables[key]; ok {
			return val
		}
		errs = errors.Join(errs, fmt.Errorf("environment variable %q is not in the allowed list", key))
		return ""
	})

	if errs != nil {
		return "", errs
	}

	return result, nil
}

// ExpandMap expands all values of a map into a new map.
func ExpandMap(values map[string]string, variables map[string]string) (map[string]string, error) {
	if values == nil {
		return nil, nil
	}

	result := make(map[string]string, len(values))
	var errs error

	for k, v := range values {
		expanded, err := Expand(v, variables)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("%s: %w", k, err))
			continue
		}
		result[k] = expanded
	}

	if errs != nil {
		return nil, errs
	}

	return result, nil
}
