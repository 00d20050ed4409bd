package utils

import (
	"fmt"
	"reflect"
)

var ColumnTag = "db"

// StructTagValues lists the column names of a record in field order. Embedded
// structs contribute their columns in place.
func StructTagValues(input any) []string {
	result := make([]string, 0)
	walkColumns(structValue(input), func(column string, _ reflect.Value) {
		result = append(result, column)
	})
	return result
}

// StructToMap maps column names to field values, skipping any column listed in omit.
func StructToMap(input any, omit ...string) map[string]any {
	skip := make(map[string]bool, len(omit))
	for _, column := range omit {
		skip[column] = true
	}

	result := make(map[string]any)
	walkColumns(structValue(input), func(column string, v reflect.Value) {
		if skip[column] {
			return
		}
		result[column] = v.Interface()
	})
	return result
}

func structValue(input any) reflect.Value {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	return v
}

func walkColumns(v reflect.Value, fn func(column string, field reflect.Value)) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct && field.Tag.Get(ColumnTag) == "" {
			walkColumns(v.Field(i), fn)
			continue
		}

		if field.PkgPath != "" {
			continue
		}

		tagValue := field.Tag.Get(ColumnTag)
		if tagValue == "" || tagValue == "-" {
			continue
		}

		fn(tagValue, v.Field(i))
	}
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)
}
