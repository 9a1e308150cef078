package memory

import (
	"reflect"
	"strings"
)

// Accessor returns the value of the named field of rec. The boolean is
// false if records have no such field. Pointer fields are dereferenced and
// nil pointers read as nil.
type Accessor[T any] func(rec T, field string) (any, bool)

// TagAccessor reads struct fields of T named by the given struct tag,
// falling back to the Go field name for untagged fields. Fields tagged "-"
// are hidden.
func TagAccessor[T any](tag string) Accessor[T] {
	index := fieldIndex(reflect.TypeFor[T](), tag)
	return func(rec T, field string) (any, bool) {
		idx, ok := index[field]
		if !ok {
			return nil, false
		}
		v := reflect.ValueOf(rec)
		for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return nil, true
			}
			v = v.Elem()
		}
		fv, err := v.FieldByIndexErr(idx)
		if err != nil {
			// Nil embedded pointer.
			return nil, true
		}
		return indirect(fv), true
	}
}

// fieldNames returns the names TagAccessor resolves for T.
func fieldNames[T any](tag string) map[string]struct{} {
	index := fieldIndex(reflect.TypeFor[T](), tag)
	names := make(map[string]struct{}, len(index))
	for name := range index {
		names[name] = struct{}{}
	}
	return names
}

func fieldIndex(t reflect.Type, tag string) map[string][]int {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	index := make(map[string][]int)
	if t.Kind() != reflect.Struct {
		return index
	}
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name := f.Name
		if v, ok := f.Tag.Lookup(tag); ok {
			v, _, _ = strings.Cut(v, ",")
			switch v {
			case "-":
				continue
			case "":
			default:
				name = v
			}
		}
		if _, dup := index[name]; !dup {
			index[name] = f.Index
		}
	}
	return index
}

func indirect(v reflect.Value) any {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.Interface()
}
