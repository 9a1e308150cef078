package query

import (
	"slices"
)

// Fields returns the sorted, distinct field names referenced anywhere in f.
func Fields[T any](f Filter[T]) []string {
	seen := make(map[string]struct{})
	collectFields(f, seen)
	fields := make([]string, 0, len(seen))
	for field := range seen {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	return fields
}

func collectFields[T any](f Filter[T], seen map[string]struct{}) {
	for field := range f.Fields {
		seen[field] = struct{}{}
	}
	for _, sub := range f.And {
		collectFields(sub, seen)
	}
	for _, sub := range f.Or {
		collectFields(sub, seen)
	}
}

// ComparisonsFor returns every comparison on field in f, depth first:
// own fields before And groups before Or groups.
func ComparisonsFor[T any](f Filter[T], field string) []Comparison {
	var out []Comparison
	if c, ok := f.Fields[field]; ok {
		out = append(out, c)
	}
	for _, sub := range f.And {
		out = append(out, ComparisonsFor(sub, field)...)
	}
	for _, sub := range f.Or {
		out = append(out, ComparisonsFor(sub, field)...)
	}
	return out
}

// Omit returns f without any comparison on the given fields. Groups left
// without content are removed from their parent.
func Omit[T any](f Filter[T], fields ...string) Filter[T] {
	var out Filter[T]
	for field, c := range f.Fields {
		if slices.Contains(fields, field) {
			continue
		}
		if out.Fields == nil {
			out.Fields = make(map[string]Comparison, len(f.Fields))
		}
		out.Fields[field] = c
	}
	out.And = omitGroup(f.And, fields)
	out.Or = omitGroup(f.Or, fields)
	return out
}

func omitGroup[T any](group []Filter[T], fields []string) []Filter[T] {
	if group == nil {
		return nil
	}
	var out []Filter[T]
	for _, sub := range group {
		if o := Omit(sub, fields...); !o.IsEmpty() {
			out = append(out, o)
		}
	}
	return out
}
