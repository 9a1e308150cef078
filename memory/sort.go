package memory

import (
	"slices"

	"github.com/syssam/querykit/query"
)

// sortRecords orders recs in place, stable for equal keys. Nil values sort
// first for ascending fields and last for descending ones unless the field
// says otherwise.
func sortRecords[T any](get Accessor[T], recs []T, sorting []query.SortField) error {
	for _, s := range sorting {
		if len(recs) == 0 {
			break
		}
		if _, ok := get(recs[0], s.Field); !ok {
			return &UnknownFieldError{Field: s.Field}
		}
	}
	slices.SortStableFunc(recs, func(a, b T) int {
		for _, s := range sorting {
			va, _ := get(a, s.Field)
			vb, _ := get(b, s.Field)
			if c := compareSorted(va, vb, s); c != 0 {
				return c
			}
		}
		return 0
	})
	return nil
}

func compareSorted(a, b any, s query.SortField) int {
	desc := s.Direction == query.DESC
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0
		}
		nullsFirst := !desc
		switch s.Nulls {
		case query.NullsFirst:
			nullsFirst = true
		case query.NullsLast:
			nullsFirst = false
		}
		if (a == nil) == nullsFirst {
			return -1
		}
		return 1
	}
	c, _ := compare(a, b)
	if desc {
		return -c
	}
	return c
}
