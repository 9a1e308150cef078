package query

import (
	"maps"
	"slices"

	"github.com/syssam/querykit"
)

// Kinds reported by querykit.UnmappedFieldError.
const (
	KindFilter            = "Filter"
	KindSortField         = "SortField"
	KindAggregateQuery    = "AggregateQuery"
	KindAggregateResponse = "AggregateResponse"
)

// TransformFilter renames every field referenced by f using m. Groups keep
// their shape: a nil And or Or stays nil and an empty one stays empty.
// Comparison operands are copied as they are. A field missing from m fails
// the whole transform with a *querykit.UnmappedFieldError, and two fields
// mapping to the same target with a *querykit.FieldCollisionError.
func TransformFilter[From, To any](f Filter[From], m FieldMap[From, To]) (Filter[To], error) {
	var out Filter[To]
	if f.Fields != nil {
		fields, err := renameKeys(f.Fields, m, KindFilter)
		if err != nil {
			return Filter[To]{}, err
		}
		out.Fields = fields
	}
	var err error
	if out.And, err = transformGroup(f.And, m); err != nil {
		return Filter[To]{}, err
	}
	if out.Or, err = transformGroup(f.Or, m); err != nil {
		return Filter[To]{}, err
	}
	return out, nil
}

func transformGroup[From, To any](group []Filter[From], m FieldMap[From, To]) ([]Filter[To], error) {
	if group == nil {
		return nil, nil
	}
	out := make([]Filter[To], len(group))
	for i, f := range group {
		tf, err := TransformFilter(f, m)
		if err != nil {
			return nil, err
		}
		out[i] = tf
	}
	return out, nil
}

// TransformSort renames the field of every sort key using m, keeping order,
// direction and null ordering.
func TransformSort[From, To any](sorting []SortField, m FieldMap[From, To]) ([]SortField, error) {
	if sorting == nil {
		return nil, nil
	}
	out := make([]SortField, len(sorting))
	for i, s := range sorting {
		to, ok := m.Lookup(s.Field)
		if !ok {
			return nil, querykit.NewUnmappedFieldError(s.Field, KindSortField)
		}
		s.Field = to
		out[i] = s
	}
	return out, nil
}

// TransformQuery renames the filter and sort fields of q using m. Paging is
// copied unchanged.
func TransformQuery[From, To any](q Query[From], m FieldMap[From, To]) (Query[To], error) {
	f, err := TransformFilter(q.Filter, m)
	if err != nil {
		return Query[To]{}, err
	}
	s, err := TransformSort(q.Sorting, m)
	if err != nil {
		return Query[To]{}, err
	}
	return Query[To]{Filter: f, Paging: q.Paging, Sorting: s}, nil
}

// TransformAggregateQuery renames every field of every reduction list.
func TransformAggregateQuery[From, To any](q AggregateQuery[From], m FieldMap[From, To]) (AggregateQuery[To], error) {
	var (
		out AggregateQuery[To]
		err error
	)
	for _, p := range []struct {
		in  []string
		out *[]string
	}{
		{q.Count, &out.Count},
		{q.Sum, &out.Sum},
		{q.Avg, &out.Avg},
		{q.Min, &out.Min},
		{q.Max, &out.Max},
		{q.GroupBy, &out.GroupBy},
	} {
		if *p.out, err = renameFields(p.in, m); err != nil {
			return AggregateQuery[To]{}, err
		}
	}
	return out, nil
}

func renameFields[From, To any](fields []string, m FieldMap[From, To]) ([]string, error) {
	if fields == nil {
		return nil, nil
	}
	out := make([]string, len(fields))
	for i, field := range fields {
		to, ok := m.Lookup(field)
		if !ok {
			return nil, querykit.NewUnmappedFieldError(field, KindAggregateQuery)
		}
		out[i] = to
	}
	return out, nil
}

// TransformAggregateResponse renames the keys of each aggregate map of r
// independently.
func TransformAggregateResponse[From, To any](r AggregateResponse[From], m FieldMap[From, To]) (AggregateResponse[To], error) {
	var (
		out AggregateResponse[To]
		err error
	)
	if out.Count, err = renameKeys(r.Count, m, KindAggregateResponse); err != nil {
		return AggregateResponse[To]{}, err
	}
	if out.Sum, err = renameKeys(r.Sum, m, KindAggregateResponse); err != nil {
		return AggregateResponse[To]{}, err
	}
	if out.Avg, err = renameKeys(r.Avg, m, KindAggregateResponse); err != nil {
		return AggregateResponse[To]{}, err
	}
	if out.Min, err = renameKeys(r.Min, m, KindAggregateResponse); err != nil {
		return AggregateResponse[To]{}, err
	}
	if out.Max, err = renameKeys(r.Max, m, KindAggregateResponse); err != nil {
		return AggregateResponse[To]{}, err
	}
	if out.GroupBy, err = renameKeys(r.GroupBy, m, KindAggregateResponse); err != nil {
		return AggregateResponse[To]{}, err
	}
	return out, nil
}

func renameKeys[V any, From, To any](in map[string]V, m FieldMap[From, To], kind string) (map[string]V, error) {
	if in == nil {
		return nil, nil
	}
	out := make(map[string]V, len(in))
	from := make(map[string]string, len(in))
	for _, field := range slices.Sorted(maps.Keys(in)) {
		to, ok := m.Lookup(field)
		if !ok {
			return nil, querykit.NewUnmappedFieldError(field, kind)
		}
		if other, dup := from[to]; dup {
			return nil, &querykit.FieldCollisionError{Field: other, Other: field, Target: to, Kind: kind}
		}
		from[to] = field
		out[to] = in[field]
	}
	return out, nil
}
