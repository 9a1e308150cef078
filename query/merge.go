package query

// MergeFilter conjoins a and b. An empty side yields the other side
// unchanged; otherwise the result is And(a, b).
func MergeFilter[T any](a, b Filter[T]) Filter[T] {
	switch {
	case a.IsEmpty():
		return b
	case b.IsEmpty():
		return a
	}
	return And(a, b)
}

// MergeQuery narrows base with override. Filters are conjoined; the paging
// and sorting of override win when set, otherwise those of base are kept.
// It is used to apply an authorization or relation filter to a caller query
// without discarding the caller's paging and sorting.
func MergeQuery[T any](base, override Query[T]) Query[T] {
	merged := Query[T]{
		Filter:  MergeFilter(base.Filter, override.Filter),
		Paging:  base.Paging,
		Sorting: base.Sorting,
	}
	if override.Paging != nil {
		merged.Paging = override.Paging
	}
	if override.Sorting != nil {
		merged.Sorting = override.Sorting
	}
	return merged
}
