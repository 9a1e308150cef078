package query

// CastFilter retags f as a filter over To without renaming any field.
// Relation bindings use it to move filters across the untyped relation
// boundary of a QueryService.
func CastFilter[To, From any](f Filter[From]) Filter[To] {
	return Filter[To]{
		Fields: f.Fields,
		And:    castGroup[To](f.And),
		Or:     castGroup[To](f.Or),
	}
}

func castGroup[To, From any](group []Filter[From]) []Filter[To] {
	if group == nil {
		return nil
	}
	out := make([]Filter[To], len(group))
	for i, f := range group {
		out[i] = CastFilter[To](f)
	}
	return out
}

// CastQuery retags q as a query over To without renaming any field.
func CastQuery[To, From any](q Query[From]) Query[To] {
	return Query[To]{
		Filter:  CastFilter[To](q.Filter),
		Paging:  q.Paging,
		Sorting: q.Sorting,
	}
}

// CastAggregateQuery retags q as an aggregate query over To.
func CastAggregateQuery[To, From any](q AggregateQuery[From]) AggregateQuery[To] {
	return AggregateQuery[To]{
		Count:   q.Count,
		Sum:     q.Sum,
		Avg:     q.Avg,
		Min:     q.Min,
		Max:     q.Max,
		GroupBy: q.GroupBy,
	}
}

// CastAggregateResponses retags every response as a response over To.
func CastAggregateResponses[To, From any](rs []AggregateResponse[From]) []AggregateResponse[To] {
	if rs == nil {
		return nil
	}
	out := make([]AggregateResponse[To], len(rs))
	for i, r := range rs {
		out[i] = AggregateResponse[To]{
			Count:   r.Count,
			Sum:     r.Sum,
			Avg:     r.Avg,
			Min:     r.Min,
			Max:     r.Max,
			GroupBy: r.GroupBy,
		}
	}
	return out
}
