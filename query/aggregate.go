package query

// AggregateQuery declares the reductions to compute per field, optionally
// grouped by GroupBy.
type AggregateQuery[T any] struct {
	Count   []string `msgpack:"count,omitempty"`
	Sum     []string `msgpack:"sum,omitempty"`
	Avg     []string `msgpack:"avg,omitempty"`
	Min     []string `msgpack:"min,omitempty"`
	Max     []string `msgpack:"max,omitempty"`
	GroupBy []string `msgpack:"groupBy,omitempty"`
}

// IsEmpty reports whether no reduction or grouping is requested.
func (q AggregateQuery[T]) IsEmpty() bool {
	return len(q.Count) == 0 && len(q.Sum) == 0 && len(q.Avg) == 0 &&
		len(q.Min) == 0 && len(q.Max) == 0 && len(q.GroupBy) == 0
}

// AggregateResponse holds the computed aggregates of one group. Count, Sum
// and Avg are always numeric; Min, Max and GroupBy keep the field's own type.
type AggregateResponse[T any] struct {
	Count   map[string]int64   `msgpack:"count,omitempty"`
	Sum     map[string]float64 `msgpack:"sum,omitempty"`
	Avg     map[string]float64 `msgpack:"avg,omitempty"`
	Min     map[string]any     `msgpack:"min,omitempty"`
	Max     map[string]any     `msgpack:"max,omitempty"`
	GroupBy map[string]any     `msgpack:"groupBy,omitempty"`
}
