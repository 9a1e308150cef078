package memory

import (
	"fmt"
	"strings"

	"github.com/syssam/querykit/query"
)

type group[T any] struct {
	values map[string]any
	recs   []T
}

// aggregate computes aq over recs. Without GroupBy there is exactly one
// response; with GroupBy there is one per distinct combination of values,
// in first seen order.
func aggregate[T any](get Accessor[T], recs []T, aq query.AggregateQuery[T]) ([]query.AggregateResponse[T], error) {
	for _, fields := range [][]string{aq.Count, aq.Sum, aq.Avg, aq.Min, aq.Max, aq.GroupBy} {
		for _, f := range fields {
			if len(recs) == 0 {
				break
			}
			if _, ok := get(recs[0], f); !ok {
				return nil, &UnknownFieldError{Field: f}
			}
		}
	}
	groups := groupRecords(get, recs, aq.GroupBy)
	out := make([]query.AggregateResponse[T], 0, len(groups))
	for _, g := range groups {
		r, err := aggregateGroup(get, g.recs, aq)
		if err != nil {
			return nil, err
		}
		r.GroupBy = g.values
		out = append(out, r)
	}
	return out, nil
}

func groupRecords[T any](get Accessor[T], recs []T, by []string) []*group[T] {
	if len(by) == 0 {
		return []*group[T]{{recs: recs}}
	}
	var (
		groups []*group[T]
		index  = make(map[string]*group[T])
	)
	for _, rec := range recs {
		values := make(map[string]any, len(by))
		var key strings.Builder
		for _, f := range by {
			v, _ := get(rec, f)
			values[f] = v
			fmt.Fprintf(&key, "%T:%v|", v, v)
		}
		g, ok := index[key.String()]
		if !ok {
			g = &group[T]{values: values}
			index[key.String()] = g
			groups = append(groups, g)
		}
		g.recs = append(g.recs, rec)
	}
	return groups
}

func aggregateGroup[T any](get Accessor[T], recs []T, aq query.AggregateQuery[T]) (query.AggregateResponse[T], error) {
	var r query.AggregateResponse[T]
	if len(aq.Count) > 0 {
		r.Count = make(map[string]int64, len(aq.Count))
		for _, f := range aq.Count {
			var n int64
			for _, rec := range recs {
				if v, _ := get(rec, f); v != nil {
					n++
				}
			}
			r.Count[f] = n
		}
	}
	if len(aq.Sum) > 0 || len(aq.Avg) > 0 {
		sums := make(map[string]float64)
		counts := make(map[string]int)
		for _, f := range append(append([]string(nil), aq.Sum...), aq.Avg...) {
			if _, done := counts[f]; done {
				continue
			}
			var sum float64
			n := 0
			for _, rec := range recs {
				v, _ := get(rec, f)
				if v == nil {
					continue
				}
				x, ok := number(v)
				if !ok {
					return r, fmt.Errorf("memory: cannot aggregate non-numeric field %q", f)
				}
				sum += x
				n++
			}
			sums[f], counts[f] = sum, n
		}
		if len(aq.Sum) > 0 {
			r.Sum = make(map[string]float64, len(aq.Sum))
			for _, f := range aq.Sum {
				if counts[f] > 0 {
					r.Sum[f] = sums[f]
				}
			}
		}
		if len(aq.Avg) > 0 {
			r.Avg = make(map[string]float64, len(aq.Avg))
			for _, f := range aq.Avg {
				if counts[f] > 0 {
					r.Avg[f] = sums[f] / float64(counts[f])
				}
			}
		}
	}
	if len(aq.Min) > 0 {
		r.Min = extremes(get, recs, aq.Min, -1)
	}
	if len(aq.Max) > 0 {
		r.Max = extremes(get, recs, aq.Max, 1)
	}
	return r, nil
}

// extremes returns, per field, the smallest (sign -1) or largest (sign 1)
// non-nil value. Fields without values are left out.
func extremes[T any](get Accessor[T], recs []T, fields []string, sign int) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		var best any
		for _, rec := range recs {
			v, _ := get(rec, f)
			if v == nil {
				continue
			}
			if best == nil {
				best = v
				continue
			}
			if c, ok := compare(v, best); ok && c*sign > 0 {
				best = v
			}
		}
		if best != nil {
			out[f] = best
		}
	}
	return out
}
