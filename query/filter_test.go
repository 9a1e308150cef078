package query_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/querykit/query"
)

func TestFilterString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		F query.Filter[todoDTO]
		S string
	}{
		{
			F: query.Filter[todoDTO]{},
			S: `true`,
		},
		{
			F: query.Filter[todoDTO]{Fields: map[string]query.Comparison{
				"tag":    query.In("fb", "ent"),
				"status": query.Eq("open"),
			}},
			S: `status == "open" && tag in ["fb","ent"]`,
		},
		{
			F: query.Filter[todoDTO]{
				Fields: map[string]query.Comparison{"status": query.Eq("open")},
				Or: []query.Filter[todoDTO]{
					query.Where[todoDTO]("priority", query.Gt(1)),
					query.Where[todoDTO]("tag", query.In("a", "b")),
				},
			},
			S: `status == "open" && (priority > 1 || tag in ["a","b"])`,
		},
		{
			F: query.Where[todoDTO]("age", query.Comparison{query.OpGte: 18, query.OpLt: 65}),
			S: `age >= 18 && age < 65`,
		},
		{
			F: query.And(
				query.Where[todoDTO]("name", query.ILike("%ada%")),
				query.Where[todoDTO]("deleted", query.IsNot(true)),
			),
			S: `ilike(name, "%ada%") && deleted is not true`,
		},
		{
			F: query.Where[todoDTO]("age", query.NotBetween(1, 5)),
			S: `not_between(age, 1, 5)`,
		},
		{
			F: query.Where[todoDTO]("parent", query.Is(nil)),
			S: `parent is nil`,
		},
		{
			F: query.Or(
				query.And(
					query.Where[todoDTO]("a", query.Eq(1)),
					query.Where[todoDTO]("b", query.Eq(2)),
				),
				query.Where[todoDTO]("c", query.NotIn(3)),
			),
			S: `((a == 1 && b == 2) || c not in [3])`,
		},
		{
			F: query.Filter[todoDTO]{Or: []query.Filter[todoDTO]{}},
			S: `false`,
		},
	}
	for i := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			assert.Equal(t, tests[i].S, tests[i].F.String())
		})
	}
}

func TestOps(t *testing.T) {
	t.Parallel()

	for _, op := range query.Ops() {
		assert.True(t, op.IsValid(), op)
	}
	assert.Len(t, query.Ops(), 16)
	assert.False(t, query.Op("contains").IsValid())
}

func TestFields(t *testing.T) {
	t.Parallel()

	f := query.Filter[todoDTO]{
		Fields: map[string]query.Comparison{"b": query.Eq(1)},
		And: []query.Filter[todoDTO]{
			query.Where[todoDTO]("a", query.Eq(1)),
			query.Or(query.Where[todoDTO]("c", query.Eq(1)), query.Where[todoDTO]("b", query.Gt(0))),
		},
	}
	assert.Equal(t, []string{"a", "b", "c"}, query.Fields(f))
	assert.Empty(t, query.Fields(query.Filter[todoDTO]{}))

	assert.Equal(t, []query.Comparison{query.Eq(1), query.Gt(0)}, query.ComparisonsFor(f, "b"))
	assert.Nil(t, query.ComparisonsFor(f, "z"))
}

func TestOmit(t *testing.T) {
	t.Parallel()

	f := query.Filter[todoDTO]{
		Fields: map[string]query.Comparison{"a": query.Eq(1), "b": query.Eq(2)},
		And: []query.Filter[todoDTO]{
			query.Where[todoDTO]("a", query.Gt(0)),
			query.Where[todoDTO]("c", query.Gt(0)),
		},
	}
	got := query.Omit(f, "a")
	assert.Equal(t, query.Filter[todoDTO]{
		Fields: map[string]query.Comparison{"b": query.Eq(2)},
		And:    []query.Filter[todoDTO]{query.Where[todoDTO]("c", query.Gt(0))},
	}, got)

	assert.True(t, query.Omit(query.Where[todoDTO]("a", query.Eq(1)), "a").IsEmpty())
}

func TestCast(t *testing.T) {
	t.Parallel()

	f := query.Filter[todoDTO]{
		Fields: map[string]query.Comparison{"id": query.Eq(1)},
		Or:     []query.Filter[todoDTO]{query.Where[todoDTO]("name", query.Eq("x"))},
	}
	q := query.Query[todoDTO]{Filter: f, Sorting: []query.SortField{query.Asc("id")}}

	cast := query.CastQuery[any](q)
	assert.Equal(t, f.String(), cast.Filter.String())
	assert.Nil(t, cast.Filter.And)
	assert.Len(t, cast.Filter.Or, 1)
	assert.Equal(t, q.Sorting, cast.Sorting)

	back := query.CastQuery[todoDTO](cast)
	assert.Equal(t, q, back)
}
