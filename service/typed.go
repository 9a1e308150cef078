package service

import (
	"context"
	"fmt"
	"reflect"

	"github.com/syssam/querykit"
	"github.com/syssam/querykit/query"
)

// QueryRelations queries the relation of rec and asserts its records are Rs.
func QueryRelations[R, T any](ctx context.Context, s RelationReader[T], relation string, rec T, q query.Query[R]) ([]R, error) {
	vs, err := s.QueryRelations(ctx, relation, rec, query.CastQuery[any](q))
	if err != nil {
		return nil, err
	}
	return assertAll[R](relation, vs)
}

// QueryRelationsBatch is the batch form of QueryRelations.
func QueryRelationsBatch[R, T any](ctx context.Context, s RelationReader[T], relation string, recs []T, q query.Query[R]) ([][]R, error) {
	vss, err := s.QueryRelationsBatch(ctx, relation, recs, query.CastQuery[any](q))
	if err != nil {
		return nil, err
	}
	out := make([][]R, len(vss))
	for i, vs := range vss {
		if out[i], err = assertAll[R](relation, vs); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FindRelation returns the first related record of rec. The boolean is
// false if there is none.
func FindRelation[R, T any](ctx context.Context, s RelationReader[T], relation string, rec T, f query.Filter[R]) (R, bool, error) {
	var zero R
	v, err := s.FindRelation(ctx, relation, rec, query.CastFilter[any](f))
	if err != nil || v == nil {
		return zero, false, err
	}
	r, err := assert[R](relation, v)
	if err != nil {
		return zero, false, err
	}
	return r, true, nil
}

// FindRelationBatch is the batch form of FindRelation. Owners without a
// related record get the zero R.
func FindRelationBatch[R, T any](ctx context.Context, s RelationReader[T], relation string, recs []T, f query.Filter[R]) ([]R, error) {
	vs, err := s.FindRelationBatch(ctx, relation, recs, query.CastFilter[any](f))
	if err != nil {
		return nil, err
	}
	out := make([]R, len(vs))
	for i, v := range vs {
		if v == nil {
			continue
		}
		if out[i], err = assert[R](relation, v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// CountRelations counts the related records of rec matching f.
func CountRelations[R, T any](ctx context.Context, s RelationReader[T], relation string, rec T, f query.Filter[R]) (int, error) {
	return s.CountRelations(ctx, relation, rec, query.CastFilter[any](f))
}

// CountRelationsBatch is the batch form of CountRelations.
func CountRelationsBatch[R, T any](ctx context.Context, s RelationReader[T], relation string, recs []T, f query.Filter[R]) ([]int, error) {
	return s.CountRelationsBatch(ctx, relation, recs, query.CastFilter[any](f))
}

// AggregateRelations aggregates the related records of rec matching f.
func AggregateRelations[R, T any](ctx context.Context, s RelationReader[T], relation string, rec T, f query.Filter[R], aq query.AggregateQuery[R]) ([]query.AggregateResponse[R], error) {
	rs, err := s.AggregateRelations(ctx, relation, rec, query.CastFilter[any](f), query.CastAggregateQuery[any](aq))
	if err != nil {
		return nil, err
	}
	return query.CastAggregateResponses[R](rs), nil
}

// AggregateRelationsBatch is the batch form of AggregateRelations.
func AggregateRelationsBatch[R, T any](ctx context.Context, s RelationReader[T], relation string, recs []T, f query.Filter[R], aq query.AggregateQuery[R]) ([][]query.AggregateResponse[R], error) {
	rss, err := s.AggregateRelationsBatch(ctx, relation, recs, query.CastFilter[any](f), query.CastAggregateQuery[any](aq))
	if err != nil {
		return nil, err
	}
	out := make([][]query.AggregateResponse[R], len(rss))
	for i, rs := range rss {
		out[i] = query.CastAggregateResponses[R](rs)
	}
	return out, nil
}

func assert[R any](relation string, v any) (R, error) {
	r, ok := v.(R)
	if !ok {
		return r, &querykit.RelationTypeError{
			Relation: relation,
			Want:     reflect.TypeFor[R]().String(),
			Got:      fmt.Sprintf("%T", v),
		}
	}
	return r, nil
}

func assertAll[R any](relation string, vs []any) ([]R, error) {
	if vs == nil {
		return nil, nil
	}
	out := make([]R, len(vs))
	for i, v := range vs {
		r, err := assert[R](relation, v)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}
