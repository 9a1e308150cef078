package service

import (
	"context"

	"github.com/syssam/querykit/query"
)

// BindKeyed binds a relation whose records hold their owner's key in field,
// such as orders holding a customerId. Single reads filter on field == key.
// Unpaged batch queries load the records of every owner with one
// field in (keys...) query and regroup them by relKey.
func BindKeyed[T, R any, K comparable](svc QueryService[R], field string, ownerKey func(T) K, relKey func(R) K) Relation[T] {
	return &keyedBinding[T, R, K]{
		binding: &binding[T, R]{
			svc: svc,
			fn: func(rec T) query.Query[R] {
				return query.Query[R]{Filter: query.Where[R](field, query.Eq(ownerKey(rec)))}
			},
		},
		field:    field,
		ownerKey: ownerKey,
		relKey:   relKey,
	}
}

type keyedBinding[T, R any, K comparable] struct {
	*binding[T, R]
	field    string
	ownerKey func(T) K
	relKey   func(R) K
}

// batchQuerier is implemented by bindings that can load the relations of
// many owners at once.
type batchQuerier[T any] interface {
	queryRelationsBatch(ctx context.Context, recs []T, q query.Query[any]) ([][]any, error)
}

func (b *keyedBinding[T, R, K]) queryRelationsBatch(ctx context.Context, recs []T, q query.Query[any]) ([][]any, error) {
	keys := make([]K, len(recs))
	in := make([]any, 0, len(recs))
	seen := make(map[K]struct{}, len(recs))
	for i, rec := range recs {
		k := b.ownerKey(rec)
		keys[i] = k
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			in = append(in, k)
		}
	}
	base := query.Query[R]{Filter: query.Where[R](b.field, query.In(in...))}
	rs, err := b.svc.Query(ctx, query.MergeQuery(base, query.CastQuery[R](q)))
	if err != nil {
		return nil, err
	}
	groups := orderGroupsByKeys(keys, groupByKey(rs, b.relKey))
	out := make([][]any, len(groups))
	for i, g := range groups {
		out[i] = make([]any, len(g))
		for j, r := range g {
			out[i][j] = r
		}
	}
	return out, nil
}

// groupByKey groups values sharing a key, keeping their order.
func groupByKey[K comparable, V any](values []V, keyFn func(V) K) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// orderGroupsByKeys returns the group of keys[i] at index i.
func orderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		result[i] = groups[key]
	}
	return result
}
