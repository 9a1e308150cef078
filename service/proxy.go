package service

import (
	"context"

	"github.com/syssam/querykit/query"
)

// ProxyQueryService forwards every operation to a base service unchanged.
// Decorators embed it and override only what they change.
type ProxyQueryService[T any] struct {
	base QueryService[T]
}

// NewProxyQueryService returns a service forwarding to base.
func NewProxyQueryService[T any](base QueryService[T]) *ProxyQueryService[T] {
	return &ProxyQueryService[T]{base: base}
}

// Base returns the wrapped service.
func (p *ProxyQueryService[T]) Base() QueryService[T] {
	return p.base
}

func (p *ProxyQueryService[T]) Query(ctx context.Context, q query.Query[T]) ([]T, error) {
	return p.base.Query(ctx, q)
}

func (p *ProxyQueryService[T]) Count(ctx context.Context, f query.Filter[T]) (int, error) {
	return p.base.Count(ctx, f)
}

func (p *ProxyQueryService[T]) Aggregate(ctx context.Context, f query.Filter[T], aq query.AggregateQuery[T]) ([]query.AggregateResponse[T], error) {
	return p.base.Aggregate(ctx, f, aq)
}

func (p *ProxyQueryService[T]) FindByID(ctx context.Context, id any, f query.Filter[T]) (T, bool, error) {
	return p.base.FindByID(ctx, id, f)
}

func (p *ProxyQueryService[T]) GetByID(ctx context.Context, id any, f query.Filter[T]) (T, error) {
	return p.base.GetByID(ctx, id, f)
}

func (p *ProxyQueryService[T]) CreateOne(ctx context.Context, rec T) (T, error) {
	return p.base.CreateOne(ctx, rec)
}

func (p *ProxyQueryService[T]) CreateMany(ctx context.Context, recs []T) ([]T, error) {
	return p.base.CreateMany(ctx, recs)
}

func (p *ProxyQueryService[T]) UpdateOne(ctx context.Context, id any, u Update, f query.Filter[T]) (T, error) {
	return p.base.UpdateOne(ctx, id, u, f)
}

func (p *ProxyQueryService[T]) UpdateMany(ctx context.Context, u Update, f query.Filter[T]) (int, error) {
	return p.base.UpdateMany(ctx, u, f)
}

func (p *ProxyQueryService[T]) DeleteOne(ctx context.Context, id any, f query.Filter[T]) (T, error) {
	return p.base.DeleteOne(ctx, id, f)
}

func (p *ProxyQueryService[T]) DeleteMany(ctx context.Context, f query.Filter[T]) (int, error) {
	return p.base.DeleteMany(ctx, f)
}

func (p *ProxyQueryService[T]) QueryRelations(ctx context.Context, relation string, rec T, q query.Query[any]) ([]any, error) {
	return p.base.QueryRelations(ctx, relation, rec, q)
}

func (p *ProxyQueryService[T]) QueryRelationsBatch(ctx context.Context, relation string, recs []T, q query.Query[any]) ([][]any, error) {
	return p.base.QueryRelationsBatch(ctx, relation, recs, q)
}

func (p *ProxyQueryService[T]) FindRelation(ctx context.Context, relation string, rec T, f query.Filter[any]) (any, error) {
	return p.base.FindRelation(ctx, relation, rec, f)
}

func (p *ProxyQueryService[T]) FindRelationBatch(ctx context.Context, relation string, recs []T, f query.Filter[any]) ([]any, error) {
	return p.base.FindRelationBatch(ctx, relation, recs, f)
}

func (p *ProxyQueryService[T]) CountRelations(ctx context.Context, relation string, rec T, f query.Filter[any]) (int, error) {
	return p.base.CountRelations(ctx, relation, rec, f)
}

func (p *ProxyQueryService[T]) CountRelationsBatch(ctx context.Context, relation string, recs []T, f query.Filter[any]) ([]int, error) {
	return p.base.CountRelationsBatch(ctx, relation, recs, f)
}

func (p *ProxyQueryService[T]) AggregateRelations(ctx context.Context, relation string, rec T, f query.Filter[any], aq query.AggregateQuery[any]) ([]query.AggregateResponse[any], error) {
	return p.base.AggregateRelations(ctx, relation, rec, f, aq)
}

func (p *ProxyQueryService[T]) AggregateRelationsBatch(ctx context.Context, relation string, recs []T, f query.Filter[any], aq query.AggregateQuery[any]) ([][]query.AggregateResponse[any], error) {
	return p.base.AggregateRelationsBatch(ctx, relation, recs, f, aq)
}

func (p *ProxyQueryService[T]) AddRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[T]) (T, error) {
	return p.base.AddRelations(ctx, relation, id, relationIDs, f)
}

func (p *ProxyQueryService[T]) SetRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[T]) (T, error) {
	return p.base.SetRelations(ctx, relation, id, relationIDs, f)
}

func (p *ProxyQueryService[T]) SetRelation(ctx context.Context, relation string, id any, relationID any, f query.Filter[T]) (T, error) {
	return p.base.SetRelation(ctx, relation, id, relationID, f)
}

func (p *ProxyQueryService[T]) RemoveRelation(ctx context.Context, relation string, id any, relationID any, f query.Filter[T]) (T, error) {
	return p.base.RemoveRelation(ctx, relation, id, relationID, f)
}

func (p *ProxyQueryService[T]) RemoveRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[T]) (T, error) {
	return p.base.RemoveRelations(ctx, relation, id, relationIDs, f)
}

var _ QueryService[struct{}] = (*ProxyQueryService[struct{}])(nil)
