package service

import (
	"context"
	"maps"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/querykit/query"
)

// Relation binds a relation name to the service that stores the related
// records and to the base query selecting the records related to one owner.
// Build it with Bind.
type Relation[T any] interface {
	queryRelations(ctx context.Context, rec T, q query.Query[any]) ([]any, error)
	findRelation(ctx context.Context, rec T, f query.Filter[any]) (any, error)
	countRelations(ctx context.Context, rec T, f query.Filter[any]) (int, error)
	aggregateRelations(ctx context.Context, rec T, f query.Filter[any], aq query.AggregateQuery[any]) ([]query.AggregateResponse[any], error)
}

// Relations maps relation names to their bindings.
type Relations[T any] map[string]Relation[T]

// Bind returns the binding of a relation stored in svc. fn derives the base
// query for one owner, typically a foreign key filter.
//
//	service.Bind(orders, func(c Customer) query.Query[Order] {
//		return query.Query[Order]{Filter: query.Where[Order]("customerId", query.Eq(c.ID))}
//	})
func Bind[T, R any](svc QueryService[R], fn func(T) query.Query[R]) Relation[T] {
	return &binding[T, R]{svc: svc, fn: fn}
}

type binding[T, R any] struct {
	svc QueryService[R]
	fn  func(T) query.Query[R]
}

func (b *binding[T, R]) query(rec T, q query.Query[any]) query.Query[R] {
	return query.MergeQuery(b.fn(rec), query.CastQuery[R](q))
}

func (b *binding[T, R]) filter(rec T, f query.Filter[any]) query.Filter[R] {
	return query.MergeFilter(b.fn(rec).Filter, query.CastFilter[R](f))
}

func (b *binding[T, R]) queryRelations(ctx context.Context, rec T, q query.Query[any]) ([]any, error) {
	rs, err := b.svc.Query(ctx, b.query(rec, q))
	if err != nil {
		return nil, err
	}
	out := make([]any, len(rs))
	for i, r := range rs {
		out[i] = r
	}
	return out, nil
}

func (b *binding[T, R]) findRelation(ctx context.Context, rec T, f query.Filter[any]) (any, error) {
	q := b.query(rec, query.Query[any]{Filter: f}).Limit(1)
	rs, err := b.svc.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return nil, nil
	}
	return rs[0], nil
}

func (b *binding[T, R]) countRelations(ctx context.Context, rec T, f query.Filter[any]) (int, error) {
	return b.svc.Count(ctx, b.filter(rec, f))
}

func (b *binding[T, R]) aggregateRelations(ctx context.Context, rec T, f query.Filter[any], aq query.AggregateQuery[any]) ([]query.AggregateResponse[any], error) {
	rs, err := b.svc.Aggregate(ctx, b.filter(rec, f), query.CastAggregateQuery[R](aq))
	if err != nil {
		return nil, err
	}
	return query.CastAggregateResponses[any](rs), nil
}

type relationConfig struct {
	concurrency int
}

// RelationOption configures a RelationQueryService.
type RelationOption func(*relationConfig)

// WithConcurrency sets how many owners of a batch are resolved at once.
// The default of 1 resolves them in order and stops at the first failure.
func WithConcurrency(n int) RelationOption {
	return func(c *relationConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// RelationQueryService answers relation reads for its bound relations and
// forwards everything else, including unknown relations, to its base.
type RelationQueryService[T any] struct {
	*ProxyQueryService[T]
	relations Relations[T]
	cfg       relationConfig
}

// NewRelationQueryService returns a service resolving relations through the
// given bindings on top of base.
func NewRelationQueryService[T any](base QueryService[T], relations Relations[T], opts ...RelationOption) *RelationQueryService[T] {
	cfg := relationConfig{concurrency: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &RelationQueryService[T]{
		ProxyQueryService: NewProxyQueryService(base),
		relations:         maps.Clone(relations),
		cfg:               cfg,
	}
}

// NewRelationRouter returns a RelationQueryService with no base service.
// Only bound relations can be read; every other operation fails with a
// *querykit.NotImplementedError.
func NewRelationRouter[T any](relations Relations[T], opts ...RelationOption) *RelationQueryService[T] {
	return NewRelationQueryService[T](NoOpQueryService[T]{}, relations, opts...)
}

// Relation returns the binding registered under name.
func (s *RelationQueryService[T]) Relation(name string) (Relation[T], bool) {
	r, ok := s.relations[name]
	return r, ok
}

func (s *RelationQueryService[T]) QueryRelations(ctx context.Context, relation string, rec T, q query.Query[any]) ([]any, error) {
	r, ok := s.relations[relation]
	if !ok {
		return s.base.QueryRelations(ctx, relation, rec, q)
	}
	return r.queryRelations(ctx, rec, q)
}

func (s *RelationQueryService[T]) QueryRelationsBatch(ctx context.Context, relation string, recs []T, q query.Query[any]) ([][]any, error) {
	r, ok := s.relations[relation]
	if !ok {
		return s.base.QueryRelationsBatch(ctx, relation, recs, q)
	}
	// Paging applies per owner, so only unpaged queries can be combined.
	if bq, ok := r.(batchQuerier[T]); ok && q.Paging == nil {
		return bq.queryRelationsBatch(ctx, recs, q)
	}
	return fanOut(ctx, s.cfg.concurrency, recs, func(ctx context.Context, rec T) ([]any, error) {
		return r.queryRelations(ctx, rec, q)
	})
}

func (s *RelationQueryService[T]) FindRelation(ctx context.Context, relation string, rec T, f query.Filter[any]) (any, error) {
	r, ok := s.relations[relation]
	if !ok {
		return s.base.FindRelation(ctx, relation, rec, f)
	}
	return r.findRelation(ctx, rec, f)
}

func (s *RelationQueryService[T]) FindRelationBatch(ctx context.Context, relation string, recs []T, f query.Filter[any]) ([]any, error) {
	r, ok := s.relations[relation]
	if !ok {
		return s.base.FindRelationBatch(ctx, relation, recs, f)
	}
	return fanOut(ctx, s.cfg.concurrency, recs, func(ctx context.Context, rec T) (any, error) {
		return r.findRelation(ctx, rec, f)
	})
}

func (s *RelationQueryService[T]) CountRelations(ctx context.Context, relation string, rec T, f query.Filter[any]) (int, error) {
	r, ok := s.relations[relation]
	if !ok {
		return s.base.CountRelations(ctx, relation, rec, f)
	}
	return r.countRelations(ctx, rec, f)
}

func (s *RelationQueryService[T]) CountRelationsBatch(ctx context.Context, relation string, recs []T, f query.Filter[any]) ([]int, error) {
	r, ok := s.relations[relation]
	if !ok {
		return s.base.CountRelationsBatch(ctx, relation, recs, f)
	}
	return fanOut(ctx, s.cfg.concurrency, recs, func(ctx context.Context, rec T) (int, error) {
		return r.countRelations(ctx, rec, f)
	})
}

func (s *RelationQueryService[T]) AggregateRelations(ctx context.Context, relation string, rec T, f query.Filter[any], aq query.AggregateQuery[any]) ([]query.AggregateResponse[any], error) {
	r, ok := s.relations[relation]
	if !ok {
		return s.base.AggregateRelations(ctx, relation, rec, f, aq)
	}
	return r.aggregateRelations(ctx, rec, f, aq)
}

func (s *RelationQueryService[T]) AggregateRelationsBatch(ctx context.Context, relation string, recs []T, f query.Filter[any], aq query.AggregateQuery[any]) ([][]query.AggregateResponse[any], error) {
	r, ok := s.relations[relation]
	if !ok {
		return s.base.AggregateRelationsBatch(ctx, relation, recs, f, aq)
	}
	return fanOut(ctx, s.cfg.concurrency, recs, func(ctx context.Context, rec T) ([]query.AggregateResponse[any], error) {
		return r.aggregateRelations(ctx, rec, f, aq)
	})
}

// fanOut calls fn for every record and stores the result at the record's
// index. The first failure cancels the group and is returned alone; owners
// not yet started are skipped.
func fanOut[T, V any](ctx context.Context, limit int, recs []T, fn func(context.Context, T) (V, error)) ([]V, error) {
	out := make([]V, len(recs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, rec := range recs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := fn(gctx, rec)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ QueryService[struct{}] = (*RelationQueryService[struct{}])(nil)
