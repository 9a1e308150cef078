package privacy

import (
	"context"

	"github.com/syssam/querykit/query"
	"github.com/syssam/querykit/service"
)

// AuthorizedQueryService evaluates a policy before every read and write of
// its base service and narrows the operation with the policy's filter.
//
// Creates are checked for a decision only, since there are no stored
// records to narrow. Relation reads start from a record the caller already
// holds and pass through; protect the related service with its own policy.
type AuthorizedQueryService[T any] struct {
	*service.ProxyQueryService[T]
	policy Policy[T]
}

// NewAuthorizedQueryService wraps base with policy.
func NewAuthorizedQueryService[T any](base service.QueryService[T], policy Policy[T]) *AuthorizedQueryService[T] {
	return &AuthorizedQueryService[T]{
		ProxyQueryService: service.NewProxyQueryService(base),
		policy:            policy,
	}
}

func (s *AuthorizedQueryService[T]) filter(ctx context.Context, op Op, f query.Filter[T]) (query.Filter[T], error) {
	pf, err := s.policy.Eval(ctx, op)
	if err != nil {
		return query.Filter[T]{}, err
	}
	return query.MergeFilter(pf, f), nil
}

func (s *AuthorizedQueryService[T]) Query(ctx context.Context, q query.Query[T]) ([]T, error) {
	pf, err := s.policy.Eval(ctx, OpRead)
	if err != nil {
		return nil, err
	}
	return s.Base().Query(ctx, query.MergeQuery(query.Query[T]{Filter: pf}, q))
}

func (s *AuthorizedQueryService[T]) Count(ctx context.Context, f query.Filter[T]) (int, error) {
	f, err := s.filter(ctx, OpRead, f)
	if err != nil {
		return 0, err
	}
	return s.Base().Count(ctx, f)
}

func (s *AuthorizedQueryService[T]) Aggregate(ctx context.Context, f query.Filter[T], aq query.AggregateQuery[T]) ([]query.AggregateResponse[T], error) {
	f, err := s.filter(ctx, OpRead, f)
	if err != nil {
		return nil, err
	}
	return s.Base().Aggregate(ctx, f, aq)
}

func (s *AuthorizedQueryService[T]) FindByID(ctx context.Context, id any, f query.Filter[T]) (T, bool, error) {
	f, err := s.filter(ctx, OpRead, f)
	if err != nil {
		var zero T
		return zero, false, err
	}
	return s.Base().FindByID(ctx, id, f)
}

func (s *AuthorizedQueryService[T]) GetByID(ctx context.Context, id any, f query.Filter[T]) (T, error) {
	f, err := s.filter(ctx, OpRead, f)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.Base().GetByID(ctx, id, f)
}

func (s *AuthorizedQueryService[T]) CreateOne(ctx context.Context, rec T) (T, error) {
	if _, err := s.policy.Eval(ctx, OpCreate); err != nil {
		var zero T
		return zero, err
	}
	return s.Base().CreateOne(ctx, rec)
}

func (s *AuthorizedQueryService[T]) CreateMany(ctx context.Context, recs []T) ([]T, error) {
	if _, err := s.policy.Eval(ctx, OpCreate); err != nil {
		return nil, err
	}
	return s.Base().CreateMany(ctx, recs)
}

func (s *AuthorizedQueryService[T]) UpdateOne(ctx context.Context, id any, u service.Update, f query.Filter[T]) (T, error) {
	f, err := s.filter(ctx, OpUpdate, f)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.Base().UpdateOne(ctx, id, u, f)
}

func (s *AuthorizedQueryService[T]) UpdateMany(ctx context.Context, u service.Update, f query.Filter[T]) (int, error) {
	f, err := s.filter(ctx, OpUpdate, f)
	if err != nil {
		return 0, err
	}
	return s.Base().UpdateMany(ctx, u, f)
}

func (s *AuthorizedQueryService[T]) DeleteOne(ctx context.Context, id any, f query.Filter[T]) (T, error) {
	f, err := s.filter(ctx, OpDelete, f)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.Base().DeleteOne(ctx, id, f)
}

func (s *AuthorizedQueryService[T]) DeleteMany(ctx context.Context, f query.Filter[T]) (int, error) {
	f, err := s.filter(ctx, OpDelete, f)
	if err != nil {
		return 0, err
	}
	return s.Base().DeleteMany(ctx, f)
}

func (s *AuthorizedQueryService[T]) AddRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[T]) (T, error) {
	f, err := s.filter(ctx, OpUpdate, f)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.Base().AddRelations(ctx, relation, id, relationIDs, f)
}

func (s *AuthorizedQueryService[T]) SetRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[T]) (T, error) {
	f, err := s.filter(ctx, OpUpdate, f)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.Base().SetRelations(ctx, relation, id, relationIDs, f)
}

func (s *AuthorizedQueryService[T]) SetRelation(ctx context.Context, relation string, id any, relationID any, f query.Filter[T]) (T, error) {
	f, err := s.filter(ctx, OpUpdate, f)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.Base().SetRelation(ctx, relation, id, relationID, f)
}

func (s *AuthorizedQueryService[T]) RemoveRelation(ctx context.Context, relation string, id any, relationID any, f query.Filter[T]) (T, error) {
	f, err := s.filter(ctx, OpUpdate, f)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.Base().RemoveRelation(ctx, relation, id, relationID, f)
}

func (s *AuthorizedQueryService[T]) RemoveRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[T]) (T, error) {
	f, err := s.filter(ctx, OpUpdate, f)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.Base().RemoveRelations(ctx, relation, id, relationIDs, f)
}

var _ service.QueryService[struct{}] = (*AuthorizedQueryService[struct{}])(nil)
