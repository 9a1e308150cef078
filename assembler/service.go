package assembler

import (
	"context"

	"github.com/syssam/querykit/query"
	"github.com/syssam/querykit/service"
)

// AssemblerQueryService exposes a QueryService of entities as a QueryService
// of DTOs. Inputs are converted to entity space, the wrapped service is
// called, and results are converted back.
//
// Relation queries and filters describe the related records, not DTO, so
// they pass through unchanged.
type AssemblerQueryService[DTO, Entity any] struct {
	svc service.QueryService[Entity]
	a   Assembler[DTO, Entity]
}

// NewQueryService wraps svc with a.
func NewQueryService[DTO, Entity any](svc service.QueryService[Entity], a Assembler[DTO, Entity]) *AssemblerQueryService[DTO, Entity] {
	return &AssemblerQueryService[DTO, Entity]{svc: svc, a: a}
}

// Assembler returns the assembler in use.
func (s *AssemblerQueryService[DTO, Entity]) Assembler() Assembler[DTO, Entity] {
	return s.a
}

func (s *AssemblerQueryService[DTO, Entity]) Query(ctx context.Context, q query.Query[DTO]) ([]DTO, error) {
	eq, err := s.a.ConvertQuery(q)
	if err != nil {
		return nil, err
	}
	es, err := s.svc.Query(ctx, eq)
	if err != nil {
		return nil, err
	}
	return ToDTOs(s.a, es), nil
}

func (s *AssemblerQueryService[DTO, Entity]) Count(ctx context.Context, f query.Filter[DTO]) (int, error) {
	ef, err := s.a.ConvertFilter(f)
	if err != nil {
		return 0, err
	}
	return s.svc.Count(ctx, ef)
}

func (s *AssemblerQueryService[DTO, Entity]) Aggregate(ctx context.Context, f query.Filter[DTO], aq query.AggregateQuery[DTO]) ([]query.AggregateResponse[DTO], error) {
	ef, err := s.a.ConvertFilter(f)
	if err != nil {
		return nil, err
	}
	eaq, err := s.a.ConvertAggregateQuery(aq)
	if err != nil {
		return nil, err
	}
	rs, err := s.svc.Aggregate(ctx, ef, eaq)
	if err != nil {
		return nil, err
	}
	return ConvertAggregateResponses(s.a, rs)
}

func (s *AssemblerQueryService[DTO, Entity]) FindByID(ctx context.Context, id any, f query.Filter[DTO]) (DTO, bool, error) {
	var zero DTO
	ef, err := s.a.ConvertFilter(f)
	if err != nil {
		return zero, false, err
	}
	e, ok, err := s.svc.FindByID(ctx, id, ef)
	if err != nil || !ok {
		return zero, false, err
	}
	return s.a.ConvertToDTO(e), true, nil
}

func (s *AssemblerQueryService[DTO, Entity]) GetByID(ctx context.Context, id any, f query.Filter[DTO]) (DTO, error) {
	ef, err := s.a.ConvertFilter(f)
	if err != nil {
		var zero DTO
		return zero, err
	}
	return s.one(s.svc.GetByID(ctx, id, ef))
}

// one converts the entity of a single record result.
func (s *AssemblerQueryService[DTO, Entity]) one(e Entity, err error) (DTO, error) {
	if err != nil {
		var zero DTO
		return zero, err
	}
	return s.a.ConvertToDTO(e), nil
}

func (s *AssemblerQueryService[DTO, Entity]) CreateOne(ctx context.Context, rec DTO) (DTO, error) {
	return s.one(s.svc.CreateOne(ctx, s.a.ConvertToEntity(rec)))
}

func (s *AssemblerQueryService[DTO, Entity]) CreateMany(ctx context.Context, recs []DTO) ([]DTO, error) {
	es, err := s.svc.CreateMany(ctx, ToEntities(s.a, recs))
	if err != nil {
		return nil, err
	}
	return ToDTOs(s.a, es), nil
}

func (s *AssemblerQueryService[DTO, Entity]) UpdateOne(ctx context.Context, id any, u service.Update, f query.Filter[DTO]) (DTO, error) {
	var zero DTO
	eu, err := s.a.ConvertUpdate(u)
	if err != nil {
		return zero, err
	}
	ef, err := s.a.ConvertFilter(f)
	if err != nil {
		return zero, err
	}
	return s.one(s.svc.UpdateOne(ctx, id, eu, ef))
}

func (s *AssemblerQueryService[DTO, Entity]) UpdateMany(ctx context.Context, u service.Update, f query.Filter[DTO]) (int, error) {
	eu, err := s.a.ConvertUpdate(u)
	if err != nil {
		return 0, err
	}
	ef, err := s.a.ConvertFilter(f)
	if err != nil {
		return 0, err
	}
	return s.svc.UpdateMany(ctx, eu, ef)
}

func (s *AssemblerQueryService[DTO, Entity]) DeleteOne(ctx context.Context, id any, f query.Filter[DTO]) (DTO, error) {
	ef, err := s.a.ConvertFilter(f)
	if err != nil {
		var zero DTO
		return zero, err
	}
	return s.one(s.svc.DeleteOne(ctx, id, ef))
}

func (s *AssemblerQueryService[DTO, Entity]) DeleteMany(ctx context.Context, f query.Filter[DTO]) (int, error) {
	ef, err := s.a.ConvertFilter(f)
	if err != nil {
		return 0, err
	}
	return s.svc.DeleteMany(ctx, ef)
}

func (s *AssemblerQueryService[DTO, Entity]) QueryRelations(ctx context.Context, relation string, rec DTO, q query.Query[any]) ([]any, error) {
	return s.svc.QueryRelations(ctx, relation, s.a.ConvertToEntity(rec), q)
}

func (s *AssemblerQueryService[DTO, Entity]) QueryRelationsBatch(ctx context.Context, relation string, recs []DTO, q query.Query[any]) ([][]any, error) {
	rs, err := s.svc.QueryRelationsBatch(ctx, relation, ToEntities(s.a, recs), q)
	if err != nil {
		return nil, err
	}
	return realign(len(recs), rs, func() []any { return []any{} }), nil
}

func (s *AssemblerQueryService[DTO, Entity]) FindRelation(ctx context.Context, relation string, rec DTO, f query.Filter[any]) (any, error) {
	return s.svc.FindRelation(ctx, relation, s.a.ConvertToEntity(rec), f)
}

func (s *AssemblerQueryService[DTO, Entity]) FindRelationBatch(ctx context.Context, relation string, recs []DTO, f query.Filter[any]) ([]any, error) {
	rs, err := s.svc.FindRelationBatch(ctx, relation, ToEntities(s.a, recs), f)
	if err != nil {
		return nil, err
	}
	return realign(len(recs), rs, func() any { return nil }), nil
}

func (s *AssemblerQueryService[DTO, Entity]) CountRelations(ctx context.Context, relation string, rec DTO, f query.Filter[any]) (int, error) {
	return s.svc.CountRelations(ctx, relation, s.a.ConvertToEntity(rec), f)
}

func (s *AssemblerQueryService[DTO, Entity]) CountRelationsBatch(ctx context.Context, relation string, recs []DTO, f query.Filter[any]) ([]int, error) {
	rs, err := s.svc.CountRelationsBatch(ctx, relation, ToEntities(s.a, recs), f)
	if err != nil {
		return nil, err
	}
	return realign(len(recs), rs, func() int { return 0 }), nil
}

func (s *AssemblerQueryService[DTO, Entity]) AggregateRelations(ctx context.Context, relation string, rec DTO, f query.Filter[any], aq query.AggregateQuery[any]) ([]query.AggregateResponse[any], error) {
	return s.svc.AggregateRelations(ctx, relation, s.a.ConvertToEntity(rec), f, aq)
}

func (s *AssemblerQueryService[DTO, Entity]) AggregateRelationsBatch(ctx context.Context, relation string, recs []DTO, f query.Filter[any], aq query.AggregateQuery[any]) ([][]query.AggregateResponse[any], error) {
	rs, err := s.svc.AggregateRelationsBatch(ctx, relation, ToEntities(s.a, recs), f, aq)
	if err != nil {
		return nil, err
	}
	return realign(len(recs), rs, func() []query.AggregateResponse[any] { return []query.AggregateResponse[any]{} }), nil
}

// realign returns n results where result i is rs[i], or empty() when the
// wrapped service reported nothing for the i-th record.
func realign[V any](n int, rs []V, empty func() V) []V {
	out := make([]V, n)
	for i := range out {
		if i < len(rs) && !isNil(rs[i]) {
			out[i] = rs[i]
			continue
		}
		out[i] = empty()
	}
	return out
}

func isNil(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case []any:
		return v == nil
	case []query.AggregateResponse[any]:
		return v == nil
	}
	return false
}

func (s *AssemblerQueryService[DTO, Entity]) AddRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[DTO]) (DTO, error) {
	ef, err := s.a.ConvertFilter(f)
	if err != nil {
		var zero DTO
		return zero, err
	}
	return s.one(s.svc.AddRelations(ctx, relation, id, relationIDs, ef))
}

func (s *AssemblerQueryService[DTO, Entity]) SetRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[DTO]) (DTO, error) {
	ef, err := s.a.ConvertFilter(f)
	if err != nil {
		var zero DTO
		return zero, err
	}
	return s.one(s.svc.SetRelations(ctx, relation, id, relationIDs, ef))
}

func (s *AssemblerQueryService[DTO, Entity]) SetRelation(ctx context.Context, relation string, id any, relationID any, f query.Filter[DTO]) (DTO, error) {
	ef, err := s.a.ConvertFilter(f)
	if err != nil {
		var zero DTO
		return zero, err
	}
	return s.one(s.svc.SetRelation(ctx, relation, id, relationID, ef))
}

func (s *AssemblerQueryService[DTO, Entity]) RemoveRelation(ctx context.Context, relation string, id any, relationID any, f query.Filter[DTO]) (DTO, error) {
	ef, err := s.a.ConvertFilter(f)
	if err != nil {
		var zero DTO
		return zero, err
	}
	return s.one(s.svc.RemoveRelation(ctx, relation, id, relationID, ef))
}

func (s *AssemblerQueryService[DTO, Entity]) RemoveRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[DTO]) (DTO, error) {
	ef, err := s.a.ConvertFilter(f)
	if err != nil {
		var zero DTO
		return zero, err
	}
	return s.one(s.svc.RemoveRelations(ctx, relation, id, relationIDs, ef))
}

var _ service.QueryService[struct{}] = (*AssemblerQueryService[struct{}, struct{}])(nil)
