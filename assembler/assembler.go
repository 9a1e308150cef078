// Package assembler converts records and queries between a DTO type exposed
// to callers and the entity type a persistence service stores.
package assembler

import (
	"github.com/syssam/querykit"
	"github.com/syssam/querykit/query"
	"github.com/syssam/querykit/service"
)

// KindUpdate is the kind reported by querykit.UnmappedFieldError for update
// patches.
const KindUpdate = "Update"

// Assembler converts between DTO and Entity space.
type Assembler[DTO, Entity any] interface {
	ConvertToDTO(e Entity) DTO
	ConvertToEntity(d DTO) Entity
	ConvertQuery(q query.Query[DTO]) (query.Query[Entity], error)
	ConvertFilter(f query.Filter[DTO]) (query.Filter[Entity], error)
	ConvertAggregateQuery(aq query.AggregateQuery[DTO]) (query.AggregateQuery[Entity], error)
	ConvertAggregateResponse(r query.AggregateResponse[Entity]) (query.AggregateResponse[DTO], error)
	ConvertUpdate(u service.Update) (service.Update, error)
}

// FieldMapAssembler converts records with a pair of functions and queries
// with a field map.
type FieldMapAssembler[DTO, Entity any] struct {
	toDTO    func(Entity) DTO
	toEntity func(DTO) Entity
	fields   query.FieldMap[DTO, Entity]
	inverse  query.FieldMap[Entity, DTO]
}

// New returns an assembler renaming DTO fields to entity fields with m.
// Aggregate responses are renamed back with the inverse of m.
func New[DTO, Entity any](toDTO func(Entity) DTO, toEntity func(DTO) Entity, m query.FieldMap[DTO, Entity]) *FieldMapAssembler[DTO, Entity] {
	return &FieldMapAssembler[DTO, Entity]{
		toDTO:    toDTO,
		toEntity: toEntity,
		fields:   m,
		inverse:  m.Invert(),
	}
}

func (a *FieldMapAssembler[DTO, Entity]) ConvertToDTO(e Entity) DTO {
	return a.toDTO(e)
}

func (a *FieldMapAssembler[DTO, Entity]) ConvertToEntity(d DTO) Entity {
	return a.toEntity(d)
}

func (a *FieldMapAssembler[DTO, Entity]) ConvertQuery(q query.Query[DTO]) (query.Query[Entity], error) {
	return query.TransformQuery(q, a.fields)
}

func (a *FieldMapAssembler[DTO, Entity]) ConvertFilter(f query.Filter[DTO]) (query.Filter[Entity], error) {
	return query.TransformFilter(f, a.fields)
}

func (a *FieldMapAssembler[DTO, Entity]) ConvertAggregateQuery(aq query.AggregateQuery[DTO]) (query.AggregateQuery[Entity], error) {
	return query.TransformAggregateQuery(aq, a.fields)
}

func (a *FieldMapAssembler[DTO, Entity]) ConvertAggregateResponse(r query.AggregateResponse[Entity]) (query.AggregateResponse[DTO], error) {
	return query.TransformAggregateResponse(r, a.inverse)
}

// ConvertUpdate renames the keys of u.
func (a *FieldMapAssembler[DTO, Entity]) ConvertUpdate(u service.Update) (service.Update, error) {
	if u == nil {
		return nil, nil
	}
	out := make(service.Update, len(u))
	for field, v := range u {
		to, ok := a.fields.Lookup(field)
		if !ok {
			return nil, querykit.NewUnmappedFieldError(field, KindUpdate)
		}
		out[to] = v
	}
	return out, nil
}

// IdentityAssembler converts nothing. Use it for services whose DTO is the
// stored entity.
type IdentityAssembler[T any] struct{}

// Identity returns the identity assembler of T.
func Identity[T any]() IdentityAssembler[T] {
	return IdentityAssembler[T]{}
}

func (IdentityAssembler[T]) ConvertToDTO(e T) T    { return e }
func (IdentityAssembler[T]) ConvertToEntity(d T) T { return d }

func (IdentityAssembler[T]) ConvertQuery(q query.Query[T]) (query.Query[T], error) {
	return q, nil
}

func (IdentityAssembler[T]) ConvertFilter(f query.Filter[T]) (query.Filter[T], error) {
	return f, nil
}

func (IdentityAssembler[T]) ConvertAggregateQuery(aq query.AggregateQuery[T]) (query.AggregateQuery[T], error) {
	return aq, nil
}

func (IdentityAssembler[T]) ConvertAggregateResponse(r query.AggregateResponse[T]) (query.AggregateResponse[T], error) {
	return r, nil
}

func (IdentityAssembler[T]) ConvertUpdate(u service.Update) (service.Update, error) {
	return u, nil
}

// ToDTOs converts every entity.
func ToDTOs[DTO, Entity any](a Assembler[DTO, Entity], es []Entity) []DTO {
	if es == nil {
		return nil
	}
	out := make([]DTO, len(es))
	for i, e := range es {
		out[i] = a.ConvertToDTO(e)
	}
	return out
}

// ToEntities converts every DTO.
func ToEntities[DTO, Entity any](a Assembler[DTO, Entity], ds []DTO) []Entity {
	if ds == nil {
		return nil
	}
	out := make([]Entity, len(ds))
	for i, d := range ds {
		out[i] = a.ConvertToEntity(d)
	}
	return out
}

// ConvertAggregateResponses converts every response.
func ConvertAggregateResponses[DTO, Entity any](a Assembler[DTO, Entity], rs []query.AggregateResponse[Entity]) ([]query.AggregateResponse[DTO], error) {
	if rs == nil {
		return nil, nil
	}
	out := make([]query.AggregateResponse[DTO], len(rs))
	for i, r := range rs {
		dr, err := a.ConvertAggregateResponse(r)
		if err != nil {
			return nil, err
		}
		out[i] = dr
	}
	return out, nil
}

var (
	_ Assembler[struct{}, struct{}] = (*FieldMapAssembler[struct{}, struct{}])(nil)
	_ Assembler[struct{}, struct{}] = IdentityAssembler[struct{}]{}
)
