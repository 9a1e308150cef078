package service

import (
	"context"

	"github.com/syssam/querykit"
	"github.com/syssam/querykit/query"
)

// NoOpQueryService fails every operation with a *querykit.NotImplementedError.
// Backends embed it for the operations they do not support.
type NoOpQueryService[T any] struct{}

func notImplemented(op string) error {
	return querykit.NewNotImplementedError(op)
}

func (NoOpQueryService[T]) Query(context.Context, query.Query[T]) ([]T, error) {
	return nil, notImplemented("Query")
}

func (NoOpQueryService[T]) Count(context.Context, query.Filter[T]) (int, error) {
	return 0, notImplemented("Count")
}

func (NoOpQueryService[T]) Aggregate(context.Context, query.Filter[T], query.AggregateQuery[T]) ([]query.AggregateResponse[T], error) {
	return nil, notImplemented("Aggregate")
}

func (NoOpQueryService[T]) FindByID(context.Context, any, query.Filter[T]) (T, bool, error) {
	var zero T
	return zero, false, notImplemented("FindByID")
}

func (NoOpQueryService[T]) GetByID(context.Context, any, query.Filter[T]) (T, error) {
	var zero T
	return zero, notImplemented("GetByID")
}

func (NoOpQueryService[T]) CreateOne(context.Context, T) (T, error) {
	var zero T
	return zero, notImplemented("CreateOne")
}

func (NoOpQueryService[T]) CreateMany(context.Context, []T) ([]T, error) {
	return nil, notImplemented("CreateMany")
}

func (NoOpQueryService[T]) UpdateOne(context.Context, any, Update, query.Filter[T]) (T, error) {
	var zero T
	return zero, notImplemented("UpdateOne")
}

func (NoOpQueryService[T]) UpdateMany(context.Context, Update, query.Filter[T]) (int, error) {
	return 0, notImplemented("UpdateMany")
}

func (NoOpQueryService[T]) DeleteOne(context.Context, any, query.Filter[T]) (T, error) {
	var zero T
	return zero, notImplemented("DeleteOne")
}

func (NoOpQueryService[T]) DeleteMany(context.Context, query.Filter[T]) (int, error) {
	return 0, notImplemented("DeleteMany")
}

func (NoOpQueryService[T]) QueryRelations(context.Context, string, T, query.Query[any]) ([]any, error) {
	return nil, notImplemented("QueryRelations")
}

func (NoOpQueryService[T]) QueryRelationsBatch(context.Context, string, []T, query.Query[any]) ([][]any, error) {
	return nil, notImplemented("QueryRelationsBatch")
}

func (NoOpQueryService[T]) FindRelation(context.Context, string, T, query.Filter[any]) (any, error) {
	return nil, notImplemented("FindRelation")
}

func (NoOpQueryService[T]) FindRelationBatch(context.Context, string, []T, query.Filter[any]) ([]any, error) {
	return nil, notImplemented("FindRelationBatch")
}

func (NoOpQueryService[T]) CountRelations(context.Context, string, T, query.Filter[any]) (int, error) {
	return 0, notImplemented("CountRelations")
}

func (NoOpQueryService[T]) CountRelationsBatch(context.Context, string, []T, query.Filter[any]) ([]int, error) {
	return nil, notImplemented("CountRelationsBatch")
}

func (NoOpQueryService[T]) AggregateRelations(context.Context, string, T, query.Filter[any], query.AggregateQuery[any]) ([]query.AggregateResponse[any], error) {
	return nil, notImplemented("AggregateRelations")
}

func (NoOpQueryService[T]) AggregateRelationsBatch(context.Context, string, []T, query.Filter[any], query.AggregateQuery[any]) ([][]query.AggregateResponse[any], error) {
	return nil, notImplemented("AggregateRelationsBatch")
}

func (NoOpQueryService[T]) AddRelations(context.Context, string, any, []any, query.Filter[T]) (T, error) {
	var zero T
	return zero, notImplemented("AddRelations")
}

func (NoOpQueryService[T]) SetRelations(context.Context, string, any, []any, query.Filter[T]) (T, error) {
	var zero T
	return zero, notImplemented("SetRelations")
}

func (NoOpQueryService[T]) SetRelation(context.Context, string, any, any, query.Filter[T]) (T, error) {
	var zero T
	return zero, notImplemented("SetRelation")
}

func (NoOpQueryService[T]) RemoveRelation(context.Context, string, any, any, query.Filter[T]) (T, error) {
	var zero T
	return zero, notImplemented("RemoveRelation")
}

func (NoOpQueryService[T]) RemoveRelations(context.Context, string, any, []any, query.Filter[T]) (T, error) {
	var zero T
	return zero, notImplemented("RemoveRelations")
}

var _ QueryService[struct{}] = NoOpQueryService[struct{}]{}
