package service

import (
	"context"

	"github.com/syssam/querykit/query"
)

// Update is a partial record keyed by field name.
type Update map[string]any

// Reader reads records of type T.
type Reader[T any] interface {
	// Query returns the records matching q.
	Query(ctx context.Context, q query.Query[T]) ([]T, error)
	// Count returns the number of records matching f.
	Count(ctx context.Context, f query.Filter[T]) (int, error)
	// Aggregate computes aq over the records matching f, one response per group.
	Aggregate(ctx context.Context, f query.Filter[T], aq query.AggregateQuery[T]) ([]query.AggregateResponse[T], error)
	// FindByID returns the record with the given id that also matches f.
	// The boolean is false if there is none.
	FindByID(ctx context.Context, id any, f query.Filter[T]) (T, bool, error)
	// GetByID is like FindByID but fails with a *querykit.NotFoundError.
	GetByID(ctx context.Context, id any, f query.Filter[T]) (T, error)
}

// Writer creates, updates and deletes records of type T. Every by-id
// operation only affects a record that also matches the given filter.
type Writer[T any] interface {
	CreateOne(ctx context.Context, rec T) (T, error)
	CreateMany(ctx context.Context, recs []T) ([]T, error)
	UpdateOne(ctx context.Context, id any, u Update, f query.Filter[T]) (T, error)
	// UpdateMany returns the number of updated records.
	UpdateMany(ctx context.Context, u Update, f query.Filter[T]) (int, error)
	DeleteOne(ctx context.Context, id any, f query.Filter[T]) (T, error)
	// DeleteMany returns the number of deleted records.
	DeleteMany(ctx context.Context, f query.Filter[T]) (int, error)
}

// RelationReader traverses named relations of T.
//
// Related records are untyped at this boundary because one service answers
// for relations of many types; use the package level helpers such as
// QueryRelations to get typed results. Batch methods correlate by index:
// result i belongs to record i.
type RelationReader[T any] interface {
	QueryRelations(ctx context.Context, relation string, rec T, q query.Query[any]) ([]any, error)
	QueryRelationsBatch(ctx context.Context, relation string, recs []T, q query.Query[any]) ([][]any, error)
	// FindRelation returns the first related record, or nil if there is none.
	FindRelation(ctx context.Context, relation string, rec T, f query.Filter[any]) (any, error)
	FindRelationBatch(ctx context.Context, relation string, recs []T, f query.Filter[any]) ([]any, error)
	CountRelations(ctx context.Context, relation string, rec T, f query.Filter[any]) (int, error)
	CountRelationsBatch(ctx context.Context, relation string, recs []T, f query.Filter[any]) ([]int, error)
	AggregateRelations(ctx context.Context, relation string, rec T, f query.Filter[any], aq query.AggregateQuery[any]) ([]query.AggregateResponse[any], error)
	AggregateRelationsBatch(ctx context.Context, relation string, recs []T, f query.Filter[any], aq query.AggregateQuery[any]) ([][]query.AggregateResponse[any], error)
}

// RelationWriter links and unlinks related records of the record with id.
type RelationWriter[T any] interface {
	AddRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[T]) (T, error)
	SetRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[T]) (T, error)
	SetRelation(ctx context.Context, relation string, id any, relationID any, f query.Filter[T]) (T, error)
	RemoveRelation(ctx context.Context, relation string, id any, relationID any, f query.Filter[T]) (T, error)
	RemoveRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[T]) (T, error)
}

// QueryService is the full set of operations over records of type T.
type QueryService[T any] interface {
	Reader[T]
	Writer[T]
	RelationReader[T]
	RelationWriter[T]
}
