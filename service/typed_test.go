package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/querykit"
	"github.com/syssam/querykit/query"
	"github.com/syssam/querykit/service"
)

func newCustomerRouter() *service.RelationQueryService[customer] {
	return service.NewRelationRouter(service.Relations[customer]{
		"orders": service.Bind(newOrders(), byCustomer),
	})
}

func TestTypedRelations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	customers := newCustomerRouter()
	open := query.Where[order]("status", query.Eq("open"))

	t.Run("QueryRelations", func(t *testing.T) {
		got, err := service.QueryRelations(ctx, customers, "orders", c1, query.Query[order]{
			Sorting: []query.SortField{query.Asc("total")},
		})
		require.NoError(t, err)
		assert.Equal(t, []order{o2, o1}, got)
	})

	t.Run("QueryRelationsBatch", func(t *testing.T) {
		got, err := service.QueryRelationsBatch(ctx, customers, "orders", []customer{c2, c3}, query.Query[order]{Filter: open})
		require.NoError(t, err)
		assert.Equal(t, [][]order{{o3}, {}}, got)
	})

	t.Run("FindRelation", func(t *testing.T) {
		got, ok, err := service.FindRelation(ctx, customers, "orders", c2, open)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, o3, got)

		got, ok, err = service.FindRelation(ctx, customers, "orders", c3, open)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, got)
	})

	t.Run("FindRelationBatch", func(t *testing.T) {
		got, err := service.FindRelationBatch(ctx, customers, "orders", []customer{c3, c2}, open)
		require.NoError(t, err)
		assert.Equal(t, []order{{}, o3}, got)
	})

	t.Run("CountRelations", func(t *testing.T) {
		n, err := service.CountRelations(ctx, customers, "orders", c1, open)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		ns, err := service.CountRelationsBatch(ctx, customers, "orders", []customer{c1, c2, c3}, query.Filter[order]{})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1, 0}, ns)
	})

	t.Run("AggregateRelations", func(t *testing.T) {
		aq := query.AggregateQuery[order]{Avg: []string{"total"}}
		got, err := service.AggregateRelations(ctx, customers, "orders", c1, query.Filter[order]{}, aq)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, map[string]float64{"total": 7.5}, got[0].Avg)

		batch, err := service.AggregateRelationsBatch(ctx, customers, "orders", []customer{c1, c2}, open, aq)
		require.NoError(t, err)
		require.Len(t, batch, 2)
		assert.Equal(t, map[string]float64{"total": 10}, batch[0][0].Avg)
		assert.Equal(t, map[string]float64{"total": 7}, batch[1][0].Avg)
	})

	t.Run("wrong record type", func(t *testing.T) {
		_, err := service.QueryRelations(ctx, customers, "orders", c1, query.Query[customer]{})
		require.Error(t, err)
		assert.True(t, querykit.IsRelationType(err))

		var rte *querykit.RelationTypeError
		require.True(t, errors.As(err, &rte))
		assert.Equal(t, "orders", rte.Relation)
		assert.Equal(t, "service_test.customer", rte.Want)
		assert.Equal(t, "service_test.order", rte.Got)

		_, _, err = service.FindRelation(ctx, customers, "orders", c1, query.Filter[customer]{})
		assert.ErrorIs(t, err, querykit.ErrRelationType)
	})

	t.Run("errors pass through", func(t *testing.T) {
		_, err := service.QueryRelations(ctx, customers, "invoices", c1, query.Query[order]{})
		assert.True(t, querykit.IsNotImplemented(err))
	})
}
