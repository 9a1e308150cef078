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

func TestNoOpQueryService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var svc service.QueryService[order] = service.NoOpQueryService[order]{}

	tests := []struct {
		op   string
		call func() error
	}{
		{"Query", func() error { _, err := svc.Query(ctx, query.Query[order]{}); return err }},
		{"Count", func() error { _, err := svc.Count(ctx, query.Filter[order]{}); return err }},
		{"Aggregate", func() error {
			_, err := svc.Aggregate(ctx, query.Filter[order]{}, query.AggregateQuery[order]{})
			return err
		}},
		{"FindByID", func() error { _, _, err := svc.FindByID(ctx, 1, query.Filter[order]{}); return err }},
		{"GetByID", func() error { _, err := svc.GetByID(ctx, 1, query.Filter[order]{}); return err }},
		{"CreateOne", func() error { _, err := svc.CreateOne(ctx, o1); return err }},
		{"CreateMany", func() error { _, err := svc.CreateMany(ctx, []order{o1}); return err }},
		{"UpdateOne", func() error { _, err := svc.UpdateOne(ctx, 1, service.Update{}, query.Filter[order]{}); return err }},
		{"UpdateMany", func() error { _, err := svc.UpdateMany(ctx, service.Update{}, query.Filter[order]{}); return err }},
		{"DeleteOne", func() error { _, err := svc.DeleteOne(ctx, 1, query.Filter[order]{}); return err }},
		{"DeleteMany", func() error { _, err := svc.DeleteMany(ctx, query.Filter[order]{}); return err }},
		{"QueryRelations", func() error { _, err := svc.QueryRelations(ctx, "lines", o1, query.Query[any]{}); return err }},
		{"QueryRelationsBatch", func() error {
			_, err := svc.QueryRelationsBatch(ctx, "lines", []order{o1}, query.Query[any]{})
			return err
		}},
		{"FindRelation", func() error { _, err := svc.FindRelation(ctx, "lines", o1, query.Filter[any]{}); return err }},
		{"FindRelationBatch", func() error {
			_, err := svc.FindRelationBatch(ctx, "lines", []order{o1}, query.Filter[any]{})
			return err
		}},
		{"CountRelations", func() error { _, err := svc.CountRelations(ctx, "lines", o1, query.Filter[any]{}); return err }},
		{"CountRelationsBatch", func() error {
			_, err := svc.CountRelationsBatch(ctx, "lines", []order{o1}, query.Filter[any]{})
			return err
		}},
		{"AggregateRelations", func() error {
			_, err := svc.AggregateRelations(ctx, "lines", o1, query.Filter[any]{}, query.AggregateQuery[any]{})
			return err
		}},
		{"AggregateRelationsBatch", func() error {
			_, err := svc.AggregateRelationsBatch(ctx, "lines", []order{o1}, query.Filter[any]{}, query.AggregateQuery[any]{})
			return err
		}},
		{"AddRelations", func() error {
			_, err := svc.AddRelations(ctx, "lines", 1, []any{2}, query.Filter[order]{})
			return err
		}},
		{"SetRelations", func() error {
			_, err := svc.SetRelations(ctx, "lines", 1, []any{2}, query.Filter[order]{})
			return err
		}},
		{"SetRelation", func() error { _, err := svc.SetRelation(ctx, "lines", 1, 2, query.Filter[order]{}); return err }},
		{"RemoveRelation", func() error {
			_, err := svc.RemoveRelation(ctx, "lines", 1, 2, query.Filter[order]{})
			return err
		}},
		{"RemoveRelations", func() error {
			_, err := svc.RemoveRelations(ctx, "lines", 1, []any{2}, query.Filter[order]{})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			err := tt.call()
			var nie *querykit.NotImplementedError
			require.True(t, errors.As(err, &nie))
			assert.Equal(t, tt.op, nie.Op)
			assert.ErrorIs(t, err, querykit.ErrNotImplemented)
		})
	}
}

func TestProxyQueryService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	orders := newOrders()
	proxy := service.NewProxyQueryService[order](orders)
	assert.Same(t, orders, proxy.Base())

	got, err := proxy.Query(ctx, query.Query[order]{Filter: query.Where[order]("status", query.Eq("open"))})
	require.NoError(t, err)
	assert.Equal(t, []order{o1, o3}, got)

	rec, err := proxy.UpdateOne(ctx, 3, service.Update{"status": "closed"}, query.Filter[order]{})
	require.NoError(t, err)
	assert.Equal(t, "closed", rec.Status)

	n, err := orders.Count(ctx, query.Where[order]("status", query.Eq("closed")))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = proxy.QueryRelations(ctx, "lines", o1, query.Query[any]{})
	assert.True(t, querykit.IsNotImplemented(err))
}
