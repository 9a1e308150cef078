package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/querykit/memory"
	"github.com/syssam/querykit/query"
	"github.com/syssam/querykit/service"
)

type todoItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestCachedQueryService_Namespace(t *testing.T) {
	t.Parallel()

	svc := service.NewCachedQueryService[todoItem](service.NoOpQueryService[todoItem]{}, memory.NewCache())
	assert.Equal(t, "todo_items", svc.Namespace())

	svc = service.NewCachedQueryService[todoItem](service.NoOpQueryService[todoItem]{}, memory.NewCache(), service.WithNamespace("todos"))
	assert.Equal(t, "todos", svc.Namespace())

	ptr := service.NewCachedQueryService[*order](service.NoOpQueryService[*order]{}, memory.NewCache())
	assert.Equal(t, "orders", ptr.Namespace())
}

func TestCachedQueryService_Key(t *testing.T) {
	t.Parallel()
	svc := service.NewCachedQueryService[order](newOrders(), memory.NewCache())

	a := query.Filter[order]{Fields: map[string]query.Comparison{
		"status":     query.Eq("open"),
		"customerId": {query.OpGt: 1, query.OpLt: 9},
	}}
	b := query.Filter[order]{Fields: map[string]query.Comparison{
		"customerId": {query.OpLt: 9, query.OpGt: 1},
		"status":     query.Eq("open"),
	}}

	ka, err := svc.Key("count", a)
	require.NoError(t, err)
	kb, err := svc.Key("count", b)
	require.NoError(t, err)
	assert.Equal(t, ka, kb)
	assert.Equal(t, "orders", ka.Namespace)
	assert.Equal(t, "count", ka.Operation)
	assert.Len(t, ka.Digest, 64)

	kq, err := svc.Key("query", a)
	require.NoError(t, err)
	assert.NotEqual(t, ka.String(), kq.String())

	kc, err := svc.Key("count", query.Where[order]("status", query.Eq("closed")))
	require.NoError(t, err)
	assert.NotEqual(t, ka.Digest, kc.Digest)
}

func TestCachedQueryService_KeyIsStable(t *testing.T) {
	t.Parallel()
	svc := service.NewCachedQueryService[order](newOrders(), memory.NewCache())

	f := query.Filter[order]{Fields: map[string]query.Comparison{}}
	for i := range 12 {
		f.Fields[fmt.Sprintf("field%d", i)] = query.Comparison{
			query.OpGt:  i,
			query.OpLt:  i * 10,
			query.OpNeq: fmt.Sprint(i),
		}
	}
	f.Or = []query.Filter[order]{f, {Fields: map[string]query.Comparison{"a": {query.OpEq: 1, query.OpIn: []any{1, 2}}}}}
	q := query.Query[order]{Filter: f, Sorting: []query.SortField{query.Asc("field1")}}

	digests := map[string]struct{}{}
	for range 200 {
		k, err := svc.Key("count", f)
		require.NoError(t, err)
		digests[k.Digest] = struct{}{}
		k, err = svc.Key("query", q)
		require.NoError(t, err)
		digests[k.Digest] = struct{}{}
	}
	assert.Len(t, digests, 2)
}

func TestCachedQueryService_ReadThrough(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	orders := newRecorder[order](newOrders())
	cache := memory.NewCache()
	svc := service.NewCachedQueryService[order](orders, cache, service.WithTTL(time.Minute))
	q := query.Query[order]{Filter: query.Where[order]("customerId", query.Eq(1))}

	first, err := svc.Query(ctx, q)
	require.NoError(t, err)
	second, err := svc.Query(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []order{o1, o2}, first)
	assert.Equal(t, first, second)
	assert.Len(t, orders.Queries(), 1)

	n, err := svc.Count(ctx, q.Filter)
	require.NoError(t, err)
	n2, err := svc.Count(ctx, q.Filter)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, n, n2)
	assert.Len(t, orders.Filters(), 1)
	assert.Equal(t, 2, cache.Len())

	_, err = svc.CreateOne(ctx, order{ID: 9, CustomerID: 1})
	require.NoError(t, err)
	assert.Zero(t, cache.Len(), "writes drop the namespace")

	third, err := svc.Query(ctx, q)
	require.NoError(t, err)
	assert.Len(t, third, 3)
	assert.Len(t, orders.Queries(), 2)
}

func TestCachedQueryService_InvalidatesOnlyItsNamespace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cache := memory.NewCache()
	require.NoError(t, cache.Set(ctx, "customers:query:x", []byte{0xc0}, 0))

	todos := memory.NewStore(func(t todoItem) any { return t.ID })
	svc := service.NewCachedQueryService[todoItem](todos, cache)
	_, err := svc.Count(ctx, query.Filter[todoItem]{})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	rec, err := svc.CreateOne(ctx, todoItem{ID: uuid.NewString(), Title: "Write tests"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	_, err = svc.UpdateOne(ctx, rec.ID, service.Update{"title": "Write more tests"}, query.Filter[todoItem]{})
	require.NoError(t, err)
	n, err := svc.DeleteMany(ctx, query.Filter[todoItem]{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// brokenCache fails every operation.
type brokenCache struct{ err error }

func (c brokenCache) Get(context.Context, string) ([]byte, error) { return nil, c.err }

func (c brokenCache) Set(context.Context, string, []byte, time.Duration) error { return c.err }

func (c brokenCache) Delete(context.Context, string) error { return c.err }

func (c brokenCache) DeletePrefix(context.Context, string) error { return c.err }

func TestCachedQueryService_CacheFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	boom := errors.New("cache down")
	orders := newRecorder[order](newOrders())
	svc := service.NewCachedQueryService[order](orders, brokenCache{err: boom})

	got, err := svc.Query(ctx, query.Query[order]{})
	require.NoError(t, err, "a broken cache does not fail reads")
	assert.Len(t, got, 3)
	_, err = svc.Query(ctx, query.Query[order]{})
	require.NoError(t, err)
	assert.Len(t, orders.Queries(), 2)

	rec, err := svc.CreateOne(ctx, order{ID: 4})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 4, rec.ID, "the write itself succeeded")

	assert.ErrorIs(t, svc.Invalidate(ctx), boom)
}

func TestCachedQueryService_BaseErrorsAreNotCached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	boom := errors.New("boom")
	fail := true
	orders := newRecorder[order](newOrders())
	orders.before = func(query.Query[order]) error {
		if fail {
			return boom
		}
		return nil
	}
	cache := memory.NewCache()
	svc := service.NewCachedQueryService[order](orders, cache)

	_, err := svc.Query(ctx, query.Query[order]{})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, cache.Len())

	fail = false
	got, err := svc.Query(ctx, query.Query[order]{})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

// gatedOrders holds every Query until release is closed, after reading.
type gatedOrders struct {
	*service.ProxyQueryService[order]
	started chan struct{}
	release chan struct{}
}

func newGatedOrders() *gatedOrders {
	return &gatedOrders{
		ProxyQueryService: service.NewProxyQueryService[order](newOrders()),
		started:           make(chan struct{}, 1),
		release:           make(chan struct{}),
	}
}

func (g *gatedOrders) Query(ctx context.Context, q query.Query[order]) ([]order, error) {
	rows, err := g.Base().Query(ctx, q)
	select {
	case g.started <- struct{}{}:
	default:
	}
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return rows, err
}

func TestCachedQueryService_WriteDuringFetch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	orders := newGatedOrders()
	cache := memory.NewCache()
	svc := service.NewCachedQueryService[order](orders, cache)
	q := query.Query[order]{Filter: query.Where[order]("status", query.Eq("open"))}

	done := make(chan []order, 1)
	go func() {
		rows, err := svc.Query(ctx, q)
		assert.NoError(t, err)
		done <- rows
	}()
	<-orders.started

	_, err := svc.UpdateOne(ctx, 3, service.Update{"status": "closed"}, query.Filter[order]{})
	require.NoError(t, err)
	close(orders.release)

	assert.Equal(t, []order{o1, o3}, <-done, "the read started before the write")
	assert.Zero(t, cache.Len(), "a result fetched across a write is not stored")

	fresh, err := svc.Query(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []order{o1}, fresh)
	assert.Equal(t, 1, cache.Len())
}

func TestCachedQueryService_CallerCancellation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	orders := newGatedOrders()
	svc := service.NewCachedQueryService[order](orders, memory.NewCache())

	first, cancel := context.WithCancel(ctx)
	errs := make(chan error, 1)
	go func() {
		_, err := svc.Query(first, query.Query[order]{})
		errs <- err
	}()
	<-orders.started

	second := make(chan []order, 1)
	go func() {
		rows, err := svc.Query(ctx, query.Query[order]{})
		assert.NoError(t, err)
		second <- rows
	}()

	cancel()
	assert.ErrorIs(t, <-errs, context.Canceled)
	close(orders.release)
	assert.Len(t, <-second, 3, "other callers are unaffected")
}
