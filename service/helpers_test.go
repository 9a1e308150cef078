package service_test

import (
	"context"
	"sync"

	"github.com/syssam/querykit/memory"
	"github.com/syssam/querykit/query"
	"github.com/syssam/querykit/service"
)

type customer struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type order struct {
	ID         int     `json:"id"`
	CustomerID int     `json:"customerId"`
	Status     string  `json:"status"`
	Total      float64 `json:"total"`
}

var (
	c1 = customer{ID: 1, Name: "Ada"}
	c2 = customer{ID: 2, Name: "Grace"}
	c3 = customer{ID: 3, Name: "Linus"}

	o1 = order{ID: 1, CustomerID: 1, Status: "open", Total: 10}
	o2 = order{ID: 2, CustomerID: 1, Status: "closed", Total: 5}
	o3 = order{ID: 3, CustomerID: 2, Status: "open", Total: 7}
)

func newOrders() *memory.Store[order] {
	return memory.NewStore(func(o order) any { return o.ID }, memory.WithRecords(o1, o2, o3))
}

func newCustomers() *memory.Store[customer] {
	return memory.NewStore(func(c customer) any { return c.ID }, memory.WithRecords(c1, c2, c3))
}

func byCustomer(c customer) query.Query[order] {
	return query.Query[order]{Filter: query.Where[order]("customerId", query.Eq(c.ID))}
}

// recorder forwards to its base and records the reads it receives.
type recorder[T any] struct {
	*service.ProxyQueryService[T]

	mu      sync.Mutex
	queries []query.Query[T]
	filters []query.Filter[T]
	before  func(q query.Query[T]) error
}

func newRecorder[T any](base service.QueryService[T]) *recorder[T] {
	return &recorder[T]{ProxyQueryService: service.NewProxyQueryService(base)}
}

func (r *recorder[T]) Query(ctx context.Context, q query.Query[T]) ([]T, error) {
	r.mu.Lock()
	r.queries = append(r.queries, q)
	before := r.before
	r.mu.Unlock()
	if before != nil {
		if err := before(q); err != nil {
			return nil, err
		}
	}
	return r.Base().Query(ctx, q)
}

func (r *recorder[T]) Count(ctx context.Context, f query.Filter[T]) (int, error) {
	r.mu.Lock()
	r.filters = append(r.filters, f)
	r.mu.Unlock()
	return r.Base().Count(ctx, f)
}

func (r *recorder[T]) Queries() []query.Query[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]query.Query[T](nil), r.queries...)
}

func (r *recorder[T]) Filters() []query.Filter[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]query.Filter[T](nil), r.filters...)
}
