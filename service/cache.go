package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/go-openapi/inflect"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"

	"github.com/syssam/querykit"
	"github.com/syssam/querykit/query"
)

type cacheConfig struct {
	namespace string
	ttl       time.Duration
}

// CacheOption configures a CachedQueryService.
type CacheOption func(*cacheConfig)

// WithNamespace sets the key namespace. It defaults to the pluralized,
// underscored record type name, e.g. "todo_items" for TodoItem.
func WithNamespace(ns string) CacheOption {
	return func(c *cacheConfig) {
		c.namespace = ns
	}
}

// WithTTL sets the lifetime of cached results. Zero means no expiry.
func WithTTL(d time.Duration) CacheOption {
	return func(c *cacheConfig) {
		c.ttl = d
	}
}

// CachedQueryService caches Query and Count results of its base service.
// Every successful write drops the whole namespace.
//
// Cache failures never fail a read: a Get error is a miss and a Set error
// leaves the result uncached.
type CachedQueryService[T any] struct {
	*ProxyQueryService[T]
	cache     querykit.Cache
	namespace string
	ttl       time.Duration
	group     singleflight.Group

	// gen counts invalidations. A fetch that overlaps one must not store
	// its result, which may predate the write.
	mu  sync.RWMutex
	gen uint64
}

// NewCachedQueryService wraps base with a read-through cache.
func NewCachedQueryService[T any](base QueryService[T], cache querykit.Cache, opts ...CacheOption) *CachedQueryService[T] {
	cfg := cacheConfig{namespace: namespaceOf[T]()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &CachedQueryService[T]{
		ProxyQueryService: NewProxyQueryService(base),
		cache:             cache,
		namespace:         cfg.namespace,
		ttl:               cfg.ttl,
	}
}

// Namespace returns the key namespace.
func (s *CachedQueryService[T]) Namespace() string {
	return s.namespace
}

func namespaceOf[T any]() string {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return inflect.Underscore(inflect.Pluralize(t.Name()))
}

// Key returns the cache key of operation op with request v.
func (s *CachedQueryService[T]) Key(op string, v any) (querykit.CacheKey, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return querykit.CacheKey{}, fmt.Errorf("querykit: encode cache key: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	return querykit.CacheKey{
		Namespace: s.namespace,
		Operation: op,
		Digest:    hex.EncodeToString(sum[:]),
	}, nil
}

func (s *CachedQueryService[T]) Query(ctx context.Context, q query.Query[T]) ([]T, error) {
	return load(ctx, s, "query", q, func(ctx context.Context) ([]T, error) {
		return s.base.Query(ctx, q)
	})
}

func (s *CachedQueryService[T]) Count(ctx context.Context, f query.Filter[T]) (int, error) {
	return load(ctx, s, "count", f, func(ctx context.Context) (int, error) {
		return s.base.Count(ctx, f)
	})
}

func (s *CachedQueryService[T]) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// load serves req from the cache or fetches it. Identical misses share one
// fetch, which runs detached from the cancellation of whichever caller
// started it; each caller still stops waiting when its own ctx is done.
func load[T, V any](ctx context.Context, s *CachedQueryService[T], op string, req any, fetch func(context.Context) (V, error)) (V, error) {
	var zero V
	key, err := s.Key(op, req)
	if err != nil {
		return zero, err
	}
	k := key.String()
	if b, err := s.cache.Get(ctx, k); err == nil && b != nil {
		var v V
		if err := msgpack.Unmarshal(b, &v); err == nil {
			return v, nil
		}
	}
	gen := s.generation()
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(fmt.Sprintf("%s@%d", k, gen), func() (any, error) {
		v, err := fetch(detached)
		if err != nil {
			return nil, err
		}
		if b, err := msgpack.Marshal(v); err == nil {
			s.mu.RLock()
			if s.gen == gen {
				_ = s.cache.Set(detached, k, b, s.ttl)
			}
			s.mu.RUnlock()
		}
		return v, nil
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Invalidate drops every cached result of the namespace.
func (s *CachedQueryService[T]) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
	if err := s.cache.DeletePrefix(ctx, querykit.CacheKey{Namespace: s.namespace}.Prefix()); err != nil {
		return fmt.Errorf("querykit: invalidate %s: %w", s.namespace, err)
	}
	return nil
}

func invalidate[T, V any](ctx context.Context, s *CachedQueryService[T], fn func() (V, error)) (V, error) {
	v, err := fn()
	if err != nil {
		return v, err
	}
	return v, s.Invalidate(ctx)
}

func (s *CachedQueryService[T]) CreateOne(ctx context.Context, rec T) (T, error) {
	return invalidate(ctx, s, func() (T, error) {
		return s.base.CreateOne(ctx, rec)
	})
}

func (s *CachedQueryService[T]) CreateMany(ctx context.Context, recs []T) ([]T, error) {
	return invalidate(ctx, s, func() ([]T, error) {
		return s.base.CreateMany(ctx, recs)
	})
}

func (s *CachedQueryService[T]) UpdateOne(ctx context.Context, id any, u Update, f query.Filter[T]) (T, error) {
	return invalidate(ctx, s, func() (T, error) {
		return s.base.UpdateOne(ctx, id, u, f)
	})
}

func (s *CachedQueryService[T]) UpdateMany(ctx context.Context, u Update, f query.Filter[T]) (int, error) {
	return invalidate(ctx, s, func() (int, error) {
		return s.base.UpdateMany(ctx, u, f)
	})
}

func (s *CachedQueryService[T]) DeleteOne(ctx context.Context, id any, f query.Filter[T]) (T, error) {
	return invalidate(ctx, s, func() (T, error) {
		return s.base.DeleteOne(ctx, id, f)
	})
}

func (s *CachedQueryService[T]) DeleteMany(ctx context.Context, f query.Filter[T]) (int, error) {
	return invalidate(ctx, s, func() (int, error) {
		return s.base.DeleteMany(ctx, f)
	})
}

func (s *CachedQueryService[T]) AddRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[T]) (T, error) {
	return invalidate(ctx, s, func() (T, error) {
		return s.base.AddRelations(ctx, relation, id, relationIDs, f)
	})
}

func (s *CachedQueryService[T]) SetRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[T]) (T, error) {
	return invalidate(ctx, s, func() (T, error) {
		return s.base.SetRelations(ctx, relation, id, relationIDs, f)
	})
}

func (s *CachedQueryService[T]) SetRelation(ctx context.Context, relation string, id any, relationID any, f query.Filter[T]) (T, error) {
	return invalidate(ctx, s, func() (T, error) {
		return s.base.SetRelation(ctx, relation, id, relationID, f)
	})
}

func (s *CachedQueryService[T]) RemoveRelation(ctx context.Context, relation string, id any, relationID any, f query.Filter[T]) (T, error) {
	return invalidate(ctx, s, func() (T, error) {
		return s.base.RemoveRelation(ctx, relation, id, relationID, f)
	})
}

func (s *CachedQueryService[T]) RemoveRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[T]) (T, error) {
	return invalidate(ctx, s, func() (T, error) {
		return s.base.RemoveRelations(ctx, relation, id, relationIDs, f)
	})
}

var _ QueryService[struct{}] = (*CachedQueryService[struct{}])(nil)
