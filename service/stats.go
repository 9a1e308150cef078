package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syssam/querykit/query"
)

// OperationStats holds service operation statistics.
type OperationStats struct {
	// TotalReads is the number of read operations, relation reads included.
	TotalReads atomic.Int64
	// TotalWrites is the number of write operations, relation writes included.
	TotalWrites atomic.Int64
	// TotalDuration is the total time spent in the base service.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowOperations is the count of operations exceeding the slow threshold.
	SlowOperations atomic.Int64
	// Errors is the count of failed operations.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *OperationStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalReads:     s.TotalReads.Load(),
		TotalWrites:    s.TotalWrites.Load(),
		TotalDuration:  time.Duration(s.TotalDuration.Load()),
		SlowOperations: s.SlowOperations.Load(),
		Errors:         s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *OperationStats) Reset() {
	s.TotalReads.Store(0)
	s.TotalWrites.Store(0)
	s.TotalDuration.Store(0)
	s.SlowOperations.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of operation statistics.
type StatsSnapshot struct {
	TotalReads     int64
	TotalWrites    int64
	TotalDuration  time.Duration
	SlowOperations int64
	Errors         int64
}

// AvgDuration returns the average operation duration.
func (s StatsSnapshot) AvgDuration() time.Duration {
	total := s.TotalReads + s.TotalWrites
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"reads=%d writes=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalReads, s.TotalWrites, s.TotalDuration, s.AvgDuration(),
		s.SlowOperations, s.Errors,
	)
}

// SlowOperationHook is called when an operation exceeds the slow threshold.
type SlowOperationHook func(ctx context.Context, op string, duration time.Duration)

type statsConfig struct {
	slowThreshold time.Duration
	slowHook      SlowOperationHook
}

// StatsOption configures a StatsQueryService.
type StatsOption func(*statsConfig)

// WithSlowThreshold sets the threshold for slow operation detection.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(c *statsConfig) {
		c.slowThreshold = d
	}
}

// WithSlowQueryHook sets a callback for slow operations.
func WithSlowQueryHook(hook SlowOperationHook) StatsOption {
	return func(c *statsConfig) {
		c.slowHook = hook
	}
}

// WithSlowQueryLog logs slow operations to logger, or to the default
// logger if logger is nil.
func WithSlowQueryLog(logger *slog.Logger) StatsOption {
	if logger == nil {
		logger = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, op string, duration time.Duration) {
		logger.WarnContext(ctx, "slow operation detected", "operation", op, "duration", duration)
	})
}

// StatsQueryService wraps a QueryService with operation statistics.
type StatsQueryService[T any] struct {
	*ProxyQueryService[T]
	stats         *OperationStats
	slowThreshold time.Duration
	slowHook      SlowOperationHook
	mu            sync.RWMutex
}

// NewStatsQueryService wraps base with statistics collection.
//
//	svc := service.NewStatsQueryService(base,
//	    service.WithSlowThreshold(200*time.Millisecond),
//	    service.WithSlowQueryLog(nil),
//	)
//	...
//	fmt.Println(svc.OperationStats().Stats())
func NewStatsQueryService[T any](base QueryService[T], opts ...StatsOption) *StatsQueryService[T] {
	cfg := statsConfig{slowThreshold: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &StatsQueryService[T]{
		ProxyQueryService: NewProxyQueryService(base),
		stats:             &OperationStats{},
		slowThreshold:     cfg.slowThreshold,
		slowHook:          cfg.slowHook,
	}
}

// OperationStats returns the underlying statistics.
func (s *StatsQueryService[T]) OperationStats() *OperationStats {
	return s.stats
}

// SlowThreshold returns the current slow operation threshold.
func (s *StatsQueryService[T]) SlowThreshold() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slowThreshold
}

// SetSlowThreshold updates the slow operation threshold.
func (s *StatsQueryService[T]) SetSlowThreshold(threshold time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slowThreshold = threshold
}

func (s *StatsQueryService[T]) record(ctx context.Context, op string, start time.Time, err error, read bool) {
	duration := time.Since(start)
	if read {
		s.stats.TotalReads.Add(1)
	} else {
		s.stats.TotalWrites.Add(1)
	}
	s.stats.TotalDuration.Add(int64(duration))

	if err != nil {
		s.stats.Errors.Add(1)
	}

	s.mu.RLock()
	threshold := s.slowThreshold
	hook := s.slowHook
	s.mu.RUnlock()

	if duration > threshold {
		s.stats.SlowOperations.Add(1)
		if hook != nil {
			hook(ctx, op, duration)
		}
	}
}

func observe[T, V any](ctx context.Context, s *StatsQueryService[T], op string, read bool, fn func() (V, error)) (V, error) {
	start := time.Now()
	v, err := fn()
	s.record(ctx, op, start, err, read)
	return v, err
}

func (s *StatsQueryService[T]) Query(ctx context.Context, q query.Query[T]) ([]T, error) {
	return observe(ctx, s, "Query", true, func() ([]T, error) {
		return s.base.Query(ctx, q)
	})
}

func (s *StatsQueryService[T]) Count(ctx context.Context, f query.Filter[T]) (int, error) {
	return observe(ctx, s, "Count", true, func() (int, error) {
		return s.base.Count(ctx, f)
	})
}

func (s *StatsQueryService[T]) Aggregate(ctx context.Context, f query.Filter[T], aq query.AggregateQuery[T]) ([]query.AggregateResponse[T], error) {
	return observe(ctx, s, "Aggregate", true, func() ([]query.AggregateResponse[T], error) {
		return s.base.Aggregate(ctx, f, aq)
	})
}

func (s *StatsQueryService[T]) FindByID(ctx context.Context, id any, f query.Filter[T]) (T, bool, error) {
	start := time.Now()
	rec, ok, err := s.base.FindByID(ctx, id, f)
	s.record(ctx, "FindByID", start, err, true)
	return rec, ok, err
}

func (s *StatsQueryService[T]) GetByID(ctx context.Context, id any, f query.Filter[T]) (T, error) {
	return observe(ctx, s, "GetByID", true, func() (T, error) {
		return s.base.GetByID(ctx, id, f)
	})
}

func (s *StatsQueryService[T]) CreateOne(ctx context.Context, rec T) (T, error) {
	return observe(ctx, s, "CreateOne", false, func() (T, error) {
		return s.base.CreateOne(ctx, rec)
	})
}

func (s *StatsQueryService[T]) CreateMany(ctx context.Context, recs []T) ([]T, error) {
	return observe(ctx, s, "CreateMany", false, func() ([]T, error) {
		return s.base.CreateMany(ctx, recs)
	})
}

func (s *StatsQueryService[T]) UpdateOne(ctx context.Context, id any, u Update, f query.Filter[T]) (T, error) {
	return observe(ctx, s, "UpdateOne", false, func() (T, error) {
		return s.base.UpdateOne(ctx, id, u, f)
	})
}

func (s *StatsQueryService[T]) UpdateMany(ctx context.Context, u Update, f query.Filter[T]) (int, error) {
	return observe(ctx, s, "UpdateMany", false, func() (int, error) {
		return s.base.UpdateMany(ctx, u, f)
	})
}

func (s *StatsQueryService[T]) DeleteOne(ctx context.Context, id any, f query.Filter[T]) (T, error) {
	return observe(ctx, s, "DeleteOne", false, func() (T, error) {
		return s.base.DeleteOne(ctx, id, f)
	})
}

func (s *StatsQueryService[T]) DeleteMany(ctx context.Context, f query.Filter[T]) (int, error) {
	return observe(ctx, s, "DeleteMany", false, func() (int, error) {
		return s.base.DeleteMany(ctx, f)
	})
}

func (s *StatsQueryService[T]) QueryRelations(ctx context.Context, relation string, rec T, q query.Query[any]) ([]any, error) {
	return observe(ctx, s, "QueryRelations", true, func() ([]any, error) {
		return s.base.QueryRelations(ctx, relation, rec, q)
	})
}

func (s *StatsQueryService[T]) QueryRelationsBatch(ctx context.Context, relation string, recs []T, q query.Query[any]) ([][]any, error) {
	return observe(ctx, s, "QueryRelationsBatch", true, func() ([][]any, error) {
		return s.base.QueryRelationsBatch(ctx, relation, recs, q)
	})
}

func (s *StatsQueryService[T]) FindRelation(ctx context.Context, relation string, rec T, f query.Filter[any]) (any, error) {
	return observe(ctx, s, "FindRelation", true, func() (any, error) {
		return s.base.FindRelation(ctx, relation, rec, f)
	})
}

func (s *StatsQueryService[T]) FindRelationBatch(ctx context.Context, relation string, recs []T, f query.Filter[any]) ([]any, error) {
	return observe(ctx, s, "FindRelationBatch", true, func() ([]any, error) {
		return s.base.FindRelationBatch(ctx, relation, recs, f)
	})
}

func (s *StatsQueryService[T]) CountRelations(ctx context.Context, relation string, rec T, f query.Filter[any]) (int, error) {
	return observe(ctx, s, "CountRelations", true, func() (int, error) {
		return s.base.CountRelations(ctx, relation, rec, f)
	})
}

func (s *StatsQueryService[T]) CountRelationsBatch(ctx context.Context, relation string, recs []T, f query.Filter[any]) ([]int, error) {
	return observe(ctx, s, "CountRelationsBatch", true, func() ([]int, error) {
		return s.base.CountRelationsBatch(ctx, relation, recs, f)
	})
}

func (s *StatsQueryService[T]) AggregateRelations(ctx context.Context, relation string, rec T, f query.Filter[any], aq query.AggregateQuery[any]) ([]query.AggregateResponse[any], error) {
	return observe(ctx, s, "AggregateRelations", true, func() ([]query.AggregateResponse[any], error) {
		return s.base.AggregateRelations(ctx, relation, rec, f, aq)
	})
}

func (s *StatsQueryService[T]) AggregateRelationsBatch(ctx context.Context, relation string, recs []T, f query.Filter[any], aq query.AggregateQuery[any]) ([][]query.AggregateResponse[any], error) {
	return observe(ctx, s, "AggregateRelationsBatch", true, func() ([][]query.AggregateResponse[any], error) {
		return s.base.AggregateRelationsBatch(ctx, relation, recs, f, aq)
	})
}

func (s *StatsQueryService[T]) AddRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[T]) (T, error) {
	return observe(ctx, s, "AddRelations", false, func() (T, error) {
		return s.base.AddRelations(ctx, relation, id, relationIDs, f)
	})
}

func (s *StatsQueryService[T]) SetRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[T]) (T, error) {
	return observe(ctx, s, "SetRelations", false, func() (T, error) {
		return s.base.SetRelations(ctx, relation, id, relationIDs, f)
	})
}

func (s *StatsQueryService[T]) SetRelation(ctx context.Context, relation string, id any, relationID any, f query.Filter[T]) (T, error) {
	return observe(ctx, s, "SetRelation", false, func() (T, error) {
		return s.base.SetRelation(ctx, relation, id, relationID, f)
	})
}

func (s *StatsQueryService[T]) RemoveRelation(ctx context.Context, relation string, id any, relationID any, f query.Filter[T]) (T, error) {
	return observe(ctx, s, "RemoveRelation", false, func() (T, error) {
		return s.base.RemoveRelation(ctx, relation, id, relationID, f)
	})
}

func (s *StatsQueryService[T]) RemoveRelations(ctx context.Context, relation string, id any, relationIDs []any, f query.Filter[T]) (T, error) {
	return observe(ctx, s, "RemoveRelations", false, func() (T, error) {
		return s.base.RemoveRelations(ctx, relation, id, relationIDs, f)
	})
}

var _ QueryService[struct{}] = (*StatsQueryService[struct{}])(nil)
