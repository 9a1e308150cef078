// Package memory provides an in-memory QueryService backend.
//
// A Store keeps records of one type in a slice and evaluates filters,
// sorting, paging and aggregates against them. It is meant for tests,
// prototypes and small fixed data sets.
//
//	todos := memory.NewStore(func(t TodoItem) any { return t.ID })
//	_, err := todos.CreateMany(ctx, items)
//	open, err := todos.Query(ctx, query.Query[TodoItem]{
//	    Filter:  query.Where[TodoItem]("completed", query.Is(false)),
//	    Sorting: []query.SortField{query.Asc("title")},
//	})
package memory

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/syssam/querykit"
	"github.com/syssam/querykit/query"
	"github.com/syssam/querykit/service"
)

// Store is an in-memory QueryService. Relation methods are not native to the
// store; wrap it in a service.RelationQueryService to resolve relations.
type Store[T any] struct {
	service.NoOpQueryService[T]

	mu      sync.RWMutex
	records []T
	id      func(T) any
	get     Accessor[T]
	known   map[string]struct{} // nil with a custom accessor
	tag     string
	label   string
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithTagName sets the struct tag naming record fields. Default is "json".
func WithTagName[T any](tag string) Option[T] {
	return func(s *Store[T]) {
		s.tag = tag
	}
}

// WithAccessor replaces the struct tag accessor.
func WithAccessor[T any](get Accessor[T]) Option[T] {
	return func(s *Store[T]) {
		s.get = get
	}
}

// WithRecords seeds the store. A later record replaces an earlier one with
// the same id.
func WithRecords[T any](recs ...T) Option[T] {
	return func(s *Store[T]) {
		for _, rec := range recs {
			if i := s.indexOf(s.id(rec)); i >= 0 {
				s.records[i] = rec
				continue
			}
			s.records = append(s.records, rec)
		}
	}
}

// NewStore returns an empty store identifying records by id.
func NewStore[T any](id func(T) any, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		id:    id,
		tag:   "json",
		label: labelOf[T](),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.get == nil {
		s.get = TagAccessor[T](s.tag)
		s.known = fieldNames[T](s.tag)
	}
	return s
}

func labelOf[T any]() string {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Len returns the number of stored records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store[T]) validate(fields ...string) error {
	if s.known == nil {
		return nil
	}
	for _, f := range fields {
		if _, ok := s.known[f]; !ok {
			return &UnknownFieldError{Field: f}
		}
	}
	return nil
}

func (s *Store[T]) indexOf(id any) int {
	for i, rec := range s.records {
		if equal(s.id(rec), id) {
			return i
		}
	}
	return -1
}

func (s *Store[T]) filter(f query.Filter[T]) ([]T, error) {
	if err := s.validate(query.Fields(f)...); err != nil {
		return nil, err
	}
	var out []T
	for _, rec := range s.records {
		ok, err := match(s.get, f, rec)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Query returns the records matching q, sorted and paged.
func (s *Store[T]) Query(_ context.Context, q query.Query[T]) ([]T, error) {
	if q.Paging != nil && q.Paging.Cursor != nil {
		return nil, ErrCursorPaging
	}
	if p := q.Paging; p != nil && (p.Offset < 0 || p.Limit < 0) {
		return nil, fmt.Errorf("%w: offset %d, limit %d", ErrNegativePaging, p.Offset, p.Limit)
	}
	fields := make([]string, len(q.Sorting))
	for i, sf := range q.Sorting {
		fields[i] = sf.Field
	}
	if err := s.validate(fields...); err != nil {
		return nil, err
	}
	s.mu.RLock()
	recs, err := s.filter(q.Filter)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if err := sortRecords(s.get, recs, q.Sorting); err != nil {
		return nil, err
	}
	if p := q.Paging; p != nil {
		recs = recs[min(p.Offset, len(recs)):]
		if p.Limit > 0 && p.Limit < len(recs) {
			recs = recs[:p.Limit]
		}
	}
	if recs == nil {
		recs = []T{}
	}
	return recs, nil
}

// Count returns the number of records matching f.
func (s *Store[T]) Count(_ context.Context, f query.Filter[T]) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs, err := s.filter(f)
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// Aggregate computes aq over the records matching f.
func (s *Store[T]) Aggregate(_ context.Context, f query.Filter[T], aq query.AggregateQuery[T]) ([]query.AggregateResponse[T], error) {
	if err := s.validate(slices.Concat(aq.Count, aq.Sum, aq.Avg, aq.Min, aq.Max, aq.GroupBy)...); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs, err := s.filter(f)
	if err != nil {
		return nil, err
	}
	return aggregate(s.get, recs, aq)
}

// find returns the index of the record with id that matches f, or -1.
func (s *Store[T]) find(id any, f query.Filter[T]) (int, error) {
	if err := s.validate(query.Fields(f)...); err != nil {
		return -1, err
	}
	i := s.indexOf(id)
	if i < 0 {
		return -1, nil
	}
	ok, err := match(s.get, f, s.records[i])
	if err != nil || !ok {
		return -1, err
	}
	return i, nil
}

// FindByID returns the record with id if it also matches f.
func (s *Store[T]) FindByID(_ context.Context, id any, f query.Filter[T]) (T, bool, error) {
	var zero T
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, err := s.find(id, f)
	if err != nil || i < 0 {
		return zero, false, err
	}
	return s.records[i], true, nil
}

// GetByID is like FindByID but fails with a *querykit.NotFoundError.
func (s *Store[T]) GetByID(ctx context.Context, id any, f query.Filter[T]) (T, error) {
	rec, ok, err := s.FindByID(ctx, id, f)
	if err != nil {
		return rec, err
	}
	if !ok {
		return rec, querykit.NewNotFoundErrorWithID(s.label, id)
	}
	return rec, nil
}

// CreateOne stores rec. It fails with a querykit.ConstraintError if a record
// with the same id exists.
func (s *Store[T]) CreateOne(_ context.Context, rec T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(s.id(rec)) >= 0 {
		var zero T
		return zero, s.duplicate(s.id(rec))
	}
	s.records = append(s.records, rec)
	return rec, nil
}

// CreateMany stores all of recs or, on a duplicate id, none of them.
func (s *Store[T]) CreateMany(_ context.Context, recs []T) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range recs {
		id := s.id(rec)
		if s.indexOf(id) >= 0 || slices.ContainsFunc(recs[:i], func(o T) bool { return equal(s.id(o), id) }) {
			return nil, s.duplicate(id)
		}
	}
	s.records = append(s.records, recs...)
	return slices.Clone(recs), nil
}

func (s *Store[T]) duplicate(id any) error {
	return querykit.NewConstraintError(fmt.Sprintf("duplicate %s id %v", s.label, id), nil)
}

// UpdateOne applies u to the record with id if it also matches f.
func (s *Store[T]) UpdateOne(_ context.Context, id any, u service.Update, f query.Filter[T]) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.find(id, f)
	if err != nil {
		return zero, err
	}
	if i < 0 {
		return zero, querykit.NewNotFoundErrorWithID(s.label, id)
	}
	rec, err := s.patch(s.records[i], u)
	if err != nil {
		return zero, err
	}
	if err := s.checkID(rec, i); err != nil {
		return zero, err
	}
	s.records[i] = rec
	return rec, nil
}

// UpdateMany applies u to every record matching f and returns their number.
func (s *Store[T]) UpdateMany(_ context.Context, u service.Update, f query.Filter[T]) (int, error) {
	if err := s.validate(query.Fields(f)...); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	type update struct {
		i   int
		rec T
	}
	var updates []update
	for i, rec := range s.records {
		ok, err := match(s.get, f, rec)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		rec, err = s.patch(rec, u)
		if err != nil {
			return 0, err
		}
		if err := s.checkID(rec, i); err != nil {
			return 0, err
		}
		for _, o := range updates {
			if equal(s.id(o.rec), s.id(rec)) {
				return 0, s.duplicate(s.id(rec))
			}
		}
		updates = append(updates, update{i: i, rec: rec})
	}
	for _, up := range updates {
		s.records[up.i] = up.rec
	}
	return len(updates), nil
}

// checkID fails if rec, about to replace records[i], takes another record's id.
func (s *Store[T]) checkID(rec T, i int) error {
	if j := s.indexOf(s.id(rec)); j >= 0 && j != i {
		return s.duplicate(s.id(rec))
	}
	return nil
}

// patch returns a copy of rec with u applied.
func (s *Store[T]) patch(rec T, u service.Update) (T, error) {
	var zero T
	out := clone(rec)
	target := any(&out)
	if rv := reflect.ValueOf(out); rv.Kind() == reflect.Pointer {
		target = out
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     s.tag,
		Result:      target,
		ErrorUnused: true,
	})
	if err != nil {
		return zero, err
	}
	if err := dec.Decode(map[string]any(u)); err != nil {
		return zero, fmt.Errorf("memory: update %s: %w", s.label, err)
	}
	return out, nil
}

// clone returns a shallow copy of rec, following one level of pointer.
func clone[T any](rec T) T {
	rv := reflect.ValueOf(&rec).Elem()
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return rec
	}
	cp := reflect.New(rv.Elem().Type())
	cp.Elem().Set(rv.Elem())
	return cp.Interface().(T)
}

// DeleteOne removes the record with id if it also matches f.
func (s *Store[T]) DeleteOne(_ context.Context, id any, f query.Filter[T]) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.find(id, f)
	if err != nil {
		return zero, err
	}
	if i < 0 {
		return zero, querykit.NewNotFoundErrorWithID(s.label, id)
	}
	rec := s.records[i]
	s.records = slices.Delete(s.records, i, i+1)
	return rec, nil
}

// DeleteMany removes every record matching f and returns their number.
func (s *Store[T]) DeleteMany(_ context.Context, f query.Filter[T]) (int, error) {
	if err := s.validate(query.Fields(f)...); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]T, 0, len(s.records))
	for _, rec := range s.records {
		ok, err := match(s.get, f, rec)
		if err != nil {
			return 0, err
		}
		if !ok {
			kept = append(kept, rec)
		}
	}
	n := len(s.records) - len(kept)
	s.records = kept
	return n, nil
}

var _ service.QueryService[struct{}] = (*Store[struct{}])(nil)
