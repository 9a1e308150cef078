package query

// Paging selects a window of results. Offset paging uses Limit and Offset;
// cursor paging uses Cursor. The two are never combined in one request.
// A zero Limit means no limit.
type Paging struct {
	Limit  int           `msgpack:"limit,omitempty"`
	Offset int           `msgpack:"offset,omitempty"`
	Cursor *CursorPaging `msgpack:"cursor,omitempty"`
}

// CursorPaging is forwarded verbatim to backends that understand cursors.
type CursorPaging struct {
	First  int    `msgpack:"first,omitempty"`
	After  string `msgpack:"after,omitempty"`
	Last   int    `msgpack:"last,omitempty"`
	Before string `msgpack:"before,omitempty"`
}

// Query describes what to fetch from a QueryService.
type Query[T any] struct {
	Filter  Filter[T]   `msgpack:"filter"`
	Paging  *Paging     `msgpack:"paging"`
	Sorting []SortField `msgpack:"sorting"`
}

// Limit returns a copy of q restricted to at most n results from the start.
func (q Query[T]) Limit(n int) Query[T] {
	q.Paging = &Paging{Limit: n}
	return q
}
