package query

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// Nulls controls where null values sort. The zero value leaves it to the backend.
type Nulls string

// Null orderings.
const (
	NullsFirst Nulls = "NULLS_FIRST"
	NullsLast  Nulls = "NULLS_LAST"
)

// SortField is one sort key. Sorting is an ordered list of keys.
type SortField struct {
	Field     string    `msgpack:"field"`
	Direction Direction `msgpack:"direction"`
	Nulls     Nulls     `msgpack:"nulls,omitempty"`
}

// Asc returns an ascending sort key.
func Asc(field string) SortField { return SortField{Field: field, Direction: ASC} }

// Desc returns a descending sort key.
func Desc(field string) SortField { return SortField{Field: field, Direction: DESC} }

// InvertSort flips every direction and null ordering. Cursor paging uses it
// to fetch the last N rows: fetch reversed, then reverse the results.
func InvertSort(sorting []SortField) []SortField {
	if sorting == nil {
		return nil
	}
	inverted := make([]SortField, len(sorting))
	for i, s := range sorting {
		s.Direction = invertDirection(s.Direction)
		switch s.Nulls {
		case NullsFirst:
			s.Nulls = NullsLast
		case NullsLast:
			s.Nulls = NullsFirst
		}
		inverted[i] = s
	}
	return inverted
}

func invertDirection(d Direction) Direction {
	if d == DESC {
		return ASC
	}
	return DESC
}
