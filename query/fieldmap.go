package query

// FieldMap maps every field name of From to the matching field name of To.
type FieldMap[From, To any] map[string]string

// Lookup returns the To name for a From field.
func (m FieldMap[From, To]) Lookup(field string) (string, bool) {
	to, ok := m[field]
	return to, ok
}

// Invert returns the map from To names back to From names. If two From
// fields map to the same To field the result keeps one of them; such maps
// cannot round-trip.
func (m FieldMap[From, To]) Invert() FieldMap[To, From] {
	inv := make(FieldMap[To, From], len(m))
	for from, to := range m {
		inv[to] = from
	}
	return inv
}
