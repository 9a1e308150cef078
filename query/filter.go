package query

// Op is a field comparison operator.
type Op string

// Comparison operators.
const (
	OpEq         Op = "eq"
	OpNeq        Op = "neq"
	OpGt         Op = "gt"
	OpGte        Op = "gte"
	OpLt         Op = "lt"
	OpLte        Op = "lte"
	OpLike       Op = "like"
	OpNotLike    Op = "notLike"
	OpILike      Op = "iLike"
	OpNotILike   Op = "notILike"
	OpIn         Op = "in"
	OpNotIn      Op = "notIn"
	OpIs         Op = "is"
	OpIsNot      Op = "isNot"
	OpBetween    Op = "between"
	OpNotBetween Op = "notBetween"
)

// Ops returns all comparison operators in declaration order.
func Ops() []Op {
	return []Op{
		OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte,
		OpLike, OpNotLike, OpILike, OpNotILike,
		OpIn, OpNotIn, OpIs, OpIsNot, OpBetween, OpNotBetween,
	}
}

// IsValid reports whether op is a known operator.
func (op Op) IsValid() bool {
	switch op {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte,
		OpLike, OpNotLike, OpILike, OpNotILike,
		OpIn, OpNotIn, OpIs, OpIsNot, OpBetween, OpNotBetween:
		return true
	}
	return false
}

// Range is the operand of the between and notBetween operators.
type Range struct {
	Lower any `msgpack:"lower"`
	Upper any `msgpack:"upper"`
}

// Comparison maps operators to their operands for a single field.
// Several operators on one field are conjoined. Operands are opaque
// to transforms; only backends interpret them.
type Comparison map[Op]any

// Filter is a boolean expression over the fields of T.
//
// All field comparisons are conjoined with each other, with every filter in
// And, and with the disjunction of the filters in Or. A nil And or Or is an
// absent group. The zero Filter matches everything.
//
// T is never stored; it only keeps filters over different record types apart.
type Filter[T any] struct {
	Fields map[string]Comparison `msgpack:"fields,omitempty"`
	And    []Filter[T]           `msgpack:"and"`
	Or     []Filter[T]           `msgpack:"or"`
}

// IsEmpty reports whether the filter has no comparisons and no groups.
// A present but empty group (non-nil, zero length) makes the filter non-empty.
func (f Filter[T]) IsEmpty() bool {
	return len(f.Fields) == 0 && f.And == nil && f.Or == nil
}

// Where returns a filter holding a single comparison on field.
func Where[T any](field string, c Comparison) Filter[T] {
	return Filter[T]{Fields: map[string]Comparison{field: c}}
}

// And returns a filter that matches when all of fs match.
func And[T any](fs ...Filter[T]) Filter[T] {
	return Filter[T]{And: fs}
}

// Or returns a filter that matches when any of fs match.
func Or[T any](fs ...Filter[T]) Filter[T] {
	return Filter[T]{Or: fs}
}

// Eq returns an equality comparison.
func Eq(v any) Comparison { return Comparison{OpEq: v} }

// Neq returns an inequality comparison.
func Neq(v any) Comparison { return Comparison{OpNeq: v} }

// Gt returns a greater-than comparison.
func Gt(v any) Comparison { return Comparison{OpGt: v} }

// Gte returns a greater-than-or-equal comparison.
func Gte(v any) Comparison { return Comparison{OpGte: v} }

// Lt returns a less-than comparison.
func Lt(v any) Comparison { return Comparison{OpLt: v} }

// Lte returns a less-than-or-equal comparison.
func Lte(v any) Comparison { return Comparison{OpLte: v} }

// Like returns a case-sensitive pattern comparison. % matches any run of
// characters and _ matches a single character.
func Like(pattern string) Comparison { return Comparison{OpLike: pattern} }

// NotLike is the negation of Like.
func NotLike(pattern string) Comparison { return Comparison{OpNotLike: pattern} }

// ILike is the case-insensitive form of Like.
func ILike(pattern string) Comparison { return Comparison{OpILike: pattern} }

// NotILike is the negation of ILike.
func NotILike(pattern string) Comparison { return Comparison{OpNotILike: pattern} }

// In returns a set membership comparison.
func In(vs ...any) Comparison { return Comparison{OpIn: vs} }

// NotIn is the negation of In.
func NotIn(vs ...any) Comparison { return Comparison{OpNotIn: vs} }

// Is compares against nil, true or false.
func Is(v any) Comparison { return Comparison{OpIs: v} }

// IsNot is the negation of Is.
func IsNot(v any) Comparison { return Comparison{OpIsNot: v} }

// Between returns an inclusive range comparison.
func Between(lower, upper any) Comparison {
	return Comparison{OpBetween: Range{Lower: lower, Upper: upper}}
}

// NotBetween is the negation of Between.
func NotBetween(lower, upper any) Comparison {
	return Comparison{OpNotBetween: Range{Lower: lower, Upper: upper}}
}
