package query

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

var opSymbols = map[Op]string{
	OpEq:    "==",
	OpNeq:   "!=",
	OpGt:    ">",
	OpGte:   ">=",
	OpLt:    "<",
	OpLte:   "<=",
	OpIn:    "in",
	OpNotIn: "not in",
	OpIs:    "is",
	OpIsNot: "is not",
}

var opFuncs = map[Op]string{
	OpLike:       "like",
	OpNotLike:    "not_like",
	OpILike:      "ilike",
	OpNotILike:   "not_ilike",
	OpBetween:    "between",
	OpNotBetween: "not_between",
}

// String renders f as a boolean expression, e.g.
//
//	status == "open" && (priority > 1 || tag in ["a","b"])
//
// Fields are rendered in name order so the output is stable.
func (f Filter[T]) String() string {
	terms := f.terms()
	if len(terms) == 0 {
		return "true"
	}
	return strings.Join(terms, " && ")
}

func (f Filter[T]) terms() []string {
	var terms []string
	fields := make([]string, 0, len(f.Fields))
	for field := range f.Fields {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	for _, field := range fields {
		c := f.Fields[field]
		for _, op := range Ops() {
			if v, ok := c[op]; ok {
				terms = append(terms, formatComparison(field, op, v))
			}
		}
	}
	for _, sub := range f.And {
		terms = append(terms, sub.grouped())
	}
	if f.Or != nil {
		if len(f.Or) == 0 {
			terms = append(terms, "false")
		} else {
			parts := make([]string, len(f.Or))
			for i, sub := range f.Or {
				parts[i] = sub.grouped()
			}
			or := strings.Join(parts, " || ")
			if len(parts) > 1 {
				or = "(" + or + ")"
			}
			terms = append(terms, or)
		}
	}
	return terms
}

// grouped renders f as a single term, parenthesized if it has several.
func (f Filter[T]) grouped() string {
	terms := f.terms()
	switch len(terms) {
	case 0:
		return "true"
	case 1:
		return terms[0]
	}
	return "(" + strings.Join(terms, " && ") + ")"
}

func formatComparison(field string, op Op, v any) string {
	if sym, ok := opSymbols[op]; ok {
		return fmt.Sprintf("%s %s %s", field, sym, formatValue(v))
	}
	if fn, ok := opFuncs[op]; ok {
		if r, ok := v.(Range); ok {
			return fmt.Sprintf("%s(%s, %s, %s)", fn, field, formatValue(r.Lower), formatValue(r.Upper))
		}
		return fmt.Sprintf("%s(%s, %s)", fn, field, formatValue(v))
	}
	return fmt.Sprintf("%s %s %s", field, op, formatValue(v))
}

func formatValue(v any) string {
	if v == nil {
		return "nil"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
