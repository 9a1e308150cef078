package memory

import (
	"cmp"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/syssam/querykit/query"
)

// match reports whether rec satisfies f. An absent filter matches every
// record; a present but empty Or group matches none.
func match[T any](get Accessor[T], f query.Filter[T], rec T) (bool, error) {
	for field, c := range f.Fields {
		v, ok := get(rec, field)
		if !ok {
			return false, &UnknownFieldError{Field: field}
		}
		for op, x := range c {
			ok, err := eval(field, op, v, x)
			if err != nil || !ok {
				return false, err
			}
		}
	}
	for _, sub := range f.And {
		ok, err := match(get, sub, rec)
		if err != nil || !ok {
			return false, err
		}
	}
	if f.Or == nil {
		return true, nil
	}
	for _, sub := range f.Or {
		ok, err := match(get, sub, rec)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func eval(field string, op query.Op, v, x any) (bool, error) {
	switch op {
	case query.OpEq:
		return equal(v, x), nil
	case query.OpNeq:
		return !equal(v, x), nil
	case query.OpGt, query.OpGte, query.OpLt, query.OpLte:
		if v == nil || x == nil {
			return false, nil
		}
		c, ok := compare(v, x)
		if !ok {
			return false, nil
		}
		switch op {
		case query.OpGt:
			return c > 0, nil
		case query.OpGte:
			return c >= 0, nil
		case query.OpLt:
			return c < 0, nil
		default:
			return c <= 0, nil
		}
	case query.OpLike, query.OpNotLike, query.OpILike, query.OpNotILike:
		pattern, ok := x.(string)
		if !ok {
			return false, &OperandError{Field: field, Op: op, Value: x}
		}
		negate := op == query.OpNotLike || op == query.OpNotILike
		if v == nil {
			return negate, nil
		}
		s := stringOf(v)
		if op == query.OpILike || op == query.OpNotILike {
			// A Caser is stateful; each evaluation gets its own.
			fold := cases.Fold()
			s, pattern = fold.String(s), fold.String(pattern)
		}
		return like(pattern).MatchString(s) != negate, nil
	case query.OpIn, query.OpNotIn:
		xs, ok := list(x)
		if !ok {
			return false, &OperandError{Field: field, Op: op, Value: x}
		}
		found := false
		for _, e := range xs {
			if equal(v, e) {
				found = true
				break
			}
		}
		return found != (op == query.OpNotIn), nil
	case query.OpIs, query.OpIsNot:
		var is bool
		switch x := x.(type) {
		case nil:
			is = v == nil
		case bool:
			b, ok := v.(bool)
			is = ok && b == x
		default:
			return false, &OperandError{Field: field, Op: op, Value: x}
		}
		return is != (op == query.OpIsNot), nil
	case query.OpBetween, query.OpNotBetween:
		r, ok := rangeOf(x)
		if !ok {
			return false, &OperandError{Field: field, Op: op, Value: x}
		}
		if v == nil {
			return op == query.OpNotBetween, nil
		}
		lo, lok := compare(v, r.Lower)
		hi, hok := compare(v, r.Upper)
		in := lok && hok && lo >= 0 && hi <= 0
		return in != (op == query.OpNotBetween), nil
	default:
		return false, &OperandError{Field: field, Op: op, Value: x}
	}
}

func rangeOf(x any) (query.Range, bool) {
	switch r := x.(type) {
	case query.Range:
		return r, true
	case *query.Range:
		if r != nil {
			return *r, true
		}
	}
	return query.Range{}, false
}

func list(x any) ([]any, bool) {
	if xs, ok := x.([]any); ok {
		return xs, true
	}
	v := reflect.ValueOf(x)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, false
	}
	xs := make([]any, v.Len())
	for i := range xs {
		xs[i] = v.Index(i).Interface()
	}
	return xs, true
}

func stringOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// like compiles an SQL LIKE pattern: % matches any run of characters and
// _ matches exactly one.
func like(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(`.*`)
		case '_':
			b.WriteString(`.`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString(`$`)
	return regexp.MustCompile(b.String())
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if c, ok := compare(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// compare orders two values of the same family: numbers of any Go numeric
// type, strings, booleans and times. The boolean is false for values that
// have no order between them.
func compare(a, b any) (int, bool) {
	if c, ok, numeric := compareNumbers(a, b); numeric {
		return c, ok
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return ta.Compare(tb), true
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ra.Kind() {
	case reflect.String:
		if rb.Kind() != reflect.String {
			return 0, false
		}
		return strings.Compare(ra.String(), rb.String()), true
	case reflect.Bool:
		if rb.Kind() != reflect.Bool {
			return 0, false
		}
		x, y := ra.Bool(), rb.Bool()
		return cmp3(!x && y, x && !y), true
	}
	return 0, false
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	default:
		return 0
	}
}

type numKind int

const (
	notNumber numKind = iota
	signed
	unsigned
	float
)

func numberKind(rv reflect.Value) numKind {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return signed
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return unsigned
	case reflect.Float32, reflect.Float64:
		return float
	default:
		return notNumber
	}
}

// compareNumbers orders two numbers. Integers are compared exactly; only a
// float on either side makes it a float comparison. numeric is false when a
// is not a number.
func compareNumbers(a, b any) (c int, ok, numeric bool) {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	ka, kb := numberKind(ra), numberKind(rb)
	switch {
	case ka == notNumber:
		return 0, false, false
	case kb == notNumber:
		return 0, false, true
	case ka == float || kb == float:
		fa, _ := number(a)
		fb, _ := number(b)
		return cmp3(fa < fb, fa > fb), true, true
	case ka == signed && kb == signed:
		return cmp.Compare(ra.Int(), rb.Int()), true, true
	case ka == unsigned && kb == unsigned:
		return cmp.Compare(ra.Uint(), rb.Uint()), true, true
	case ka == signed:
		if ra.Int() < 0 {
			return -1, true, true
		}
		return cmp.Compare(uint64(ra.Int()), rb.Uint()), true, true
	default:
		if rb.Int() < 0 {
			return 1, true, true
		}
		return cmp.Compare(ra.Uint(), uint64(rb.Int())), true, true
	}
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
