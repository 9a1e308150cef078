package privacy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/querykit/query"
)

// Policy decision sentinel errors.
//
// These errors are returned by rules to steer the policy evaluation. Use
// errors.Is() to check for them:
//
//	if errors.Is(err, privacy.Deny) { ... }
var (
	// Allow may be returned by rules to indicate that the policy
	// evaluation should terminate with an allow decision.
	Allow = errors.New("querykit/privacy: allow rule")

	// Deny may be returned by rules to indicate that the policy
	// evaluation should terminate with a deny decision.
	Deny = errors.New("querykit/privacy: deny rule")

	// Skip may be returned by rules to indicate that the policy
	// evaluation should continue to the next rule in the chain.
	Skip = errors.New("querykit/privacy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// Op is the kind of operation a policy is evaluated for.
type Op uint

// Operation kinds.
const (
	OpRead Op = 1 << iota
	OpCreate
	OpUpdate
	OpDelete

	OpWrite = OpCreate | OpUpdate | OpDelete
)

// Is reports whether op is one of the operations in o.
func (op Op) Is(o Op) bool { return op&o != 0 }

// String returns the operation names joined by "|".
func (op Op) String() string {
	var names []string
	for _, n := range []struct {
		op   Op
		name string
	}{{OpRead, "OpRead"}, {OpCreate, "OpCreate"}, {OpUpdate, "OpUpdate"}, {OpDelete, "OpDelete"}} {
		if op.Is(n.op) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("Op(%d)", uint(op))
	}
	return strings.Join(names, "|")
}

// Rule decides whether an operation over records of type T may proceed. It
// returns an Allow, Deny or Skip decision (nil means Skip) and may narrow
// the operation to the records matching the returned filter.
type Rule[T any] interface {
	Eval(ctx context.Context, op Op) (query.Filter[T], error)
}

// RuleFunc type is an adapter which allows the use of ordinary functions
// as rules.
type RuleFunc[T any] func(context.Context, Op) (query.Filter[T], error)

// Eval returns f(ctx, op).
func (f RuleFunc[T]) Eval(ctx context.Context, op Op) (query.Filter[T], error) {
	return f(ctx, op)
}

// Policy is an ordered list of rules.
type Policy[T any] []Rule[T]

// NewPolicy returns a policy evaluating rules in order.
func NewPolicy[T any](rules ...Rule[T]) Policy[T] {
	return Policy[T](rules)
}

// Eval evaluates the rules in order and returns the conjunction of their
// filters. Evaluation stops at the first Allow, which keeps the filters
// gathered so far, or at the first other non-Skip decision, which is
// returned as the error. A decision attached to ctx with DecisionContext
// takes precedence over the rules.
func (p Policy[T]) Eval(ctx context.Context, op Op) (query.Filter[T], error) {
	if decision, ok := DecisionFromContext(ctx); ok {
		return query.Filter[T]{}, decision
	}
	var f query.Filter[T]
	for _, rule := range p {
		rf, decision := rule.Eval(ctx, op)
		switch {
		case decision == nil || errors.Is(decision, Skip):
			f = query.MergeFilter(f, rf)
		case errors.Is(decision, Allow):
			return query.MergeFilter(f, rf), nil
		default:
			return query.Filter[T]{}, decision
		}
	}
	return f, nil
}

type decisionCtxKey struct{}

// DecisionContext creates a new context from the given parent context with
// a policy decision attached to it.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the policy decision from the context.
func DecisionFromContext(ctx context.Context) (error, bool) {
	decision, ok := ctx.Value(decisionCtxKey{}).(error)
	if ok && errors.Is(decision, Allow) {
		decision = nil
	}
	return decision, ok
}

// AlwaysAllowRule returns a rule that always returns an Allow decision.
func AlwaysAllowRule[T any]() Rule[T] {
	return fixedDecision[T]{Allow}
}

// AlwaysDenyRule returns a rule that always returns a Deny decision.
func AlwaysDenyRule[T any]() Rule[T] {
	return fixedDecision[T]{Deny}
}

// ContextRule creates a rule from a context evaluation function.
// Returning nil is equivalent to returning Skip.
func ContextRule[T any](eval func(context.Context) error) Rule[T] {
	return RuleFunc[T](func(ctx context.Context, _ Op) (query.Filter[T], error) {
		return query.Filter[T]{}, eval(ctx)
	})
}

// OnOperation evaluates the given rule only on the given operations.
func OnOperation[T any](rule Rule[T], op Op) Rule[T] {
	return RuleFunc[T](func(ctx context.Context, o Op) (query.Filter[T], error) {
		if o.Is(op) {
			return rule.Eval(ctx, o)
		}
		return query.Filter[T]{}, Skip
	})
}

// DenyOperationRule returns a rule denying the given operations.
func DenyOperationRule[T any](op Op) Rule[T] {
	rule := RuleFunc[T](func(_ context.Context, o Op) (query.Filter[T], error) {
		return query.Filter[T]{}, Denyf("querykit/privacy: operation %s is not allowed", o)
	})
	return OnOperation[T](rule, op)
}

// FilterFunc is an adapter that allows using ordinary functions as rules
// that only narrow operations. The returned filter is applied and the
// evaluation continues unless the function fails.
//
//	privacy.FilterFunc[Todo](func(ctx context.Context) (query.Filter[Todo], error) {
//	    return query.Where[Todo]("archived", query.Is(false)), nil
//	})
type FilterFunc[T any] func(context.Context) (query.Filter[T], error)

// Eval calls f(ctx). A nil error becomes a Skip decision.
func (f FilterFunc[T]) Eval(ctx context.Context, _ Op) (query.Filter[T], error) {
	filter, err := f(ctx)
	if err != nil {
		return query.Filter[T]{}, err
	}
	return filter, Skip
}

type fixedDecision[T any] struct {
	decision error
}

func (f fixedDecision[T]) Eval(context.Context, Op) (query.Filter[T], error) {
	return query.Filter[T]{}, f.decision
}

var (
	_ Rule[struct{}] = RuleFunc[struct{}](nil)
	_ Rule[struct{}] = FilterFunc[struct{}](nil)
	_ Rule[struct{}] = Policy[struct{}](nil)
)
