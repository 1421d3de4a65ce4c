// ABOUTME: Compiled query expression tree and its evaluation semantics
// ABOUTME: Predicates compare a single field; And/Or/Not combine child expressions

package query

import (
	"strings"
)

// Operator is a comparison operator applied by a predicate.
type Operator string

const (
	OpEq       Operator = "eq"       // field == operand
	OpNe       Operator = "ne"       // field != operand
	OpGt       Operator = "gt"       // field > operand
	OpGte      Operator = "gte"      // field >= operand
	OpLt       Operator = "lt"       // field < operand
	OpLte      Operator = "lte"      // field <= operand
	OpIn       Operator = "in"       // field equals any element of operand list
	OpContains Operator = "contains" // operand is a substring of the field text
)

// Expr is a compiled query expression. Matches reports whether an object's
// fields satisfy the expression. Evaluation is pure: an Expr never mutates
// the fields map and carries no state between calls.
type Expr interface {
	Matches(fields map[string]any) bool
}

// Pred is a single-field predicate {field, operator, operand}.
type Pred struct {
	Field   string
	Op      Operator
	Operand any
}

// And matches when every child matches.
type And struct {
	Children []Expr
}

// Or matches when at least one child matches.
type Or struct {
	Children []Expr
}

// Not matches when its child does not.
type Not struct {
	Child Expr
}

// Matches evaluates the predicate against the given fields.
// A predicate over an absent field never matches, regardless of operator.
func (p *Pred) Matches(fields map[string]any) bool {
	value, ok := fields[p.Field]
	if !ok {
		return false
	}

	switch p.Op {
	case OpEq:
		return valuesEqual(value, p.Operand)
	case OpNe:
		return !valuesEqual(value, p.Operand)
	case OpGt:
		cmp, ok := compareValues(value, p.Operand)
		return ok && cmp > 0
	case OpGte:
		cmp, ok := compareValues(value, p.Operand)
		return ok && cmp >= 0
	case OpLt:
		cmp, ok := compareValues(value, p.Operand)
		return ok && cmp < 0
	case OpLte:
		cmp, ok := compareValues(value, p.Operand)
		return ok && cmp <= 0
	case OpIn:
		list, ok := p.Operand.([]any)
		if !ok {
			return false
		}
		for _, candidate := range list {
			if valuesEqual(value, candidate) {
				return true
			}
		}
		return false
	case OpContains:
		text, okText := value.(string)
		needle, okNeedle := p.Operand.(string)
		return okText && okNeedle && strings.Contains(text, needle)
	default:
		return false
	}
}

func (a *And) Matches(fields map[string]any) bool {
	for _, child := range a.Children {
		if !child.Matches(fields) {
			return false
		}
	}
	return true
}

func (o *Or) Matches(fields map[string]any) bool {
	for _, child := range o.Children {
		if child.Matches(fields) {
			return true
		}
	}
	return false
}

func (n *Not) Matches(fields map[string]any) bool {
	return !n.Child.Matches(fields)
}

// Compare orders two field values using the same rules as predicate
// evaluation: numeric coercion across int/float, lexicographic strings.
// ok is false when the values are not comparable.
func Compare(a, b any) (int, bool) {
	return compareValues(a, b)
}

// valuesEqual compares two values for equality with numeric coercion,
// so an int stored in an object matches a JSON number operand.
func valuesEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return a == b
}

// compareValues orders two values. It returns ok=false when the values are
// not comparable (mixed or non-ordered types).
func compareValues(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		default:
			return 0, true
		}
	}

	sa, okA := a.(string)
	sb, okB := b.(string)
	if okA && okB {
		return strings.Compare(sa, sb), true
	}

	return 0, false
}

// toFloat widens any numeric value to float64 for comparison.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
