// ABOUTME: Semantics-preserving rewrites over compiled query expressions
// ABOUTME: Flattens combinators, removes double negation, reorders by evaluation cost

package query

import "sort"

// Optimize rewrites a compiled expression into a cheaper equivalent.
// The rewrites never change which objects match, only evaluation order:
//
//   - nested And/And and Or/Or children are flattened
//   - a single-child And/Or collapses to its child
//   - Not(Not(x)) collapses to x
//   - And/Or children are reordered so cheap predicates run first
func Optimize(expr Expr) Expr {
	switch e := expr.(type) {
	case *And:
		children := flatten(e.Children, func(c Expr) ([]Expr, bool) {
			inner, ok := c.(*And)
			if !ok {
				return nil, false
			}
			return inner.Children, true
		})
		if len(children) == 1 {
			return children[0]
		}
		orderByCost(children)
		return &And{Children: children}
	case *Or:
		children := flatten(e.Children, func(c Expr) ([]Expr, bool) {
			inner, ok := c.(*Or)
			if !ok {
				return nil, false
			}
			return inner.Children, true
		})
		if len(children) == 1 {
			return children[0]
		}
		orderByCost(children)
		return &Or{Children: children}
	case *Not:
		child := Optimize(e.Child)
		if inner, ok := child.(*Not); ok {
			return inner.Child
		}
		return &Not{Child: child}
	default:
		return expr
	}
}

// flatten optimizes each child and inlines children of the same combinator kind.
func flatten(children []Expr, sameKind func(Expr) ([]Expr, bool)) []Expr {
	out := make([]Expr, 0, len(children))
	for _, child := range children {
		opt := Optimize(child)
		if inner, ok := sameKind(opt); ok {
			out = append(out, inner...)
			continue
		}
		out = append(out, opt)
	}
	return out
}

// cost estimates relative evaluation expense. Equality and ordered
// comparisons are cheapest, list membership costs per element, and substring
// search is the most expensive leaf.
func cost(expr Expr) int {
	switch e := expr.(type) {
	case *Pred:
		switch e.Op {
		case OpIn:
			return 3
		case OpContains:
			return 5
		default:
			return 1
		}
	case *Not:
		return 1 + cost(e.Child)
	case *And:
		total := 1
		for _, c := range e.Children {
			total += cost(c)
		}
		return total
	case *Or:
		total := 1
		for _, c := range e.Children {
			total += cost(c)
		}
		return total
	default:
		return 1
	}
}

// orderByCost sorts children cheapest-first. The sort is stable so equal-cost
// predicates keep their relative order and repeated optimization is
// deterministic.
func orderByCost(children []Expr) {
	sort.SliceStable(children, func(i, j int) bool {
		return cost(children[i]) < cost(children[j])
	})
}
