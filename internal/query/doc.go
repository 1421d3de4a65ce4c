// Package query compiles wire-level find criteria into executable
// expressions.
//
// # Wire Form
//
// A criteria tree is nested JSON. A predicate node names a field, an
// operator, and an operand:
//
//	{"field": "num", "operator": "gte", "operand": 10}
//
// Boolean nodes combine children:
//
//	{"and": [
//	  {"field": "title", "operator": "contains", "operand": "hello"},
//	  {"or": [
//	    {"field": "num", "operator": "lt", "operand": 5},
//	    {"field": "num", "operator": "eq", "operand": 42}
//	  ]}
//	]}
//
// Operators: eq, ne, gt, gte, lt, lte, in, contains.
//
// # Compilation and Optimization
//
// Compile turns the wire tree into an Expr; unknown operators and malformed
// nodes produce a *CompileError identifying the offending node, which the
// gateway surfaces as a client error. Optimize applies semantics-preserving
// rewrites (combinator flattening, double-negation elimination, cheap-first
// reordering); it never changes the matched set, only evaluation cost.
//
// # Execution
//
// The store collaborator executes a Spec (compiled criteria plus skip,
// limit, and a single sort key) by calling Expr.Matches per object.
package query
