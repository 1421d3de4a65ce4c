// ABOUTME: Compiles wire-level JSON criteria into an executable expression tree
// ABOUTME: Unknown operators and malformed nodes fail with a CompileError naming the node

package query

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CompileError reports a criteria node that could not be compiled.
// It is a client error: the router maps it to a 400 response.
type CompileError struct {
	Node   string // compact JSON of the offending node
	Reason string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("invalid criteria node %s: %s", e.Node, e.Reason)
}

// wireNode is the JSON shape of a single criteria node. A node is either a
// combinator (exactly one of and/or/not set) or a predicate (field +
// operator + operand).
type wireNode struct {
	And []json.RawMessage `json:"and"`
	Or  []json.RawMessage `json:"or"`
	Not json.RawMessage   `json:"not"`

	Field    string          `json:"field"`
	Operator string          `json:"operator"`
	Operand  json.RawMessage `json:"operand"`
}

// validOperators is the set of operators the compiler accepts.
var validOperators = map[Operator]bool{
	OpEq:       true,
	OpNe:       true,
	OpGt:       true,
	OpGte:      true,
	OpLt:       true,
	OpLte:      true,
	OpIn:       true,
	OpContains: true,
}

// Compile parses a wire criteria tree into an Expr. Compilation is pure and
// side-effect-free; the returned expression is ready for Optimize and for
// execution by the store collaborator.
func Compile(raw json.RawMessage) (Expr, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &CompileError{Node: "null", Reason: "criteria is empty"}
	}

	var node wireNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, &CompileError{Node: compactNode(raw), Reason: "not a JSON object"}
	}

	combinators := 0
	if node.And != nil {
		combinators++
	}
	if node.Or != nil {
		combinators++
	}
	if node.Not != nil {
		combinators++
	}

	switch {
	case combinators > 1:
		return nil, &CompileError{Node: compactNode(raw), Reason: "multiple combinators in one node"}
	case combinators == 1 && (node.Field != "" || node.Operator != ""):
		return nil, &CompileError{Node: compactNode(raw), Reason: "node mixes combinator and predicate keys"}
	case node.And != nil:
		children, err := compileChildren(node.And)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			return nil, &CompileError{Node: compactNode(raw), Reason: "and requires at least one child"}
		}
		return &And{Children: children}, nil
	case node.Or != nil:
		children, err := compileChildren(node.Or)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			return nil, &CompileError{Node: compactNode(raw), Reason: "or requires at least one child"}
		}
		return &Or{Children: children}, nil
	case node.Not != nil:
		child, err := Compile(node.Not)
		if err != nil {
			return nil, err
		}
		return &Not{Child: child}, nil
	}

	return compilePred(raw, &node)
}

// compileChildren compiles each element of a combinator's child list.
func compileChildren(raws []json.RawMessage) ([]Expr, error) {
	children := make([]Expr, 0, len(raws))
	for _, raw := range raws {
		child, err := Compile(raw)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// compilePred builds a predicate from a {field, operator, operand} node.
func compilePred(raw json.RawMessage, node *wireNode) (Expr, error) {
	if node.Field == "" {
		return nil, &CompileError{Node: compactNode(raw), Reason: "field is required"}
	}
	if node.Operator == "" {
		return nil, &CompileError{Node: compactNode(raw), Reason: "operator is required"}
	}

	op := Operator(node.Operator)
	if !validOperators[op] {
		return nil, &CompileError{Node: compactNode(raw), Reason: fmt.Sprintf("unknown operator %q", node.Operator)}
	}

	if node.Operand == nil {
		return nil, &CompileError{Node: compactNode(raw), Reason: "operand is required"}
	}

	var operand any
	if err := json.Unmarshal(node.Operand, &operand); err != nil {
		return nil, &CompileError{Node: compactNode(raw), Reason: "operand is not valid JSON"}
	}

	if op == OpIn {
		if _, ok := operand.([]any); !ok {
			return nil, &CompileError{Node: compactNode(raw), Reason: "operand for in must be a list"}
		}
	}
	if op == OpContains {
		if _, ok := operand.(string); !ok {
			return nil, &CompileError{Node: compactNode(raw), Reason: "operand for contains must be a string"}
		}
	}

	return &Pred{Field: node.Field, Op: op, Operand: operand}, nil
}

// compactNode renders the offending node for error messages, truncated so a
// hostile payload cannot balloon the response.
func compactNode(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	s := buf.String()
	if len(s) > 120 {
		s = s[:117] + "..."
	}
	return s
}
