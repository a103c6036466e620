package querysql

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/sift/internal/condition"
	"github.com/roach88/sift/internal/queryir"
)

// Compiler compiles condition trees and select lists for one dialect.
//
// A Compiler holds no per-statement state and is safe for concurrent use;
// all mutable state lives in the Params passed to each call.
type Compiler struct {
	Registry *condition.Registry
	Dialect  Dialect
}

// NewCompiler creates a Compiler. A nil registry means the builtin
// conditions and a nil dialect means Postgres.
func NewCompiler(reg *condition.Registry, dialect Dialect) *Compiler {
	if reg == nil {
		reg = condition.NewRegistry()
	}
	if dialect == nil {
		dialect = Postgres
	}
	return &Compiler{Registry: reg, Dialect: dialect}
}

// Where compiles a condition tree into a boolean SQL expression.
//
// Empty groups, empty maps and nil nodes compile to "". Callers that
// mutate rows must treat "" as an error, never as "match everything".
func (c *Compiler) Where(node queryir.Node, p *Params) (string, error) {
	switch n := node.(type) {
	case nil:
		return "", nil
	case queryir.Group:
		return c.compileGroup(n, p)
	case *queryir.Group:
		if n == nil {
			return "", nil
		}
		return c.compileGroup(*n, p)
	case queryir.FlatMap:
		return c.compileFlatMap(n, p)
	case queryir.Leaf:
		return c.compileLeaf(n, p)
	case *queryir.Leaf:
		if n == nil {
			return "", nil
		}
		return c.compileLeaf(*n, p)
	default:
		return "", fmt.Errorf("unsupported condition node: %T", node)
	}
}

// compileGroup wraps each non-empty child in parentheses and joins them.
func (c *Compiler) compileGroup(g queryir.Group, p *Params) (string, error) {
	sep := " AND "
	if strings.EqualFold(string(g.Logic), string(queryir.LogicOr)) {
		sep = " OR "
	}

	parts := make([]string, 0, len(g.Children))
	for i, child := range g.Children {
		sql, err := c.Where(child, p)
		if err != nil {
			return "", fmt.Errorf("group child %d: %w", i, err)
		}
		if sql == "" {
			continue
		}
		parts = append(parts, "("+sql+")")
	}

	return strings.Join(parts, sep), nil
}

// compileFlatMap ANDs one leaf per key, in sorted key order.
func (c *Compiler) compileFlatMap(m queryir.FlatMap, p *Params) (string, error) {
	parts := make([]string, 0, len(m))
	for _, column := range m.SortedColumns() {
		leaf := m[column]
		leaf.Column = column

		sql, err := c.compileLeaf(leaf, p)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	return strings.Join(parts, " AND "), nil
}

// compileLeaf emits "<column> <operator> <placeholder>".
func (c *Compiler) compileLeaf(leaf queryir.Leaf, p *Params) (string, error) {
	if err := ValidateIdentifier(leaf.Column); err != nil {
		return "", fmt.Errorf("condition column: %w", err)
	}

	// Unknown keys already come back as plain equality on the raw value.
	res, _ := c.Registry.Resolve(leaf)

	column := leaf.Column
	if res.Column != "" {
		column = res.Column
	}
	op := c.Dialect.Operator(res.Operator)

	if res.Literal != "" {
		return column + " " + op + " " + res.Literal, nil
	}

	if res.List {
		values := expandList(res.Value)
		if len(values) == 0 {
			// IN () is not valid SQL.
			if op == "NOT IN" {
				return "1 = 1", nil
			}
			return "1 = 0", nil
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = c.bind(v, res.Transform, p)
		}
		return fmt.Sprintf("%s %s (%s)", column, op, strings.Join(placeholders, ", ")), nil
	}

	if res.Value == nil && res.Transform == "" {
		switch op {
		case "=":
			return column + " IS NULL", nil
		case "!=", "<>":
			return column + " IS NOT NULL", nil
		}
	}

	return column + " " + op + " " + c.bind(res.Value, res.Transform, p), nil
}

// bind pushes v and returns its (possibly transformed) placeholder text.
func (c *Compiler) bind(v any, transform string, p *Params) string {
	placeholder := c.Dialect.Placeholder(p.Add(v))
	if transform == "" {
		return placeholder
	}
	if fn, ok := c.Registry.Transform(transform); ok {
		return fn(placeholder)
	}
	return placeholder
}

// expandList turns a slice or array into []any; scalars become a
// single-element list. []byte is a scalar.
func expandList(v any) []any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte, string:
		return []any{val}
	case []any:
		return val
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	list := make([]any, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list
}
