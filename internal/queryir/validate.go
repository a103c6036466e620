package queryir

import (
	"fmt"
	"strings"
)

// ValidationResult summarizes a structural check of a condition tree.
type ValidationResult struct {
	// Leaves is the number of comparisons the tree will compile to.
	// Zero means the tree compiles to an empty WHERE clause.
	Leaves int

	// Warnings lists suspicious but compilable constructs.
	Warnings []string
}

// Empty reports whether the tree will compile to an empty WHERE clause.
func (r ValidationResult) Empty() bool {
	return r.Leaves == 0
}

// Validate walks a condition tree and reports its leaf count and warnings.
//
// Validate is a pure function with no side effects. It never fails; the
// compiler decides what is an error.
func Validate(node Node) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateNode(node, "$")

	return ValidationResult{
		Leaves:   v.leaves,
		Warnings: v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	leaves   int
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateNode(n Node, path string) {
	switch node := n.(type) {
	case nil:
		v.addWarning("%s: nil node compiles to nothing", path)
	case Group:
		v.validateGroup(node, path)
	case *Group:
		if node == nil {
			v.addWarning("%s: nil group compiles to nothing", path)
			return
		}
		v.validateGroup(*node, path)
	case FlatMap:
		v.validateFlatMap(node, path)
	case Leaf:
		v.validateLeaf(node, path)
	case *Leaf:
		if node == nil {
			v.addWarning("%s: nil leaf compiles to nothing", path)
			return
		}
		v.validateLeaf(*node, path)
	default:
		v.addWarning("%s: unknown node type %T", path, n)
	}
}

func (v *validator) validateGroup(g Group, path string) {
	logic := strings.ToUpper(string(g.Logic))
	if logic != string(LogicAnd) && logic != string(LogicOr) {
		v.addWarning("%s: logic %q is not AND/OR, treated as AND", path, g.Logic)
	}
	if len(g.Children) == 0 {
		v.addWarning("%s: empty group compiles to nothing", path)
	}
	for i, child := range g.Children {
		v.validateNode(child, fmt.Sprintf("%s[%d]", path, i))
	}
}

func (v *validator) validateFlatMap(m FlatMap, path string) {
	if len(m) == 0 {
		v.addWarning("%s: empty mapping compiles to nothing", path)
	}
	for _, column := range m.SortedColumns() {
		leaf := m[column]
		if leaf.Column != "" && leaf.Column != column {
			v.addWarning("%s.%s: descriptor column %q ignored in favour of the key", path, column, leaf.Column)
		}
		leaf.Column = column
		v.validateLeaf(leaf, path+"."+column)
	}
}

func (v *validator) validateLeaf(l Leaf, path string) {
	if l.Column == "" {
		v.addWarning("%s: leaf has no column", path)
		return
	}
	v.leaves++
}
