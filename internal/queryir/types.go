package queryir

// Node is a condition tree node.
//
// This is a sealed interface - only types in this package implement it.
//
// Node types:
//   - Group: boolean AND/OR over child nodes
//   - FlatMap: column -> descriptor shorthand, AND-ed together
//   - Leaf: a single column comparison
type Node interface {
	conditionNode()
}

// Logic is the boolean connective of a Group.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Group combines child nodes with AND or OR.
//
// Semantics:
//
//	(<child1>) AND|OR (<child2>) ... AND|OR (<childN>)
//
// Any Logic other than OR (case-insensitive) is treated as AND. Children
// that compile to nothing are skipped; a group with no surviving children
// compiles to the empty string.
type Group struct {
	Logic    Logic
	Children []Node
}

func (Group) conditionNode() {}

// And is shorthand for an AND group.
func And(children ...Node) Group {
	return Group{Logic: LogicAnd, Children: children}
}

// Or is shorthand for an OR group.
func Or(children ...Node) Group {
	return Group{Logic: LogicOr, Children: children}
}

// FlatMap maps column names to condition descriptors.
//
// The map key always wins over Leaf.Column. Entries are compiled in sorted
// key order so that the same map always yields the same SQL and the same
// parameter order.
type FlatMap map[string]Leaf

func (FlatMap) conditionNode() {}

// Leaf is a single condition descriptor.
//
// Condition names the registry entry used to resolve the comparison
// (e.g. "LOWER", "IN", "NULL"). When Condition is empty, Operator is used
// as the registry key instead, and when both are empty the comparison
// is plain equality.
//
// When Condition is set, Operator acts as a per-call override of the
// registered operator, and Transform overrides whether the registered
// value transform is applied to the placeholder.
type Leaf struct {
	Column    string `json:"column" yaml:"column"`
	Value     any    `json:"value,omitempty" yaml:"value,omitempty"`
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
	Operator  string `json:"operator,omitempty" yaml:"operator,omitempty"`
	Transform *bool  `json:"transform,omitempty" yaml:"transform,omitempty"`
}

func (Leaf) conditionNode() {}

// Eq builds an equality leaf.
func Eq(column string, value any) Leaf {
	return Leaf{Column: column, Value: value}
}

// Cond builds a leaf resolved through the named registry condition.
func Cond(column, condition string, value any) Leaf {
	return Leaf{Column: column, Value: value, Condition: condition}
}
