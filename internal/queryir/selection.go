package queryir

// Selection describes the select-list of a read query.
//
// This is a sealed interface. A nil Selection selects "*".
type Selection interface {
	selectionNode()
}

// RawSelect is a select-list emitted verbatim. Caller-trusted.
type RawSelect string

func (RawSelect) selectionNode() {}

// ColumnList is an ordered list of column expressions joined with ", ".
type ColumnList []string

func (ColumnList) selectionNode() {}

// SelectObject combines aliased columns, extra raw expressions and an
// optional relevance boost.
//
// Columns maps a column expression to its output alias; an empty alias
// (or one equal to the expression) emits the expression alone. Columns
// are emitted in sorted key order, then Extra in list order, then the
// boost expression.
type SelectObject struct {
	Columns map[string]string `json:"columns,omitempty" yaml:"columns,omitempty"`
	Extra   []string          `json:"extra,omitempty" yaml:"extra,omitempty"`
	Boost   *Boost            `json:"boost,omitempty" yaml:"boost,omitempty"`
}

func (SelectObject) selectionNode() {}

// Boost describes a weighted relevance column:
//
//	CASE WHEN <rule1> THEN <w1> WHEN <rule2> THEN <w2> ... ELSE 0 END AS <alias>
//
// Rule order fixes WHEN precedence; the first matching rule wins.
type Boost struct {
	Alias string      `json:"alias,omitempty" yaml:"alias,omitempty"`
	Rules []BoostRule `json:"rules" yaml:"rules"`
}

// BoostRule is one weighted WHEN branch.
//
// With Columns set, the rule compares every column against Value (a scalar
// or a list) using Operator, which defaults to LIKE. LIKE/ILIKE values are
// wrapped in "%" wildcards and IN/NOT IN expand into one placeholder per
// element; all column comparisons are OR-ed.
//
// With no Columns, Value must be a string holding a raw SQL boolean
// condition, inserted verbatim.
type BoostRule struct {
	Columns  []string `json:"columns,omitempty" yaml:"columns,omitempty"`
	Operator string   `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value    any      `json:"value" yaml:"value"`
	Weight   float64  `json:"weight" yaml:"weight"`
}
