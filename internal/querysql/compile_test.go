package querysql

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sift/internal/condition"
	"github.com/roach88/sift/internal/queryir"
)

func compileWhere(t *testing.T, c *Compiler, node queryir.Node) (string, []any) {
	t.Helper()
	p := NewParams()
	sql, err := c.Where(node, p)
	require.NoError(t, err)
	return sql, p.Values()
}

func TestWhere_Leaf(t *testing.T) {
	c := NewCompiler(nil, nil)

	sql, params := compileWhere(t, c, queryir.Eq("status", "complete"))

	assert.Equal(t, "status = $1", sql)
	assert.Equal(t, []any{"complete"}, params)
	assert.NotContains(t, sql, "complete", "values must be bound, never interpolated")
}

func TestWhere_Leaves(t *testing.T) {
	off := false

	testCases := []struct {
		name   string
		leaf   queryir.Leaf
		sql    string
		params []any
	}{
		{"operator key", queryir.Leaf{Column: "rating", Value: 4, Operator: ">="}, "rating >= $1", []any{4}},
		{"in list", queryir.Leaf{Column: "id", Value: []int{1, 2, 3}, Operator: "IN"}, "id IN ($1, $2, $3)", []any{1, 2, 3}},
		{"in scalar", queryir.Leaf{Column: "id", Value: 7, Condition: "in"}, "id IN ($1)", []any{7}},
		{"empty in", queryir.Leaf{Column: "id", Value: []any{}, Operator: "IN"}, "1 = 0", []any{}},
		{"empty not in", queryir.Leaf{Column: "id", Value: []string{}, Operator: "NOT IN"}, "1 = 1", []any{}},
		{"null condition", queryir.Cond("deleted_at", "NULL", nil), "deleted_at IS NULL", []any{}},
		{"not null condition", queryir.Cond("deleted_at", "NOT NULL", "ignored"), "deleted_at IS NOT NULL", []any{}},
		{"nil equality", queryir.Eq("deleted_at", nil), "deleted_at IS NULL", []any{}},
		{"nil inequality", queryir.Leaf{Column: "deleted_at", Operator: "!="}, "deleted_at IS NOT NULL", []any{}},
		{"lower", queryir.Cond("title", "LOWER", "Dash"), "LOWER(title) = LOWER($1)", []any{"Dash"}},
		{"lower like override", queryir.Leaf{Column: "title", Value: "%dash%", Condition: "LOWER", Operator: "LIKE"}, "LOWER(title) LIKE LOWER($1)", []any{"%dash%"}},
		{"transform off", queryir.Leaf{Column: "title", Value: "dash", Condition: "LOWER", Transform: &off}, "LOWER(title) = $1", []any{"dash"}},
		{"round", queryir.Cond("rating", "ROUND", 4), "ROUND(rating) = $1", []any{4}},
		{"unknown falls back to equality", queryir.Cond("status", "SIMILAR_TO", "x"), "status = $1", []any{"x"}},
		{"bytes are scalar", queryir.Leaf{Column: "blob", Value: []byte("ab"), Operator: "IN"}, "blob IN ($1)", []any{[]byte("ab")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, params := compileWhere(t, NewCompiler(nil, Postgres), tc.leaf)
			assert.Equal(t, tc.sql, sql)
			assert.Equal(t, tc.params, params)
		})
	}
}

func TestWhere_FlatMapSortedAndUnparenthesized(t *testing.T) {
	c := NewCompiler(nil, nil)

	sql, params := compileWhere(t, c, queryir.FlatMap{
		"status": {Value: "complete"},
		"rating": {Value: 3, Operator: ">"},
		"author": {Column: "ignored", Value: "applejack"},
	})

	assert.Equal(t, "author = $1 AND rating > $2 AND status = $3", sql)
	assert.Equal(t, []any{"applejack", 3, "complete"}, params)
}

func TestWhere_NestedGroups(t *testing.T) {
	c := NewCompiler(nil, nil)

	node := queryir.Or(
		queryir.And(
			queryir.Eq("a", 1),
			queryir.Leaf{Column: "b", Value: []any{2, 3}, Operator: "IN"},
		),
		queryir.Group{Logic: "bogus", Children: []queryir.Node{
			queryir.Eq("c", 4),
			queryir.Group{},
			queryir.Eq("d", 5),
		}},
		queryir.FlatMap{"e": {Value: 6}},
	)

	sql, params := compileWhere(t, c, node)

	assert.Equal(t, "((a = $1) AND (b IN ($2, $3))) OR ((c = $4) AND (d = $5)) OR (e = $6)", sql)
	assert.Equal(t, []any{1, 2, 3, 4, 5, 6}, params)
}

func TestWhere_EmptyCompilesToEmptyString(t *testing.T) {
	c := NewCompiler(nil, nil)

	nodes := []queryir.Node{
		nil,
		queryir.Group{},
		queryir.And(queryir.Or(), queryir.FlatMap{}),
		queryir.FlatMap{},
		(*queryir.Group)(nil),
		(*queryir.Leaf)(nil),
	}
	for i, node := range nodes {
		sql, params := compileWhere(t, c, node)
		assert.Empty(t, sql, "node %d", i)
		assert.Empty(t, params, "node %d", i)
	}
}

func TestWhere_RejectsUnsafeColumns(t *testing.T) {
	c := NewCompiler(nil, nil)

	for _, column := range []string{"", "1abc", "a b", "a;DROP TABLE x", "a.b.c", "lower(a)"} {
		_, err := c.Where(queryir.And(queryir.Eq(column, 1)), NewParams())
		assert.ErrorIs(t, err, ErrInvalidIdentifier, column)
	}
}

func TestWhere_SQLiteDialect(t *testing.T) {
	c := NewCompiler(nil, SQLite)

	sql, params := compileWhere(t, c, queryir.And(
		queryir.Leaf{Column: "title", Value: "%dash%", Operator: "ILIKE"},
		queryir.Eq("status", "complete"),
	))

	assert.Equal(t, "(title LIKE ?1) AND (status = ?2)", sql)
	assert.Equal(t, []any{"%dash%", "complete"}, params)
}

func TestWhere_CustomCondition(t *testing.T) {
	reg := condition.NewRegistry()
	require.NoError(t, reg.Register("STARTS_WITH", func(leaf queryir.Leaf) condition.Resolved {
		return condition.Resolved{Operator: "LIKE", Value: leaf.Value.(string) + "%"}
	}))
	c := NewCompiler(reg, nil)

	sql, params := compileWhere(t, c, queryir.Cond("title", "starts_with", "Rain"))

	assert.Equal(t, "title LIKE $1", sql)
	assert.Equal(t, []any{"Rain%"}, params)
}

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

func TestWhere_ParameterOrdering(t *testing.T) {
	c := NewCompiler(nil, nil)

	// Every leaf binds its own depth-first index as value, so placeholder
	// i must carry value i.
	counter := 0
	leaf := func() queryir.Node {
		counter++
		return queryir.Leaf{Column: "c" + strconv.Itoa(counter), Value: counter}
	}
	var build func(depth int) queryir.Node
	build = func(depth int) queryir.Node {
		if depth == 0 {
			return leaf()
		}
		return queryir.Group{
			Logic:    []queryir.Logic{queryir.LogicAnd, queryir.LogicOr}[depth%2],
			Children: []queryir.Node{build(depth - 1), leaf(), build(depth - 1)},
		}
	}
	node := build(4)

	sql, params := compileWhere(t, c, node)

	matches := placeholderPattern.FindAllStringSubmatch(sql, -1)
	require.Len(t, matches, len(params))
	for i, m := range matches {
		n, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		assert.Equal(t, i+1, n, "placeholders appear in bind order")
		assert.Equal(t, n, params[n-1], "placeholder $%d carries the %d-th value", n, n)
	}
}

func TestWhere_Idempotent(t *testing.T) {
	c := NewCompiler(nil, nil)
	node := queryir.Or(
		queryir.FlatMap{"b": {Value: 2}, "a": {Value: 1}},
		queryir.Cond("title", "UPPER", "x"),
	)

	sql1, params1 := compileWhere(t, c, node)
	sql2, params2 := compileWhere(t, c, node)

	assert.Equal(t, sql1, sql2)
	assert.Equal(t, params1, params2)
}

func TestWhere_SharedParamsContinueNumbering(t *testing.T) {
	c := NewCompiler(nil, nil)
	p := NewParams()
	p.Add("already bound")

	sql, err := c.Where(queryir.Eq("a", 1), p)
	require.NoError(t, err)

	assert.Equal(t, "a = $2", sql)
	assert.Equal(t, 3, p.Next())
	assert.Equal(t, []any{"already bound", 1}, p.Snapshot())
}

func TestParams_ValuesNeverNil(t *testing.T) {
	p := NewParams()
	assert.NotNil(t, p.Values())
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, 1, p.Next())
}
