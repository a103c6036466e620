package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sift/internal/queryir"
)

func TestSelect_Shapes(t *testing.T) {
	c := NewCompiler(nil, nil)

	testCases := []struct {
		name string
		sel  queryir.Selection
		want string
	}{
		{"nil", nil, "*"},
		{"blank raw", queryir.RawSelect("  "), "*"},
		{"raw", queryir.RawSelect("id, COUNT(*) AS n"), "id, COUNT(*) AS n"},
		{"empty list", queryir.ColumnList{}, "*"},
		{"list", queryir.ColumnList{"id", "title", "LOWER(title) AS t"}, "id, title, LOWER(title) AS t"},
		{"empty object", queryir.SelectObject{}, "*"},
		{"object", queryir.SelectObject{
			Columns: map[string]string{"stories.title": "title", "stories.id": "", "views": "views"},
			Extra:   []string{"COUNT(*) OVER () AS n", " "},
		}, "stories.id, stories.title AS title, views, COUNT(*) OVER () AS n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewParams()
			sql, err := c.Select(tc.sel, p)
			require.NoError(t, err)
			assert.Equal(t, tc.want, sql)
			assert.Zero(t, p.Len())
		})
	}
}

func TestSelect_RejectsBadAlias(t *testing.T) {
	c := NewCompiler(nil, nil)

	_, err := c.Select(queryir.SelectObject{Columns: map[string]string{"id": "x; DROP"}}, NewParams())
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestRelevance(t *testing.T) {
	c := NewCompiler(nil, nil)
	p := NewParams()

	sql, err := c.Relevance(queryir.Boost{
		Alias: "score",
		Rules: []queryir.BoostRule{
			{Columns: []string{"title", "description"}, Value: "dash", Weight: 3},
			{Columns: []string{"status"}, Operator: "not in", Value: []string{"hiatus", "cancelled"}, Weight: 1},
			{Columns: []string{"title"}, Operator: "ilike", Value: "pie", Weight: 0.25},
			{Value: "views > 100", Weight: -1},
		},
	}, p)
	require.NoError(t, err)

	assert.Equal(t,
		"CASE WHEN (title LIKE $1 OR description LIKE $2) THEN 3"+
			" WHEN status NOT IN ($3, $4) THEN 1"+
			" WHEN title ILIKE $5 THEN 0.25"+
			" WHEN views > 100 THEN -1 ELSE 0 END AS score",
		sql)
	assert.Equal(t, []any{"%dash%", "%dash%", "hiatus", "cancelled", "%pie%"}, p.Values())
}

func TestRelevance_Defaults(t *testing.T) {
	c := NewCompiler(nil, SQLite)

	sql, err := c.Relevance(queryir.Boost{}, NewParams())
	require.NoError(t, err)
	assert.Equal(t, "0 AS relevance", sql)

	p := NewParams()
	sql, err = c.Relevance(queryir.Boost{Rules: []queryir.BoostRule{
		{Columns: []string{"title"}, Operator: "ILIKE", Value: 5, Weight: 2},
	}}, p)
	require.NoError(t, err)
	assert.Equal(t, "CASE WHEN title LIKE ?1 THEN 2 ELSE 0 END AS relevance", sql)
	assert.Equal(t, []any{"%5%"}, p.Values())
}

func TestRelevance_Errors(t *testing.T) {
	c := NewCompiler(nil, nil)

	testCases := []struct {
		name  string
		boost queryir.Boost
		err   error
	}{
		{"bad operator", queryir.Boost{Rules: []queryir.BoostRule{{Columns: []string{"a"}, Operator: "~*", Value: "x"}}}, nil},
		{"raw rule not a string", queryir.Boost{Rules: []queryir.BoostRule{{Value: 4}}}, nil},
		{"bad column", queryir.Boost{Rules: []queryir.BoostRule{{Columns: []string{"a b"}, Value: "x"}}}, ErrInvalidIdentifier},
		{"bad alias", queryir.Boost{Alias: "1x"}, ErrInvalidIdentifier},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Relevance(tc.boost, NewParams())
			require.Error(t, err)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			}
		})
	}
}
