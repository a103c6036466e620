package querysql

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sift/internal/queryir"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestBase_SQL(t *testing.T) {
	assert.Equal(t, "SELECT * FROM stories", Base{From: "stories"}.SQL())
	assert.Equal(t,
		"SELECT id FROM stories JOIN authors j ON j.id = author_id WHERE id = $1 ORDER BY id DESC",
		Base{Select: "id", From: "stories", Join: "JOIN authors j ON j.id = author_id", Where: "id = $1", Order: "id DESC"}.SQL())
}

func TestCountSQL_DropsOrder(t *testing.T) {
	sql := CountSQL(Base{From: "stories", Where: "status = $1", Order: "id"})

	assert.Equal(t, "SELECT COUNT(*) AS total FROM (SELECT * FROM stories WHERE status = $1) AS wrapper", sql)
}

func TestLimitSQL(t *testing.T) {
	p := NewParams()
	p.Add("complete")

	sql := LimitSQL(Base{From: "stories", Where: "status = ?1"}, SQLite, p, 1000)

	assert.Equal(t, "SELECT * FROM stories WHERE status = ?1 LIMIT ?2", sql)
	assert.Equal(t, []any{"complete", 1000}, p.Values())
}

func searchPage(t *testing.T, d Dialect) (string, []any) {
	t.Helper()
	c := NewCompiler(nil, d)
	p := NewParams()

	sel, err := c.Select(queryir.SelectObject{
		Columns: map[string]string{"stories.id": "", "stories.title": "title"},
		Boost: &queryir.Boost{Rules: []queryir.BoostRule{
			{Columns: []string{"stories.title"}, Value: "dash", Weight: 2},
			{Columns: []string{"stories.status"}, Operator: "in", Value: []any{"complete", "hiatus"}, Weight: 1.5},
			{Value: "stories.views > 1000", Weight: 0.5},
		}},
	}, p)
	require.NoError(t, err)

	join, err := CompileJoin(queryir.JoinList{
		{Table: "authors", On: "j1.id = stories.author_id", Kind: queryir.JoinLeft},
	})
	require.NoError(t, err)

	where, err := c.Where(queryir.Or(
		queryir.FlatMap{
			"stories.status": {Value: "complete"},
			"stories.rating": {Value: 4, Operator: ">="},
		},
		queryir.Cond("stories.title", "LOWER", "Dash"),
	), p)
	require.NoError(t, err)

	order := "relevance DESC, stories.id"
	require.NoError(t, ValidateOrder(order))

	base := Base{Select: sel, From: "stories", Join: join, Where: where, Order: order}
	return PageSQL(base, d, p, 20, 40), p.Values()
}

func TestPageSQL_Golden(t *testing.T) {
	g := newGoldie(t)
	wantParams := []any{"%dash%", "complete", "hiatus", 4, "complete", "Dash", 20, 40}

	sql, params := searchPage(t, Postgres)
	g.Assert(t, "search_page_postgres", []byte(sql))
	assert.Equal(t, wantParams, params)

	sql, params = searchPage(t, SQLite)
	g.Assert(t, "search_page_sqlite", []byte(sql))
	assert.Equal(t, wantParams, params)
}

func TestFindSQL_Golden(t *testing.T) {
	g := newGoldie(t)

	sql, err := FindSQL(Find{
		Select:   "*",
		From:     "stories",
		Where:    "stories.status = $2",
		Target:   "stories.id = $1",
		Order:    "stories.id",
		PageSize: 20,
	})
	require.NoError(t, err)
	g.Assert(t, "find_with_payload", []byte(sql))

	sql, err = FindSQL(Find{
		From:     "stories",
		Join:     "JOIN authors j ON j.id = stories.author_id",
		Order:    "stories.created_at DESC",
		PageSize: 10,
	})
	require.NoError(t, err)
	g.Assert(t, "find_positional_only", []byte(sql))
}

func TestFindSQL_Errors(t *testing.T) {
	_, err := FindSQL(Find{From: "stories", PageSize: 0})
	assert.Error(t, err)

	_, err = FindSQL(Find{PageSize: 10})
	assert.Error(t, err)
}

func TestValidateOrder(t *testing.T) {
	valid := []string{"", "id", "id DESC", "stories.id asc, title", "rating DESC NULLS LAST, id"}
	for _, order := range valid {
		assert.NoError(t, ValidateOrder(order), order)
	}

	invalid := []string{"id; DROP TABLE x", "RANDOM()", "id DESC DESC", "id,", "1"}
	for _, order := range invalid {
		assert.ErrorIs(t, ValidateOrder(order), ErrInvalidOrder, order)
	}
}

func TestDialectByName(t *testing.T) {
	d, err := DialectByName("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = DialectByName("sqlite3")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
	assert.Equal(t, "json_each(tags)", d.JSONArrayElements("tags"))
	assert.Equal(t, "NOT LIKE", d.Operator("NOT ILIKE"))

	_, err = DialectByName("oracle")
	assert.Error(t, err)
}
