package schema

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/querysql"
)

func storiesTable(t *testing.T) *Table {
	t.Helper()
	catalog, err := LoadFile(filepath.Join("testdata", "stories.yaml"))
	require.NoError(t, err)
	table, err := catalog.Table("stories")
	require.NoError(t, err)
	return table
}

func TestLoadFile_YAMLAndCUEAgree(t *testing.T) {
	fromYAML, err := LoadFile(filepath.Join("testdata", "stories.yaml"))
	require.NoError(t, err)
	fromCUE, err := LoadFile(filepath.Join("testdata", "stories.cue"))
	require.NoError(t, err)

	assert.Equal(t, []string{"authors", "stories"}, fromYAML.Names())
	assert.Equal(t, fromYAML, fromCUE)

	stories := fromYAML["stories"]
	assert.Equal(t, "id", stories.PrimaryKey)
	assert.Equal(t, "id", stories.Order)
	assert.Nil(t, stories.Select)
	assert.Equal(t, queryir.JoinList{{Table: "authors", On: "j1.id = stories.author_id", Kind: queryir.JoinLeft}}, stories.Join)
	assert.Equal(t, TypeJSON, stories.Columns["tags"].Type)
	assert.Equal(t, TypeBoolean, stories.Columns["complete"].Type)
	assert.Nil(t, fromYAML["authors"].Join)
}

func TestLoadYAML_RejectsUnknownFields(t *testing.T) {
	_, err := LoadYAML([]byte("tables:\n  - name: x\n    primary_key: id\n    primry: typo\n"))
	assert.Error(t, err)
}

func TestLoadCUE_Validation(t *testing.T) {
	testCases := map[string]string{
		"unknown field":   `tables: [{name: "x", primary_key: "id", colour: "red", columns: {}}]`,
		"bad name":        `tables: [{name: "1x", primary_key: "id", columns: {}}]`,
		"bad join kind":   `tables: [{name: "x", primary_key: "id", join: [{table: "y", on: "1 = 1", kind: "outer"}], columns: {}}]`,
		"not concrete":    `tables: [{name: string, primary_key: "id", columns: {}}]`,
		"syntax error":    `tables: [{`,
		"unknown type":    `tables: [{name: "x", primary_key: "id", columns: {a: type: "uuidish"}}]`,
		"missing primary": `tables: [{name: "x", primary_key: "", columns: {}}]`,
	}

	for name, src := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCUE([]byte(src), "bad.cue")
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "schema.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestNewTable_Validation(t *testing.T) {
	testCases := []struct {
		name string
		def  Definition
	}{
		{"bad table name", Definition{Name: "x;", PrimaryKey: "id"}},
		{"missing primary key", Definition{Name: "x"}},
		{"bad secondary key", Definition{Name: "x", PrimaryKey: "id", SecondaryKey: "a b"}},
		{"bad order", Definition{Name: "x", PrimaryKey: "id", Order: "RANDOM()"}},
		{"bad join", Definition{Name: "x", PrimaryKey: "id", Join: []queryir.JoinSpec{{Table: "y", Kind: "sideways", On: "1 = 1"}}}},
		{"bad column name", Definition{Name: "x", PrimaryKey: "id", Columns: map[string]ColumnDefinition{"a-b": {Type: "text"}}}},
		{"bad column type", Definition{Name: "x", PrimaryKey: "id", Columns: map[string]ColumnDefinition{"a": {Type: "blob"}}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTable(tc.def)
			assert.Error(t, err)
		})
	}

	_, err := NewTable(Definition{Name: "x", PrimaryKey: "id", Join: []queryir.JoinSpec{{Table: "y", Kind: "sideways", On: "1 = 1"}}})
	assert.ErrorIs(t, err, querysql.ErrUnknownJoinKind)
}

func TestNewCatalog_DuplicateTable(t *testing.T) {
	_, err := NewCatalog([]Definition{{Name: "x", PrimaryKey: "id"}, {Name: "x", PrimaryKey: "id"}})
	assert.Error(t, err)

	c, err := NewCatalog(nil)
	require.NoError(t, err)
	_, err = c.Table("x")
	assert.Error(t, err)
}

func TestTable_KeysAndGeneratedColumns(t *testing.T) {
	table := storiesTable(t)

	assert.Equal(t, []string{"id"}, table.KeyColumns())
	assert.Equal(t, []string{"created_at", "id"}, table.GeneratedColumns(map[string]any{"title": "x"}))
	assert.Equal(t, []string{"created_at"}, table.GeneratedColumns(map[string]any{"id": 1}))
	assert.Equal(t, []string{}, table.GeneratedColumns(map[string]any{"id": 1, "created_at": time.Now()}))

	composite, err := NewTable(Definition{Name: "ratings", PrimaryKey: "story_id", SecondaryKey: "user_id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"story_id", "user_id"}, composite.KeyColumns())
}

func TestColumn_Has(t *testing.T) {
	col := Column{Name: "id", Type: TypeInteger, Options: []string{"PRIMARY  KEY", "generated"}}

	assert.True(t, col.Has(OptionPrimaryKey))
	assert.True(t, col.Has("Generated"))
	assert.False(t, col.Has(OptionDefault))
}

func TestParseColumnType(t *testing.T) {
	for name, want := range map[string]ColumnType{
		"BOOL":                     TypeBoolean,
		"int":                      TypeInteger,
		"big-integer":              TypeBigInt,
		"Double  Precision":        TypeFloat,
		"jsonb":                    TypeJSON,
		"varchar":                  TypeText,
		"datetime":                 TypeTimestamp,
		"timestamp with time zone": TypeTimestampTZ,
	} {
		got, err := ParseColumnType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseColumnType("geometry")
	assert.Error(t, err)
	assert.True(t, TypeDate.IsTime())
	assert.False(t, TypeText.IsTime())
}
