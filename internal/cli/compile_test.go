package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_TagsSQLite(t *testing.T) {
	cmd := NewCompileCommand(testRoot("text", "sqlite"))

	out, err := execute(cmd, "five -even")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "compile_tags_sqlite", []byte(out))
}

func TestCompile_FilterTagsAndTablePostgres(t *testing.T) {
	cmd := NewCompileCommand(testRoot("text", "postgres"))

	out, err := execute(cmd,
		"--filter", `{"rating": {"condition": ">=", "value": 3}}`,
		"--table", "stories",
		"--order", "id DESC",
		"(solo OR duo) applejack^2",
	)
	require.NoError(t, err)

	newGoldie(t).Assert(t, "compile_select_postgres", []byte(out))
}

func TestCompile_JSONWildcards(t *testing.T) {
	cmd := NewCompileCommand(testRoot("json", "sqlite"))

	out, err := execute(cmd, "--column", "labels", "--wildcards", "ponies_*")
	require.NoError(t, err)

	var resp struct {
		Data CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, `EXISTS (SELECT 1 FROM json_each(labels) WHERE value LIKE ?1 ESCAPE '\')`, resp.Data.SQL)
	assert.Equal(t, []any{`ponies\_%`}, resp.Data.Params)
}

func TestCompile_ReportsFilterWarnings(t *testing.T) {
	cmd := NewCompileCommand(testRoot("json", "sqlite"))

	out, err := execute(cmd, "--filter", `{"logic": "or", "conditions": [{"id": 1}, {"conditions": []}]}`)
	require.NoError(t, err)

	var resp struct {
		Data CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "(id = ?1)", resp.Data.SQL)
	assert.Equal(t, []string{"$[1]: empty group compiles to nothing"}, resp.Data.Warnings)

	out, err = execute(NewCompileCommand(testRoot("json", "sqlite")), "--filter", `{"id": 1}`)
	require.NoError(t, err)
	assert.NotContains(t, out, "warnings")
}

func TestCompile_DialectFromConfig(t *testing.T) {
	root := testRoot("text", "")
	root.Config.Driver = "postgres"

	out, err := execute(NewCompileCommand(root), "--filter", `{"column": "title", "condition": "LOWER", "value": "Dash"}`)
	require.NoError(t, err)
	assert.Equal(t, "SQL: LOWER(title) = LOWER($1)\nParams:\n  $1 = \"Dash\"\n", out)
}

func TestCompile_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		code string
	}{
		{"bad filter json", []string{"--filter", `{"a":`}, ErrCodeCompile},
		{"unsafe column", []string{"--filter", `{"a; DROP": 1}`}, ErrCodeCompile},
		{"unsafe tag column", []string{"--column", "tags)", "x"}, ErrCodeCompile},
		{"unsafe table", []string{"--table", "stories s", "x"}, ErrCodeCompile},
		{"unsafe order", []string{"--table", "stories", "--order", "RANDOM()", "x"}, ErrCodeCompile},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(NewCompileCommand(testRoot("text", "sqlite")), tc.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tc.code)
			assert.Contains(t, out, "Error ["+tc.code+"]")
		})
	}
}
