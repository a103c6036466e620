package schema

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// fileSchema constrains CUE schema files. Definitions are closed, so
// unknown fields are rejected just like the strict YAML decoder does.
const fileSchema = `
#Column: {
	type:     string
	options?: [...string]
}

#Join: {
	table: string
	on?:   string
	kind?: "" | "implicit" | "inner" | "left" | "right" | "full" | "cross"
}

#Table: {
	name:           =~"^[A-Za-z_][A-Za-z0-9_]*$"
	primary_key:    string
	secondary_key?: string
	select?:        string
	order?:         string
	join?: [...#Join]
	columns: [string]: #Column
}

#File: {
	tables: [...#Table]
}
`

// LoadFile loads a catalog from a .yaml, .yml, .json or .cue file.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return LoadYAML(data)
	case ".cue":
		return LoadCUE(data, filepath.Base(path))
	default:
		return nil, fmt.Errorf("unsupported schema file extension: %s", path)
	}
}

// LoadYAML parses a YAML (or JSON) schema file. Unknown fields are
// rejected.
func LoadYAML(data []byte) (Catalog, error) {
	var file File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return NewCatalog(file.Tables)
}

// LoadCUE evaluates a CUE schema file against the #File definition.
func LoadCUE(data []byte, filename string) (Catalog, error) {
	ctx := cuecontext.New()

	def := ctx.CompileString(fileSchema).LookupPath(cue.ParsePath("#File"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("building schema definition: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compiling CUE: %w", err)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid schema file: %w", err)
	}

	var file File
	if err := unified.Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding CUE: %w", err)
	}
	return NewCatalog(file.Tables)
}
