package schema

import (
	"fmt"
	"strings"
)

// ColumnType is a declared column type.
type ColumnType string

const (
	TypeBoolean     ColumnType = "boolean"
	TypeInteger     ColumnType = "integer"
	TypeBigInt      ColumnType = "bigint"
	TypeFloat       ColumnType = "float"
	TypeJSON        ColumnType = "json"
	TypeText        ColumnType = "text"
	TypeDate        ColumnType = "date"
	TypeTimestamp   ColumnType = "timestamp"
	TypeTimestampTZ ColumnType = "timestamptz"
)

var typeAliases = map[string]ColumnType{
	"boolean": TypeBoolean,
	"bool":    TypeBoolean,

	"integer":  TypeInteger,
	"int":      TypeInteger,
	"int4":     TypeInteger,
	"smallint": TypeInteger,
	"serial":   TypeInteger,

	"bigint":      TypeBigInt,
	"big-integer": TypeBigInt,
	"int8":        TypeBigInt,
	"bigserial":   TypeBigInt,

	"float":            TypeFloat,
	"real":             TypeFloat,
	"double":           TypeFloat,
	"double precision": TypeFloat,
	"numeric":          TypeFloat,
	"decimal":          TypeFloat,

	"json":  TypeJSON,
	"jsonb": TypeJSON,

	"text":    TypeText,
	"string":  TypeText,
	"varchar": TypeText,
	"char":    TypeText,

	"date":                     TypeDate,
	"timestamp":                TypeTimestamp,
	"datetime":                 TypeTimestamp,
	"timestamptz":              TypeTimestampTZ,
	"timestamp with time zone": TypeTimestampTZ,
}

// ParseColumnType resolves a declared type name or one of its aliases.
func ParseColumnType(name string) (ColumnType, error) {
	key := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if t, ok := typeAliases[key]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown column type %q", name)
}

// IsTime reports whether values of this type hydrate to time.Time.
func (t ColumnType) IsTime() bool {
	return t == TypeDate || t == TypeTimestamp || t == TypeTimestampTZ
}

// Column option markers consulted by the write path.
const (
	OptionPrimaryKey = "primary key"
	OptionGenerated  = "generated"
	OptionDefault    = "default"
)

// Column is one declared column.
type Column struct {
	Name    string
	Type    ColumnType
	Options []string
}

// Has reports whether the column carries opt. Matching ignores case and
// extra whitespace.
func (c Column) Has(opt string) bool {
	want := normalizeOption(opt)
	for _, o := range c.Options {
		if normalizeOption(o) == want {
			return true
		}
	}
	return false
}

func normalizeOption(opt string) string {
	return strings.ToLower(strings.Join(strings.Fields(opt), " "))
}
