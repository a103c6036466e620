package schema

import (
	"fmt"
	"sort"

	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/querysql"
)

// File is the on-disk form of a set of table definitions.
type File struct {
	Tables []Definition `json:"tables" yaml:"tables"`
}

// Definition is the declarative form of a table schema.
type Definition struct {
	Name         string                      `json:"name" yaml:"name"`
	PrimaryKey   string                      `json:"primary_key" yaml:"primary_key"`
	SecondaryKey string                      `json:"secondary_key,omitempty" yaml:"secondary_key,omitempty"`
	Select       string                      `json:"select,omitempty" yaml:"select,omitempty"`
	Join         []queryir.JoinSpec          `json:"join,omitempty" yaml:"join,omitempty"`
	Order        string                      `json:"order,omitempty" yaml:"order,omitempty"`
	Columns      map[string]ColumnDefinition `json:"columns" yaml:"columns"`
}

// ColumnDefinition declares one column.
type ColumnDefinition struct {
	Type    string   `json:"type" yaml:"type"`
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// Table is a validated, immutable table schema.
type Table struct {
	Name         string
	PrimaryKey   string
	SecondaryKey string

	// Select is the default select-list; nil means "*".
	Select queryir.Selection

	// Join is the default join list; nil means a single-table query.
	// Entries are aliased j1, j2, ... like any JoinList.
	Join queryir.Join

	// Order is the default ORDER BY list.
	Order string

	Columns map[string]Column
}

// NewTable validates a definition and builds its Table.
func NewTable(def Definition) (*Table, error) {
	if err := querysql.ValidateIdentifier(def.Name); err != nil {
		return nil, fmt.Errorf("table name: %w", err)
	}
	if def.PrimaryKey == "" {
		return nil, fmt.Errorf("table %s: primary key is required", def.Name)
	}
	if err := querysql.ValidateIdentifier(def.PrimaryKey); err != nil {
		return nil, fmt.Errorf("table %s primary key: %w", def.Name, err)
	}
	if def.SecondaryKey != "" {
		if err := querysql.ValidateIdentifier(def.SecondaryKey); err != nil {
			return nil, fmt.Errorf("table %s secondary key: %w", def.Name, err)
		}
	}
	if err := querysql.ValidateOrder(def.Order); err != nil {
		return nil, fmt.Errorf("table %s: %w", def.Name, err)
	}

	t := &Table{
		Name:         def.Name,
		PrimaryKey:   def.PrimaryKey,
		SecondaryKey: def.SecondaryKey,
		Order:        def.Order,
		Columns:      make(map[string]Column, len(def.Columns)),
	}
	if def.Select != "" {
		t.Select = queryir.RawSelect(def.Select)
	}
	if len(def.Join) > 0 {
		join := queryir.JoinList(def.Join)
		if _, err := querysql.CompileJoin(join); err != nil {
			return nil, fmt.Errorf("table %s: %w", def.Name, err)
		}
		t.Join = join
	}

	for name, col := range def.Columns {
		if err := querysql.ValidateIdentifier(name); err != nil {
			return nil, fmt.Errorf("table %s column: %w", def.Name, err)
		}
		typ, err := ParseColumnType(col.Type)
		if err != nil {
			return nil, fmt.Errorf("table %s column %s: %w", def.Name, name, err)
		}
		t.Columns[name] = Column{Name: name, Type: typ, Options: col.Options}
	}

	return t, nil
}

// Column returns the declared column.
func (t *Table) Column(name string) (Column, bool) {
	c, ok := t.Columns[name]
	return c, ok
}

// ColumnNames returns the declared column names, sorted.
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for name := range t.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KeyColumns returns the primary key and, when set, the secondary key.
func (t *Table) KeyColumns() []string {
	if t.SecondaryKey == "" {
		return []string{t.PrimaryKey}
	}
	return []string{t.PrimaryKey, t.SecondaryKey}
}

// GeneratedColumns lists, sorted, the declared columns missing from input
// that the database fills in: primary keys, generated and defaulted
// columns. Writes return them.
func (t *Table) GeneratedColumns(input map[string]any) []string {
	var cols []string
	for _, name := range t.ColumnNames() {
		if _, given := input[name]; given {
			continue
		}
		col := t.Columns[name]
		if col.Has(OptionPrimaryKey) || col.Has(OptionGenerated) || col.Has(OptionDefault) {
			cols = append(cols, name)
		}
	}
	if cols == nil {
		return []string{}
	}
	return cols
}

// Catalog indexes tables by name.
type Catalog map[string]*Table

// NewCatalog builds every definition.
func NewCatalog(defs []Definition) (Catalog, error) {
	c := make(Catalog, len(defs))
	for _, def := range defs {
		t, err := NewTable(def)
		if err != nil {
			return nil, err
		}
		if _, dup := c[t.Name]; dup {
			return nil, fmt.Errorf("table %s defined twice", t.Name)
		}
		c[t.Name] = t
	}
	return c, nil
}

// Names returns the table names, sorted.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table returns the named table.
func (c Catalog) Table(name string) (*Table, error) {
	t, ok := c[name]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}
	return t, nil
}
