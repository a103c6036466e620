package table

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/sift/internal/logger"
	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/querysql"
	"github.com/roach88/sift/internal/store"
)

// Set inserts values under key, or updates every non-key column of the
// existing row. With insertOnly an existing row is left untouched.
//
// The key fills the key columns unless values already carries them; a nil
// Key.ID lets the database generate the primary key. Set returns the
// declared primary key, generated and defaulted columns the caller did
// not supply, hydrated. The returned row is empty when there are none or
// when insertOnly skipped an existing row.
func (t *Table) Set(ctx context.Context, key Key, values map[string]any, insertOnly bool) (store.Row, error) {
	merged := make(map[string]any, len(values)+2)
	for k, v := range values {
		merged[k] = v
	}
	if key.ID != nil {
		merged[t.schema.PrimaryKey] = key.ID
	}
	if t.schema.SecondaryKey != "" && key.Sub != nil {
		merged[t.schema.SecondaryKey] = key.Sub
	}
	if len(merged) == 0 {
		return nil, ErrNoValues
	}

	serialized, err := t.schema.Serialize(merged)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.schema.Name, err)
	}
	cols, err := sortedColumns(serialized)
	if err != nil {
		return nil, err
	}

	d := t.dialect()
	p := querysql.NewParams()
	placeholders := make([]string, len(cols))
	for i, col := range cols {
		placeholders[i] = d.Placeholder(p.Add(serialized[col]))
	}

	keys := t.schema.KeyColumns()
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	var updates []string
	if !insertOnly {
		for _, col := range cols {
			if !isKey[col] {
				updates = append(updates, col+" = excluded."+col)
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO " + t.schema.Name)
	sb.WriteString(" (" + strings.Join(cols, ", ") + ")")
	sb.WriteString(" VALUES (" + strings.Join(placeholders, ", ") + ")")
	sb.WriteString(" ON CONFLICT (" + strings.Join(keys, ", ") + ")")
	if len(updates) > 0 {
		sb.WriteString(" DO UPDATE SET " + strings.Join(updates, ", "))
	} else {
		sb.WriteString(" DO NOTHING")
	}

	returning := t.schema.GeneratedColumns(merged)
	if len(returning) == 0 {
		if _, err := t.exec(ctx, sb.String(), p.Values()); err != nil {
			return nil, err
		}
		return store.Row{}, nil
	}

	sb.WriteString(" RETURNING " + strings.Join(returning, ", "))
	row, err := t.queryRow(ctx, sb.String(), p.Values())
	if err != nil {
		return nil, err
	}
	if row == nil {
		return store.Row{}, nil
	}
	return t.schema.Hydrate(row), nil
}

// Update sets values on the row with key and returns the number of rows
// changed. No filter compilation is involved.
func (t *Table) Update(ctx context.Context, key Key, values map[string]any) (int64, error) {
	if key.ID == nil {
		return 0, ErrMissingKey
	}
	p := querysql.NewParams()
	set, err := t.setClause(values, p)
	if err != nil {
		return 0, err
	}
	where, err := t.keyWhere(key, false, p)
	if err != nil {
		return 0, err
	}
	return t.exec(ctx, "UPDATE "+t.schema.Name+" SET "+set+" WHERE "+where, p.Values())
}

// Delete removes the row with key and returns the number of rows deleted.
func (t *Table) Delete(ctx context.Context, key Key) (int64, error) {
	p := querysql.NewParams()
	where, err := t.keyWhere(key, false, p)
	if err != nil {
		return 0, err
	}
	return t.exec(ctx, "DELETE FROM "+t.schema.Name+" WHERE "+where, p.Values())
}

// AdvancedUpdate sets values on every row matching filter.
//
// A nil filter returns ErrMissingFilter and a filter that compiles to
// nothing returns ErrEmptyWhere. In both cases no SQL is issued.
func (t *Table) AdvancedUpdate(ctx context.Context, values map[string]any, filter queryir.Node) (int64, error) {
	if filter == nil {
		return 0, ErrMissingFilter
	}
	p := querysql.NewParams()
	set, err := t.setClause(values, p)
	if err != nil {
		return 0, err
	}
	where, err := t.filterWhere(filter, p)
	if err != nil {
		return 0, err
	}
	return t.exec(ctx, "UPDATE "+t.schema.Name+" SET "+set+" WHERE "+where, p.Values())
}

// AdvancedDelete removes every row matching filter, with the same
// empty-filter checks as AdvancedUpdate.
func (t *Table) AdvancedDelete(ctx context.Context, filter queryir.Node) (int64, error) {
	if filter == nil {
		return 0, ErrMissingFilter
	}
	p := querysql.NewParams()
	where, err := t.filterWhere(filter, p)
	if err != nil {
		return 0, err
	}
	return t.exec(ctx, "DELETE FROM "+t.schema.Name+" WHERE "+where, p.Values())
}

func (t *Table) filterWhere(filter queryir.Node, p *querysql.Params) (string, error) {
	check := queryir.Validate(filter)
	for _, w := range check.Warnings {
		t.log.Warn("filter warning", logger.String("warning", w))
	}
	if check.Empty() {
		return "", fmt.Errorf("%s: %w", t.schema.Name, ErrEmptyWhere)
	}

	where, err := t.compiler.Where(filter, p)
	if err != nil {
		return "", fmt.Errorf("%s filter: %w", t.schema.Name, err)
	}
	if strings.TrimSpace(where) == "" {
		return "", fmt.Errorf("%s: %w", t.schema.Name, ErrEmptyWhere)
	}
	return where, nil
}

func (t *Table) setClause(values map[string]any, p *querysql.Params) (string, error) {
	if len(values) == 0 {
		return "", ErrNoValues
	}
	serialized, err := t.schema.Serialize(values)
	if err != nil {
		return "", fmt.Errorf("%s: %w", t.schema.Name, err)
	}
	cols, err := sortedColumns(serialized)
	if err != nil {
		return "", err
	}

	d := t.dialect()
	assignments := make([]string, len(cols))
	for i, col := range cols {
		assignments[i] = col + " = " + d.Placeholder(p.Add(serialized[col]))
	}
	return strings.Join(assignments, ", "), nil
}
