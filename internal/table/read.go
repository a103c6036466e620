package table

import (
	"context"
	"fmt"

	"github.com/roach88/sift/internal/querysql"
	"github.com/roach88/sift/internal/store"
)

// defaultBase assembles the table's default select, join and order.
func (t *Table) defaultBase(p *querysql.Params) (querysql.Base, error) {
	sel, err := t.compiler.Select(t.schema.Select, p)
	if err != nil {
		return querysql.Base{}, fmt.Errorf("%s select: %w", t.schema.Name, err)
	}
	join, err := querysql.CompileJoin(t.schema.Join)
	if err != nil {
		return querysql.Base{}, fmt.Errorf("%s join: %w", t.schema.Name, err)
	}
	return querysql.Base{
		Select: sel,
		From:   t.schema.Name,
		Join:   join,
		Order:  t.schema.Order,
	}, nil
}

// Exists reports whether a row with key exists.
func (t *Table) Exists(ctx context.Context, key Key) (bool, error) {
	p := querysql.NewParams()
	where, err := t.keyWhere(key, false, p)
	if err != nil {
		return false, err
	}

	sql := querysql.LimitSQL(querysql.Base{Select: "1 AS present", From: t.schema.Name, Where: where}, t.dialect(), p, 1)
	row, err := t.queryRow(ctx, sql, p.Values())
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

// Get returns the row with key using the default select, join and order.
// It returns ErrNotFound when there is no such row.
func (t *Table) Get(ctx context.Context, key Key) (store.Row, error) {
	p := querysql.NewParams()
	base, err := t.defaultBase(p)
	if err != nil {
		return nil, err
	}
	if base.Where, err = t.keyWhere(key, true, p); err != nil {
		return nil, err
	}

	row, err := t.queryRow(ctx, querysql.LimitSQL(base, t.dialect(), p, 1), p.Values())
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%s: %w", t.schema.Name, ErrNotFound)
	}
	return t.schema.Hydrate(row), nil
}

// GetAll returns every row whose primary key equals id, or every row in
// the table when id is nil. It is not capped by the max-rows setting.
func (t *Table) GetAll(ctx context.Context, id any) ([]store.Row, error) {
	return t.getRows(ctx, id, 0)
}

// GetAmount is GetAll limited to n rows. n <= 0 yields no rows.
func (t *Table) GetAmount(ctx context.Context, n int, id any) ([]store.Row, error) {
	if n <= 0 {
		return []store.Row{}, nil
	}
	return t.getRows(ctx, id, n)
}

func (t *Table) getRows(ctx context.Context, id any, limit int) ([]store.Row, error) {
	p := querysql.NewParams()
	base, err := t.defaultBase(p)
	if err != nil {
		return nil, err
	}
	if id != nil {
		if base.Where, err = t.keyWhere(Key{ID: id}, true, p); err != nil {
			return nil, err
		}
	}

	sql := base.SQL()
	if limit > 0 {
		sql = querysql.LimitSQL(base, t.dialect(), p, limit)
	}

	rows, err := t.query(ctx, sql, p.Values())
	if err != nil {
		return nil, err
	}
	return t.hydrate(rows), nil
}
