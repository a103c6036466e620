package table

import (
	"context"
	"fmt"

	"github.com/spf13/cast"

	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/querysql"
	"github.com/roach88/sift/internal/store"
)

// FindSpec locates one row within the ordering a SearchSpec produces.
// Paginate, Page and Limit are ignored.
type FindSpec struct {
	SearchSpec

	// Target picks the row to locate among the search results; nil means
	// the first row.
	Target queryir.Node

	// NoSelect returns only the positional fields, with a nil Row.
	NoSelect bool
}

// FindResult is the located row and where it sits. Position is 1-based
// within the whole ordered result; Page is the 1-based page holding it.
type FindResult struct {
	Row      store.Row
	Position int64
	Page     int64
	Pages    int64
	Total    int64
}

var findColumns = []string{
	querysql.ColumnRowNumber,
	querysql.ColumnTotal,
	querysql.ColumnHit,
	querysql.ColumnPages,
	querysql.ColumnPage,
}

// Find returns the first row matching spec.Target within spec's ordered,
// filtered rows, with its position and page, in one round trip. It
// returns ErrNotFound when no row matches.
//
// For the same filter, order and page size, Position and Page agree with
// the row's place in the equivalent paginated Search.
func (t *Table) Find(ctx context.Context, spec FindSpec) (FindResult, error) {
	pageSize := t.resolvePageSize(spec.PageSize)
	if pageSize <= 0 {
		return FindResult{}, fmt.Errorf("%s find: page size must be positive, got %d", t.schema.Name, pageSize)
	}

	// FindSQL binds select, target, where in that order.
	p := querysql.NewParams()
	var sel string
	if !spec.NoSelect {
		s := spec.Select
		if s == nil {
			s = t.schema.Select
		}
		t.noteSelection(s)
		var err error
		if sel, err = t.compiler.Select(s, p); err != nil {
			return FindResult{}, fmt.Errorf("%s select: %w", t.schema.Name, err)
		}
	}

	target, err := t.compiler.Where(spec.Target, p)
	if err != nil {
		return FindResult{}, fmt.Errorf("%s target: %w", t.schema.Name, err)
	}

	c, err := t.compileSearch(spec.SearchSpec, p, true)
	if err != nil {
		return FindResult{}, err
	}

	sql, err := querysql.FindSQL(querysql.Find{
		Select:   sel,
		From:     c.base.From,
		Join:     c.base.Join,
		Where:    c.base.Where,
		Target:   target,
		Order:    c.base.Order,
		PageSize: pageSize,
	})
	if err != nil {
		return FindResult{}, fmt.Errorf("%s: %w", t.schema.Name, err)
	}

	row, err := t.queryRow(ctx, sql, p.Values())
	if err != nil {
		return FindResult{}, err
	}
	if row == nil {
		return FindResult{}, fmt.Errorf("%s: %w", t.schema.Name, ErrNotFound)
	}

	result := FindResult{
		Position: cast.ToInt64(row[querysql.ColumnRowNumber]),
		Total:    cast.ToInt64(row[querysql.ColumnTotal]),
		Pages:    cast.ToInt64(row[querysql.ColumnPages]),
		Page:     cast.ToInt64(row[querysql.ColumnPage]),
	}
	if !spec.NoSelect {
		payload := make(store.Row, len(row))
		for k, v := range row {
			payload[k] = v
		}
		for _, col := range findColumns {
			delete(payload, col)
		}
		result.Row = t.schema.Hydrate(payload)
	}
	return result, nil
}
