package table

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/roach88/sift/internal/queryir"
	"github.com/roach88/sift/internal/querysql"
	"github.com/roach88/sift/internal/store"
	"github.com/roach88/sift/internal/tagquery"
)

// TagFilter restricts a search with a tag query over a JSON array column.
type TagFilter struct {
	Query     string
	Column    string
	Wildcards bool
}

// SearchSpec describes a filtered read. Zero values fall back to the
// table defaults: Select and Join to the schema's, Order to the schema's
// order and PageSize to the table page size.
type SearchSpec struct {
	Select queryir.Selection
	Filter queryir.Node
	Tags   *TagFilter
	Join   queryir.Join
	Order  string

	// Paginate runs a count query and returns page Page of PageSize rows.
	Paginate bool
	Page     int
	PageSize int

	// Limit caps a non-paginated search. Zero means the table max-rows.
	Limit int
}

// SearchResult is one page (or the capped whole) of a search.
type SearchResult struct {
	Rows  []store.Row
	Total int64
	Pages int64
	Page  int

	// Tags is the parsed tag query, so callers can act on its specials
	// and modifiers.
	Tags tagquery.Query
}

// compiled is a search spec lowered against one Params.
type compiled struct {
	base     querysql.Base
	tags     tagquery.Query
	pageSize int
}

// Search runs spec. A page size that resolves to zero or less returns an
// empty result without querying.
func (t *Table) Search(ctx context.Context, spec SearchSpec) (SearchResult, error) {
	pageSize := t.resolvePageSize(spec.PageSize)
	if pageSize <= 0 {
		return SearchResult{Rows: []store.Row{}, Page: 1}, nil
	}

	p := querysql.NewParams()
	c, err := t.compileSearch(spec, p, false)
	if err != nil {
		return SearchResult{}, err
	}

	if !spec.Paginate {
		return t.searchCapped(ctx, spec, c, p)
	}

	page := spec.Page
	if page < 1 {
		page = 1
	}

	countArgs := p.Snapshot()
	countRow, err := t.queryRow(ctx, querysql.CountSQL(c.base), countArgs)
	if err != nil {
		return SearchResult{}, err
	}
	var total int64
	if countRow != nil {
		total = cast.ToInt64(countRow["total"])
	}

	result := SearchResult{
		Rows:  []store.Row{},
		Total: total,
		Pages: (total + int64(pageSize) - 1) / int64(pageSize),
		Page:  page,
		Tags:  c.tags,
	}
	if total == 0 {
		return result, nil
	}

	sql := querysql.PageSQL(c.base, t.dialect(), p, pageSize, (page-1)*pageSize)
	rows, err := t.query(ctx, sql, p.Values())
	if err != nil {
		return SearchResult{}, err
	}
	result.Rows = t.hydrate(rows)
	return result, nil
}

func (t *Table) searchCapped(ctx context.Context, spec SearchSpec, c compiled, p *querysql.Params) (SearchResult, error) {
	limit := spec.Limit
	if limit <= 0 {
		limit = t.maxRows
	}

	sql := c.base.SQL()
	if limit > 0 {
		sql = querysql.LimitSQL(c.base, t.dialect(), p, limit)
	}
	rows, err := t.query(ctx, sql, p.Values())
	if err != nil {
		return SearchResult{}, err
	}

	result := SearchResult{
		Rows:  t.hydrate(rows),
		Total: int64(len(rows)),
		Page:  1,
		Tags:  c.tags,
	}
	if len(rows) > 0 {
		result.Pages = 1
	}
	return result, nil
}

func (t *Table) resolvePageSize(n int) int {
	if n == 0 {
		return t.pageSize
	}
	return n
}

// compileSearch lowers spec into a base query, binding select, filter and
// tags into p in that order. With skipSelect the select list is left
// empty and nothing is bound for it.
func (t *Table) compileSearch(spec SearchSpec, p *querysql.Params, skipSelect bool) (compiled, error) {
	var c compiled

	if !skipSelect {
		sel := spec.Select
		if sel == nil {
			sel = t.schema.Select
		}
		t.noteSelection(sel)
		s, err := t.compiler.Select(sel, p)
		if err != nil {
			return c, fmt.Errorf("%s select: %w", t.schema.Name, err)
		}
		c.base.Select = s
	}

	join := spec.Join
	if join == nil {
		join = t.schema.Join
	}
	joinSQL, err := querysql.CompileJoin(join)
	if err != nil {
		return c, fmt.Errorf("%s join: %w", t.schema.Name, err)
	}

	order := spec.Order
	if order == "" {
		order = t.schema.Order
	}
	if err := querysql.ValidateOrder(order); err != nil {
		return c, fmt.Errorf("%s: %w", t.schema.Name, err)
	}

	where, err := t.compiler.Where(spec.Filter, p)
	if err != nil {
		return c, fmt.Errorf("%s filter: %w", t.schema.Name, err)
	}

	tagSQL, tags, err := t.compileTags(spec.Tags, p)
	if err != nil {
		return c, err
	}

	c.base.From = t.schema.Name
	c.base.Join = joinSQL
	c.base.Where = joinAnd(where, tagSQL)
	c.base.Order = order
	c.tags = tags
	return c, nil
}

// compileTags parses and lowers a tag filter. A blank or empty query adds
// no restriction.
func (t *Table) compileTags(f *TagFilter, p *querysql.Params) (string, tagquery.Query, error) {
	if f == nil || strings.TrimSpace(f.Query) == "" {
		return "", tagquery.Query{}, nil
	}

	q := t.tags.Parse(f.Query)
	if q.Empty() {
		return "", q, nil
	}

	column := f.Column
	if column == "" {
		return "", q, fmt.Errorf("%s: tag filter needs a column", t.schema.Name)
	}

	l := tagquery.Lowerer{Dialect: t.dialect(), Column: column, Wildcards: f.Wildcards}
	sql, err := l.Lower(q, p)
	if err != nil {
		return "", q, fmt.Errorf("%s tags: %w", t.schema.Name, err)
	}
	return sql, q, nil
}
