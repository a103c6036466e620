package querysql

import (
	"fmt"
	"strconv"
	"strings"
)

// Columns added by FindSQL. Callers strip them from the row payload.
const (
	ColumnRowNumber = "sift_rn"
	ColumnTotal     = "sift_total"
	ColumnHit       = "sift_hit"
	ColumnPages     = "sift_pages"
	ColumnPage      = "sift_page"
)

// Base is an assembled read query without LIMIT/OFFSET. Every field
// except From is optional; an empty Select means "*".
type Base struct {
	Select string
	From   string
	Join   string
	Where  string
	Order  string
}

// SQL renders the base query.
func (b Base) SQL() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if b.Select == "" {
		sb.WriteString("*")
	} else {
		sb.WriteString(b.Select)
	}
	sb.WriteString(" FROM ")
	sb.WriteString(b.From)
	b.writeTail(&sb)
	if b.Order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.Order)
	}
	return sb.String()
}

// writeTail appends the join and where clauses.
func (b Base) writeTail(sb *strings.Builder) {
	if b.Join != "" {
		sb.WriteString(" ")
		sb.WriteString(b.Join)
	}
	if b.Where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(b.Where)
	}
}

// CountSQL wraps the base query in a row count. ORDER BY is dropped since
// it cannot change the count.
func CountSQL(b Base) string {
	b.Order = ""
	return "SELECT COUNT(*) AS total FROM (" + b.SQL() + ") AS wrapper"
}

// LimitSQL appends a bound LIMIT to the base query.
func LimitSQL(b Base, d Dialect, p *Params, limit int) string {
	return b.SQL() + " LIMIT " + d.Placeholder(p.Add(limit))
}

// PageSQL appends bound LIMIT and OFFSET to the base query.
func PageSQL(b Base, d Dialect, p *Params, limit, offset int) string {
	lim := d.Placeholder(p.Add(limit))
	off := d.Placeholder(p.Add(offset))
	return b.SQL() + " LIMIT " + lim + " OFFSET " + off
}

// Find describes a positional lookup: rank every row matching Where by
// Order and return the first ranked row matching Target together with
// its position and page.
type Find struct {
	// Select is the row payload; empty means positional metadata only.
	Select string
	From   string
	Join   string
	Where  string

	// Target selects the row to locate; empty means the first ranked row.
	Target   string
	Order    string
	PageSize int
}

// FindSQL renders a positional lookup as a single statement.
//
// The ranking sub-query numbers rows with ROW_NUMBER() and counts them
// with COUNT(*) OVER (); the outer query keeps the first target hit and
// derives its page with integer arithmetic. Parameters must be bound in
// the order select, target, where.
func FindSQL(f Find) (string, error) {
	if f.PageSize <= 0 {
		return "", fmt.Errorf("find page size must be positive, got %d", f.PageSize)
	}
	if f.From == "" {
		return "", fmt.Errorf("find requires a table")
	}
	size := strconv.Itoa(f.PageSize)

	var inner strings.Builder
	inner.WriteString("SELECT ")
	if f.Select != "" {
		inner.WriteString(f.Select)
		inner.WriteString(", ")
	}
	inner.WriteString("ROW_NUMBER() OVER (")
	if f.Order != "" {
		inner.WriteString("ORDER BY ")
		inner.WriteString(f.Order)
	}
	inner.WriteString(") AS " + ColumnRowNumber)
	inner.WriteString(", COUNT(*) OVER () AS " + ColumnTotal)
	if f.Target != "" {
		inner.WriteString(", CASE WHEN " + f.Target + " THEN 1 ELSE 0 END AS " + ColumnHit)
	} else {
		inner.WriteString(", 1 AS " + ColumnHit)
	}
	inner.WriteString(" FROM ")
	inner.WriteString(f.From)
	Base{Join: f.Join, Where: f.Where}.writeTail(&inner)

	var outer strings.Builder
	outer.WriteString("SELECT ")
	if f.Select != "" {
		outer.WriteString("ranked.*")
	} else {
		outer.WriteString("ranked." + ColumnRowNumber + ", ranked." + ColumnTotal)
	}
	outer.WriteString(", (ranked." + ColumnTotal + " + " + size + " - 1) / " + size + " AS " + ColumnPages)
	outer.WriteString(", (ranked." + ColumnRowNumber + " - 1) / " + size + " + 1 AS " + ColumnPage)
	outer.WriteString(" FROM (")
	outer.WriteString(inner.String())
	outer.WriteString(") AS ranked WHERE ranked." + ColumnHit + " = 1")
	outer.WriteString(" ORDER BY ranked." + ColumnRowNumber + " LIMIT 1")

	return outer.String(), nil
}
