package querysql

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/sift/internal/condition"
	"github.com/roach88/sift/internal/queryir"
)

// DefaultRelevanceAlias names the boost column when Boost.Alias is empty.
const DefaultRelevanceAlias = "relevance"

// Select lowers a selection into a select-list.
//
// Raw strings and extra expressions are emitted verbatim; this is a
// formatter, not a sanitizer. Boost values are bound through p, so Select
// must run before Where when both share one Params.
func (c *Compiler) Select(sel queryir.Selection, p *Params) (string, error) {
	switch s := sel.(type) {
	case nil:
		return "*", nil
	case queryir.RawSelect:
		if strings.TrimSpace(string(s)) == "" {
			return "*", nil
		}
		return string(s), nil
	case queryir.ColumnList:
		if len(s) == 0 {
			return "*", nil
		}
		return strings.Join(s, ", "), nil
	case queryir.SelectObject:
		return c.selectObject(s, p)
	case *queryir.SelectObject:
		if s == nil {
			return "*", nil
		}
		return c.selectObject(*s, p)
	default:
		return "", fmt.Errorf("unsupported selection type: %T", sel)
	}
}

func (c *Compiler) selectObject(obj queryir.SelectObject, p *Params) (string, error) {
	parts := make([]string, 0, len(obj.Columns)+len(obj.Extra)+1)

	columns := make([]string, 0, len(obj.Columns))
	for col := range obj.Columns {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	for _, col := range columns {
		alias := obj.Columns[col]
		if alias == "" || alias == col {
			parts = append(parts, col)
			continue
		}
		if err := ValidateIdentifier(alias); err != nil {
			return "", fmt.Errorf("select alias: %w", err)
		}
		parts = append(parts, col+" AS "+alias)
	}

	for _, extra := range obj.Extra {
		if strings.TrimSpace(extra) != "" {
			parts = append(parts, extra)
		}
	}

	if obj.Boost != nil {
		expr, err := c.Relevance(*obj.Boost, p)
		if err != nil {
			return "", err
		}
		parts = append(parts, expr)
	}

	if len(parts) == 0 {
		return "*", nil
	}
	return strings.Join(parts, ", "), nil
}

// Relevance lowers a boost descriptor into a CASE scoring expression.
func (c *Compiler) Relevance(b queryir.Boost, p *Params) (string, error) {
	alias := b.Alias
	if alias == "" {
		alias = DefaultRelevanceAlias
	}
	if err := ValidateIdentifier(alias); err != nil {
		return "", fmt.Errorf("relevance alias: %w", err)
	}

	if len(b.Rules) == 0 {
		return "0 AS " + alias, nil
	}

	var sb strings.Builder
	sb.WriteString("CASE")
	for i, rule := range b.Rules {
		cond, err := c.boostCondition(rule, p)
		if err != nil {
			return "", fmt.Errorf("boost rule %d: %w", i+1, err)
		}
		sb.WriteString(" WHEN ")
		sb.WriteString(cond)
		sb.WriteString(" THEN ")
		sb.WriteString(strconv.FormatFloat(rule.Weight, 'f', -1, 64))
	}
	sb.WriteString(" ELSE 0 END AS ")
	sb.WriteString(alias)
	return sb.String(), nil
}

func (c *Compiler) boostCondition(rule queryir.BoostRule, p *Params) (string, error) {
	if len(rule.Columns) == 0 {
		raw, ok := rule.Value.(string)
		if !ok || strings.TrimSpace(raw) == "" {
			return "", fmt.Errorf("rule without columns needs a raw SQL condition, got %T", rule.Value)
		}
		return raw, nil
	}

	opName := rule.Operator
	if opName == "" {
		opName = "LIKE"
	}
	op, ok := condition.ComparisonOperator(opName)
	if !ok {
		return "", fmt.Errorf("operator %q is not allowed", rule.Operator)
	}

	parts := make([]string, 0, len(rule.Columns))
	for _, col := range rule.Columns {
		if err := ValidateIdentifier(col); err != nil {
			return "", fmt.Errorf("boost column: %w", err)
		}
		parts = append(parts, c.boostComparison(col, op, rule.Value, p))
	}

	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", nil
}

func (c *Compiler) boostComparison(column, op string, value any, p *Params) string {
	sqlOp := c.Dialect.Operator(op)

	if condition.IsListOperator(op) {
		values := expandList(value)
		if len(values) == 0 {
			if op == "NOT IN" {
				return "1 = 1"
			}
			return "1 = 0"
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = c.Dialect.Placeholder(p.Add(v))
		}
		return column + " " + sqlOp + " (" + strings.Join(placeholders, ", ") + ")"
	}

	if condition.IsLikeOperator(op) {
		value = "%" + fmt.Sprint(value) + "%"
	}
	return column + " " + sqlOp + " " + c.Dialect.Placeholder(p.Add(value))
}
