package tagquery

import (
	"fmt"
	"strings"

	"github.com/roach88/sift/internal/querysql"
)

// Wildcard markers accepted in terms when wildcard matching is enabled.
const (
	WildcardMany = '*'
	WildcardOne  = '?'
)

var (
	wildcardMarkers = string([]rune{WildcardMany, WildcardOne})
	likeEscaper     = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

// Lowerer compiles include chunks into EXISTS sub-queries over a JSON
// array column.
type Lowerer struct {
	Dialect   querysql.Dialect
	Column    string
	Wildcards bool
}

// Lower compiles the query's include chunks, binding through p so the
// result can be AND-ed with a column filter compiled against the same
// Params.
//
// An empty include list lowers to the dialect's TRUE. Callers that must
// not match every row have to check Query.Empty first.
func (l Lowerer) Lower(q Query, p *querysql.Params) (string, error) {
	return l.LowerChunks(q.Include, p)
}

// LowerChunks compiles chunks: chunks are AND-ed, group members OR-ed.
func (l Lowerer) LowerChunks(chunks []Chunk, p *querysql.Params) (string, error) {
	d := l.Dialect
	if d == nil {
		d = querysql.Postgres
	}
	if err := querysql.ValidateIdentifier(l.Column); err != nil {
		return "", fmt.Errorf("tag column: %w", err)
	}

	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		members := make([]string, 0, len(chunk))
		for _, term := range chunk {
			if sql := l.lowerTerm(d, term, p); sql != "" {
				members = append(members, sql)
			}
		}
		switch len(members) {
		case 0:
		case 1:
			parts = append(parts, members[0])
		default:
			parts = append(parts, "("+strings.Join(members, " OR ")+")")
		}
	}

	if len(parts) == 0 {
		return d.True(), nil
	}
	return strings.Join(parts, " AND "), nil
}

func (l Lowerer) lowerTerm(d querysql.Dialect, term string, p *querysql.Params) string {
	body, negated := splitNegation(term)
	if body == "" {
		return ""
	}

	var cond string
	if l.Wildcards && strings.ContainsAny(body, wildcardMarkers) {
		cond = "value LIKE " + d.Placeholder(p.Add(ToLikePattern(body))) + ` ESCAPE '\'`
	} else {
		cond = "value = " + d.Placeholder(p.Add(body))
	}

	exists := "EXISTS"
	if negated {
		exists = "NOT EXISTS"
	}
	return exists + " (SELECT 1 FROM " + d.JSONArrayElements(l.Column) + " WHERE " + cond + ")"
}

// ToLikePattern escapes LIKE metacharacters in term and then maps the
// wildcard markers onto % and _.
func ToLikePattern(term string) string {
	escaped := likeEscaper.Replace(term)
	return strings.NewReplacer(string(WildcardMany), "%", string(WildcardOne), "_").Replace(escaped)
}
