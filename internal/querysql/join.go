package querysql

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/sift/internal/queryir"
)

// ErrUnknownJoinKind is returned for join kinds outside queryir.JoinKind.
var ErrUnknownJoinKind = errors.New("unknown join kind")

var joinKeywords = map[queryir.JoinKind]string{
	"":                    "JOIN",
	queryir.JoinImplicit: "JOIN",
	queryir.JoinInner:    "INNER JOIN",
	queryir.JoinLeft:     "LEFT JOIN",
	queryir.JoinRight:    "RIGHT JOIN",
	queryir.JoinFull:     "FULL JOIN",
	queryir.JoinCross:    "CROSS JOIN",
}

// CompileJoin lowers a join description into JOIN clauses.
//
// A single JoinSpec is aliased "j"; JoinList entries are aliased "j1",
// "j2", ... by position. A nil join or an empty list compiles to "".
func CompileJoin(j queryir.Join) (string, error) {
	switch v := j.(type) {
	case nil:
		return "", nil
	case queryir.JoinSpec:
		return compileJoinSpec(v, "j")
	case *queryir.JoinSpec:
		if v == nil {
			return "", nil
		}
		return compileJoinSpec(*v, "j")
	case queryir.JoinList:
		clauses := make([]string, 0, len(v))
		for i, spec := range v {
			clause, err := compileJoinSpec(spec, "j"+strconv.Itoa(i+1))
			if err != nil {
				return "", fmt.Errorf("join %d: %w", i+1, err)
			}
			clauses = append(clauses, clause)
		}
		return strings.Join(clauses, " "), nil
	default:
		return "", fmt.Errorf("unsupported join type: %T", j)
	}
}

func compileJoinSpec(spec queryir.JoinSpec, alias string) (string, error) {
	kind := queryir.JoinKind(strings.ToLower(strings.TrimSpace(string(spec.Kind))))
	keyword, ok := joinKeywords[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownJoinKind, spec.Kind)
	}
	if err := ValidateIdentifier(spec.Table); err != nil {
		return "", fmt.Errorf("join table: %w", err)
	}

	if kind == queryir.JoinCross {
		return keyword + " " + spec.Table + " " + alias, nil
	}

	on := strings.TrimSpace(spec.On)
	if on == "" {
		return "", fmt.Errorf("%s %s requires an ON condition", keyword, spec.Table)
	}
	return keyword + " " + spec.Table + " " + alias + " ON " + on, nil
}
