package querysql

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidIdentifier is returned for table, column or alias names
	// that are not plain (optionally table-qualified) identifiers.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrInvalidOrder is returned for ORDER BY lists that are not
	// identifier [ASC|DESC] [NULLS FIRST|LAST] items.
	ErrInvalidOrder = errors.New("invalid order expression")
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
	orderItemPattern  = regexp.MustCompile(`(?i)^\s*[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?(\s+(ASC|DESC))?(\s+NULLS\s+(FIRST|LAST))?\s*$`)
	expressionPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*\.)?([A-Za-z_][A-Za-z0-9_]*|\*)(\([^;]*\))?(\s+(?i:AS)\s+[A-Za-z_][A-Za-z0-9_]*)?$`)
)

// ValidateIdentifier checks name against ident or table.ident.
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// ValidateOrder checks a comma-separated ORDER BY list.
func ValidateOrder(order string) error {
	if order == "" {
		return nil
	}
	for _, item := range splitTopLevel(order) {
		if !orderItemPattern.MatchString(item) {
			return fmt.Errorf("%w: %q", ErrInvalidOrder, order)
		}
	}
	return nil
}

// IsPlainExpression reports whether expr is a bare column, a qualified
// column, "*" or a simple function call, optionally aliased.
func IsPlainExpression(expr string) bool {
	return expressionPattern.MatchString(expr)
}

func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
