package condition

import "strings"

// comparisonOperators is the closed set of operators a caller may name
// through Leaf.Operator or a boost rule. Anything else is never emitted.
var comparisonOperators = map[string]bool{
	"=":         true,
	"!=":        true,
	"<>":        true,
	"<":         true,
	"<=":        true,
	">":         true,
	">=":        true,
	"LIKE":      true,
	"NOT LIKE":  true,
	"ILIKE":     true,
	"NOT ILIKE": true,
	"IN":        true,
	"NOT IN":    true,
}

// ComparisonOperator normalizes op and reports whether it is allowed.
func ComparisonOperator(op string) (string, bool) {
	norm := normalizeKey(op)
	if !comparisonOperators[norm] {
		return "", false
	}
	return norm, true
}

// IsListOperator reports whether op takes a parenthesized value list.
func IsListOperator(op string) bool {
	norm := normalizeKey(op)
	return norm == "IN" || norm == "NOT IN"
}

// IsLikeOperator reports whether op is a LIKE-family operator.
func IsLikeOperator(op string) bool {
	return strings.HasSuffix(normalizeKey(op), "LIKE")
}

// wrappedFunctions are registered through RegisterFunctionWrapped.
var wrappedFunctions = []struct {
	name      string
	transform bool
	operator  string
}{
	{"LOWER", true, "="},   // case-insensitive
	{"UPPER", true, "="},   // case-insensitive
	{"TRIM", true, "="},    // whitespace-insensitive
	{"LENGTH", false, "="}, // length comparison
	{"ABS", false, "="},    // magnitude
	{"ROUND", false, "="},  // numeric rounding
	{"DATE", true, "="},    // date extraction
	{"SOUNDEX", true, "="}, // phonetic; needs the engine's soundex support
}

func registerBuiltins(r *Registry) {
	for op := range comparisonOperators {
		mustRegister(r.Register(op, op))
	}
	mustRegister(r.Register("NULL", Resolved{Operator: "IS", Literal: "NULL"}))
	mustRegister(r.Register("NOT NULL", Resolved{Operator: "IS NOT", Literal: "NULL"}))

	for _, fn := range wrappedFunctions {
		mustRegister(r.RegisterFunctionWrapped(fn.name, fn.transform, fn.operator))
	}
}

func mustRegister(err error) {
	if err != nil {
		panic("condition: builtin registration: " + err.Error())
	}
}
