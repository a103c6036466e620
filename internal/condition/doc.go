// Package condition implements the condition registry: a table from
// condition name to the rule that turns a leaf descriptor into an SQL
// operator, an optional column rewrite and an optional placeholder
// transform.
//
// The registry is populated at start-up and read concurrently afterwards.
// Resolution never fails: an unknown name reports ok=false and the caller
// falls back to plain equality.
//
// NewRegistry comes with the builtin comparison, list, null and
// function-wrapped conditions; RegisterFunctionWrapped adds more of the
// latter, such as LOWER(col) = LOWER($1).
package condition
