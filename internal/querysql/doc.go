// Package querysql compiles queryir values into parameterized SQL.
//
// Every compiler call takes the Params cache of the statement being built.
// Placeholders are numbered from that cache in call order, so the
// placeholder numbered i is always the i-th value pushed, no matter how
// deeply conditions nest or how many compilers (select list, tag filter,
// WHERE clause) contribute to the same statement.
//
// CRITICAL: values are never interpolated; only identifiers that pass
// ValidateIdentifier, allowlisted operators and integers produced here
// reach the SQL text. Raw SQL fragments (RawSelect, JoinSpec.On, boost
// rules without columns) are caller-trusted.
//
// Two dialects are provided: Postgres ($n placeholders) and SQLite (?n).
package querysql
