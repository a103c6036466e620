// Package schema holds per-table schemas and the column type coercion
// layer built on them.
//
// A Table is built once from a Definition (usually loaded from a YAML or
// CUE file) and is read-only afterwards, so concurrent reads are safe.
//
// Coercion is asymmetric:
//   - Hydrate converts every declared column from its stored form into the
//     application type. Failures yield nil for that field and never abort
//     the row.
//   - Serialize only rewrites what the drivers cannot bind natively: JSON
//     columns are marshalled to text and big integers are narrowed to
//     int64 (or a decimal string when they do not fit). Everything else
//     passes through unchanged.
package schema
