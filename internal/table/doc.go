// Package table executes record operations for one schema-described table.
//
// A Table combines a schema.Table, a store.Driver and a querysql.Compiler:
//
//   - Exists, Get, GetAll, GetAmount: key-addressed reads
//   - Set, Update, Delete: key-addressed writes
//   - AdvancedUpdate, AdvancedDelete: filter-driven writes
//   - Search: filtered reads with optional page/count pagination
//   - Find: the position and page of one row within a filtered ordering
//
// Every statement is built fresh with its own querysql.Params. Rows are
// hydrated through the schema before they are returned and values are
// serialized through it before they are bound.
//
// Filter-driven writes refuse to run when the filter compiles to nothing.
// Search in paginated mode issues a count and then a page query with no
// locking in between, so a concurrent write can leave the reported total
// stale by the time the page is read.
package table
