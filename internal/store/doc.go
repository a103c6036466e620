// Package store provides the database driver collaborator used by tables.
//
// A Driver exposes exactly three primitives, each taking SQL and an ordered
// argument list:
//   - Query: run, expect many rows
//   - QueryRow: run, expect at most one row (nil when there is none)
//   - Exec: run a mutation and report the changed row count
//
// Rows are returned as column -> value maps straight from the driver;
// type coercion is the schema package's job.
//
// # Engines
//
// SQLite (mattn/go-sqlite3) is the embedded file-based engine. It is opened
// with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// PostgreSQL goes through a pgx/v5 connection pool.
//
// Drivers never retry: whether a statement may be repeated depends on its
// idempotence, which only the caller knows.
package store
