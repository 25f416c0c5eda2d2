// Package sqlite persists the vector index in a single SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database file holds:
//
//   - entries: index entries in insertion order (chunk text, position, embedding, metadata)
//   - index_meta: key-value attributes of the index (embedding fingerprint, dimension)
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory and embedded at compile time.
//
// # Data Location
//
// By default, the database is stored at ~/.voxqa/index/index.db. The
// directory is owned by the index; clearing the index removes it wholesale.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
