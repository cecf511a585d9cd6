// Package sqlite provides the SQLite-backed metadata store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements driven.MetadataStore.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is named NNN_name.up.sql.
//
// Rows are grouped by build. A build becomes visible only when activated, and
// activation removes every older build, so readers never see a half-written build.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-rag/metadata.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
