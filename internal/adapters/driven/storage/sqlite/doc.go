// Package sqlite provides the SQLite implementation of driven.HistoryStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Every execution attempt is a row in the history table;
// the result cache reads the newest SUCCESS row for a (function, arguments)
// pair.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.taskdash/data/history.db
//
// # Thread Safety
//
// All operations are safe for concurrent use, including from several
// processes sharing the file. The store relies on SQLite's locking in WAL mode.
package sqlite
