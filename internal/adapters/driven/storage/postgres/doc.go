// Package postgres provides a PostgreSQL implementation of driven.HistoryStore.
//
// It is meant for deployments where several queue workers on different hosts
// share one history, so a result computed by one worker is a cache hit for
// every other. The store talks to PostgreSQL through database/sql using the
// pgx driver, and maps driver errors onto domain errors in MapError.
package postgres
