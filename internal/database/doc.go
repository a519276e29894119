// Package database provides the PostgreSQL connection pool for the optional
// availability history sink.
package database
