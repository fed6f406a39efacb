package dialect

import "context"

// Dialect names for supported database engines.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite3"
	Postgres = "postgres"
)

// Querier wraps the Query method used by catalog readers.
type Querier interface {
	// Query executes a query that returns rows, typically a SELECT
	// against information_schema. The v argument is dialect specific.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps the methods a catalog reader needs
// from an open database connection.
type Driver interface {
	Querier
	// Close closes the underlying connection pool.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}
