// Package dialect names the database dialects veloximport understands and
// the small driver surface the catalog reader needs from them.
//
// Only MySQL catalogs are read. The other dialect names exist so generated
// SchemaType maps and driver wrappers can refer to them by constant:
//
//	dialect.MySQL    = "mysql"
//	dialect.Postgres = "postgres"
//	dialect.SQLite   = "sqlite3"
//
// # Driver Interface
//
//	type Driver interface {
//	    Query(ctx context.Context, query string, args, v any) error
//	    Close() error
//	    Dialect() string
//	}
//
// The sql subpackage implements Driver on top of database/sql.
package dialect
