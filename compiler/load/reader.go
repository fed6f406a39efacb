// Package load reads table, column and foreign key metadata from a live
// MySQL catalog into typed records.
package load

import (
	"context"
	"log/slog"
	"time"

	"github.com/syssam/veloximport/dialect"
	"github.com/syssam/veloximport/dialect/sql"

	// MySQL driver registration.
	_ "github.com/go-sql-driver/mysql"
)

const (
	opConnect         = "connect"
	opListTables      = "list tables"
	opDescribeColumns = "describe columns"
	opListForeignKeys = "list foreign keys"
)

// Catalog queries. Every query is scoped to the database selected by the
// connection.
const (
	tableNamesQuery = "SELECT TABLE_NAME FROM information_schema.TABLES " +
		"WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME"
	tablesQuery = "SELECT TABLE_NAME, TABLE_COMMENT FROM information_schema.TABLES " +
		"WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME"
	columnsQuery = "SELECT COLUMN_NAME, COLUMN_TYPE, COLUMN_KEY, IS_NULLABLE, COLUMN_DEFAULT, EXTRA, COLUMN_COMMENT, ORDINAL_POSITION " +
		"FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION"
	foreignKeysQuery = "SELECT CONSTRAINT_NAME, COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME " +
		"FROM information_schema.KEY_COLUMN_USAGE WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? " +
		"AND REFERENCED_TABLE_NAME IS NOT NULL ORDER BY CONSTRAINT_NAME, ORDINAL_POSITION"
	databaseQuery = "SELECT DATABASE()"
)

// Reader issues catalog queries over one pooled connection.
type Reader struct {
	drv    dialect.Querier
	closer func() error
	stats  *sql.StatsDriver
	logger *slog.Logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*readerOptions)

type readerOptions struct {
	logger        *slog.Logger
	stats         bool
	slowThreshold time.Duration
	pingTimeout   time.Duration
}

// WithLogger sets the logger used for progress and statistics.
func WithLogger(l *slog.Logger) ReaderOption {
	return func(o *readerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStats records query statistics and logs queries slower than threshold.
func WithStats(threshold time.Duration) ReaderOption {
	return func(o *readerOptions) {
		o.stats = true
		o.slowThreshold = threshold
	}
}

// WithPingTimeout bounds the initial connection check.
func WithPingTimeout(d time.Duration) ReaderOption {
	return func(o *readerOptions) {
		o.pingTimeout = d
	}
}

func newOptions(opts []ReaderOption) *readerOptions {
	o := &readerOptions{logger: slog.Default(), pingTimeout: 10 * time.Second}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open opens a connection pool for the source and verifies it is reachable.
// The caller owns the returned Reader and must Close it.
func Open(ctx context.Context, src *Source, opts ...ReaderOption) (*Reader, error) {
	o := newOptions(opts)
	drv, err := sql.Open(src.Dialect(), src.DSN)
	if err != nil {
		return nil, NewCatalogError(opConnect, "", err)
	}
	// Catalog reads are sequential; one connection is held for the whole run.
	drv.DB().SetMaxOpenConns(1)
	if err := drv.Ping(ctx, o.pingTimeout); err != nil {
		_ = drv.Close()
		return nil, NewCatalogError(opConnect, "", err)
	}
	o.logger.Debug("connected to database", "addr", src.Addr, "database", src.Database)
	return newReader(drv, o), nil
}

// NewReader returns a Reader over an already opened driver.
func NewReader(drv *sql.Driver, opts ...ReaderOption) *Reader {
	return newReader(drv, newOptions(opts))
}

func newReader(drv *sql.Driver, o *readerOptions) *Reader {
	r := &Reader{drv: drv, closer: drv.Close, logger: o.logger}
	if o.stats {
		r.stats = sql.NewStatsDriver(drv,
			sql.WithSlowThreshold(o.slowThreshold),
			sql.WithSlowQueryLog(o.logger),
		)
		r.drv = r.stats
	}
	return r
}

// Close releases the connection pool. It is safe to call more than once.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	if r.stats != nil {
		r.logger.Debug("catalog query statistics", "stats", r.stats.QueryStats().Stats().String())
	}
	closer := r.closer
	r.closer = nil
	return closer()
}

// Database returns the name of the database selected by the connection.
func (r *Reader) Database(ctx context.Context) (string, error) {
	rows := &sql.Rows{}
	if err := r.drv.Query(ctx, databaseQuery, []any{}, rows); err != nil {
		return "", NewCatalogError(opListTables, "", err)
	}
	defer rows.Close()
	var name sql.NullString
	if rows.Next() {
		if err := rows.Scan(&name); err != nil {
			return "", NewCatalogError(opListTables, "", err)
		}
	}
	if err := rows.Err(); err != nil {
		return "", NewCatalogError(opListTables, "", err)
	}
	return name.String, nil
}

// ListTables returns the base tables of the active database, ordered by name.
func (r *Reader) ListTables(ctx context.Context) ([]string, error) {
	rows := &sql.Rows{}
	if err := r.drv.Query(ctx, tableNamesQuery, []any{}, rows); err != nil {
		return nil, NewCatalogError(opListTables, "", err)
	}
	names, err := sql.ScanStrings(rows)
	if err != nil {
		return nil, NewCatalogError(opListTables, "", err)
	}
	return names, nil
}

// tables returns the base tables with their comments. Columns and foreign
// keys are left empty.
func (r *Reader) tables(ctx context.Context) ([]*Table, error) {
	rows := &sql.Rows{}
	if err := r.drv.Query(ctx, tablesQuery, []any{}, rows); err != nil {
		return nil, NewCatalogError(opListTables, "", err)
	}
	defer rows.Close()
	var tables []*Table
	for rows.Next() {
		var (
			t       Table
			comment sql.NullString
		)
		if err := rows.Scan(&t.Name, &comment); err != nil {
			return nil, NewCatalogError(opListTables, "", err)
		}
		t.Comment = comment.String
		tables = append(tables, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, NewCatalogError(opListTables, "", err)
	}
	return tables, nil
}

// DescribeColumns returns the columns of a table in declaration order.
func (r *Reader) DescribeColumns(ctx context.Context, table string) ([]*Column, error) {
	rows := &sql.Rows{}
	if err := r.drv.Query(ctx, columnsQuery, []any{table}, rows); err != nil {
		return nil, NewCatalogError(opDescribeColumns, table, err)
	}
	defer rows.Close()
	var columns []*Column
	for rows.Next() {
		var (
			c        Column
			nullable string
			def      sql.NullString
			extra    sql.NullString
			comment  sql.NullString
		)
		if err := rows.Scan(&c.Name, &c.Type, &c.Key, &nullable, &def, &extra, &comment, &c.Position); err != nil {
			return nil, NewCatalogError(opDescribeColumns, table, err)
		}
		c.Nullable = nullable == "YES"
		if def.Valid {
			c.Default = &def.String
		}
		c.Extra, c.Comment = extra.String, comment.String
		columns = append(columns, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, NewCatalogError(opDescribeColumns, table, err)
	}
	return columns, nil
}

// ListForeignKeys returns the foreign key columns declared by a table.
func (r *Reader) ListForeignKeys(ctx context.Context, table string) ([]*ForeignKey, error) {
	rows := &sql.Rows{}
	if err := r.drv.Query(ctx, foreignKeysQuery, []any{table}, rows); err != nil {
		return nil, NewCatalogError(opListForeignKeys, table, err)
	}
	defer rows.Close()
	var fks []*ForeignKey
	for rows.Next() {
		fk := &ForeignKey{Table: table}
		if err := rows.Scan(&fk.Constraint, &fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			return nil, NewCatalogError(opListForeignKeys, table, err)
		}
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, NewCatalogError(opListForeignKeys, table, err)
	}
	return fks, nil
}

// LoadOptions controls which tables Load reads.
type LoadOptions struct {
	// Exclude holds table name patterns (path.Match syntax) to skip.
	Exclude []string
}

// Load reads the complete catalog, table by table. Any failed query aborts
// the whole load: relation inference needs every table.
func (r *Reader) Load(ctx context.Context, opts LoadOptions) (*Catalog, error) {
	db, err := r.Database(ctx)
	if err != nil {
		return nil, err
	}
	tables, err := r.tables(ctx)
	if err != nil {
		return nil, err
	}
	c := &Catalog{Database: db}
	for _, t := range tables {
		if Excluded(t.Name, opts.Exclude) {
			r.logger.Debug("skipping excluded table", "table", t.Name)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if t.Columns, err = r.DescribeColumns(ctx, t.Name); err != nil {
			return nil, err
		}
		if t.ForeignKeys, err = r.ListForeignKeys(ctx, t.Name); err != nil {
			return nil, err
		}
		c.Tables = append(c.Tables, t)
	}
	r.logger.Debug("catalog loaded", "database", db, "tables", len(c.Tables))
	return c, nil
}
