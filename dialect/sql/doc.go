// Package sql wraps database/sql with the small driver surface the catalog
// reader uses: a Driver that runs read queries into Rows, and a StatsDriver
// that counts queries and reports slow ones through log/slog.
//
//	drv, err := sql.Open(dialect.MySQL, dsn)
//	if err != nil {
//	    return err
//	}
//	stats := sql.NewStatsDriver(drv, sql.WithSlowQueryLog(slog.Default()))
//	rows := &sql.Rows{}
//	if err := stats.Query(ctx, "SELECT TABLE_NAME FROM information_schema.TABLES", []any{}, rows); err != nil {
//	    return err
//	}
//	defer rows.Close()
package sql
