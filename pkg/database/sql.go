package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	"vocab_quiz_backend/internal/config"
)

// OpenSQL 打开 sqlite 或 postgres 进度库并确保表存在
func OpenSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case config.DriverSQLite:
		drvName = "sqlite"
		if dsn == "" {
			dsn = "file:vocabquiz.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case config.DriverPostgres:
		drvName = "pgx"
		if dsn == "" {
			dsn = "postgres://localhost:5432/vocabquiz?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, progressSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

// sqlite 与 postgres 共用，saved_at 为 unix 毫秒
const progressSchema = `
CREATE TABLE IF NOT EXISTS quiz_progress (
  set_key TEXT PRIMARY KEY,
  payload TEXT NOT NULL,
  saved_at BIGINT NOT NULL
);
`
