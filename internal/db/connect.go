package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:examinfo.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/examinfo?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if driver == DriverSQLite {
		// a single writer avoids SQLITE_BUSY under the sync fan-out
		db.SetMaxOpenConns(1)
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db schema: %w", err)
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS admissions (
  id TEXT PRIMARY KEY,
  university_id TEXT NOT NULL,
  university_name TEXT NOT NULL,
  prefecture TEXT NOT NULL DEFAULT '',
  university_type TEXT NOT NULL DEFAULT '',
  department_id TEXT NOT NULL DEFAULT '',
  department_name TEXT NOT NULL DEFAULT '',
  major_id TEXT NOT NULL DEFAULT '',
  major_name TEXT NOT NULL DEFAULT '',
  schedule_id TEXT NOT NULL DEFAULT '',
  schedule_name TEXT NOT NULL DEFAULT '',
  subjects_json TEXT NOT NULL,
  total REAL NOT NULL DEFAULT 0,
  updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_admissions_university ON admissions(university_id);

CREATE TABLE IF NOT EXISTS event_log (
  "offset" INTEGER PRIMARY KEY AUTOINCREMENT,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,                         -- e.g., AdmissionImported
  key TEXT NOT NULL,                         -- natural key: admission id or run id
  data TEXT NOT NULL,                        -- JSON payload
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS admissions (
  id TEXT PRIMARY KEY,
  university_id TEXT NOT NULL,
  university_name TEXT NOT NULL,
  prefecture TEXT NOT NULL DEFAULT '',
  university_type TEXT NOT NULL DEFAULT '',
  department_id TEXT NOT NULL DEFAULT '',
  department_name TEXT NOT NULL DEFAULT '',
  major_id TEXT NOT NULL DEFAULT '',
  major_name TEXT NOT NULL DEFAULT '',
  schedule_id TEXT NOT NULL DEFAULT '',
  schedule_name TEXT NOT NULL DEFAULT '',
  subjects_json TEXT NOT NULL,
  total DOUBLE PRECISION NOT NULL DEFAULT 0,
  updated_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_admissions_university ON admissions(university_id);

CREATE TABLE IF NOT EXISTS event_log (
  "offset" BIGSERIAL PRIMARY KEY,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
