package db

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	client_id TEXT UNIQUE,
	title TEXT NOT NULL,
	description TEXT,
	priority TEXT NOT NULL DEFAULT 'medium',
	status TEXT NOT NULL DEFAULT 'pending',
	category TEXT NOT NULL DEFAULT 'general',
	reason TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id BIGSERIAL PRIMARY KEY,
	client_id TEXT UNIQUE,
	title TEXT NOT NULL,
	description TEXT,
	priority TEXT NOT NULL DEFAULT 'medium',
	status TEXT NOT NULL DEFAULT 'pending',
	category TEXT NOT NULL DEFAULT 'general',
	reason TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Connect opens and pings the database. driver is "sqlite" or "postgres".
func Connect(driver, connString string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, connString)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", driver)
	}

	if driver == "sqlite" {
		// a single writer avoids SQLITE_BUSY between concurrent requests
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "sqlite pragma")
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping %s", driver)
	}

	return db, nil
}

// EnsureSchema creates the tasks table if it is absent. Safe to run on every start.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == "postgres" {
		schema = postgresSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "create tasks table")
	}
	return nil
}
