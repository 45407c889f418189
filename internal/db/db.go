package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

type DB struct {
	Conn *sqlx.DB
}

func New(driver, dsn string) (*DB, error) {
	dbConn, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db.New: cannot connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// один писатель; для :memory: это ещё и одна общая база
		dbConn.SetMaxOpenConns(1)
	} else {
		dbConn.SetMaxOpenConns(20)
		dbConn.SetMaxIdleConns(5)
		dbConn.SetConnMaxLifetime(60 * time.Minute)
	}

	return &DB{Conn: dbConn}, nil
}

const schema = `
    CREATE TABLE IF NOT EXISTS users (
        user_id       BIGINT PRIMARY KEY,
        registered_at TIMESTAMP NOT NULL
    )
`

func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("db.Migrate: %w", err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.Conn.Close()
}
