package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
)

//go:embed migrations
var migrations embed.FS

const (
	sqlitePrefix = "sqlite://"
	sqliteDriver = "sqlite3_unicode"
)

func init() {
	// SQLite's built-in lower() folds ASCII only; names are matched with Go's Unicode folding.
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

type DB struct {
	*sql.DB
	dialect string
}

// New opens a postgres URL, or an sqlite database when the URL starts with sqlite://
func New(databaseURL string) (*DB, error) {
	driver, dsn, dialect := "postgres", databaseURL, "postgres"
	if strings.HasPrefix(databaseURL, sqlitePrefix) {
		driver, dsn, dialect = sqliteDriver, strings.TrimPrefix(databaseURL, sqlitePrefix), "sqlite3"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == "sqlite3" {
		// A single connection keeps :memory: databases shared across queries
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backoff := retry.WithMaxRetries(5, retry.NewExponential(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close() // Ignore close error, we're already returning ping error
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, dialect: dialect}, nil
}

// Dialect returns the goose dialect name, postgres or sqlite3
func (db *DB) Dialect() string {
	return db.dialect
}

func (db *DB) Migrate() error {
	if err := goose.SetDialect(db.dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	dir := "migrations/postgres"
	if db.dialect == "sqlite3" {
		dir = "migrations/sqlite"
	}

	if err := goose.Up(db.DB, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
