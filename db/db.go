package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq" // Import postgres driver
	_ "modernc.org/sqlite"
)

// DB: пул соединений вместе с диалектом, под который переписываются запросы.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Connect opens a pool for the given driver ("postgres" or "sqlite") and pings it.
func Connect(driver, dsn string, timeout time.Duration) (*DB, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database dsn is required")
	}

	sqlDB, err := sql.Open(dialect.DriverName(), dialect.normalizeDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	// Configure connection pool
	switch dialect {
	case Postgres:
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	case SQLite:
		// SQLite допускает одного писателя; одно соединение сериализует транзакции.
		sqlDB.SetMaxOpenConns(1)
	}

	// Verify the connection with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = sqlDB.PingContext(ctx); err != nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			slog.Error("failed to close database handle after ping error", slog.Any("error", closeErr))
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return &DB{DB: sqlDB, Dialect: dialect}, nil
}

// Rebind rewrites a query written with '?' placeholders for the pool's dialect.
func (d *DB) Rebind(query string) string {
	return d.Dialect.Rebind(query)
}
