// Package sqlite implements repository.Repository on an embedded SQLite file.
// Tags and image references are stored as JSON arrays, timestamps as Unix nanoseconds.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	sqlitedriver "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/Dan9191/car-service/internal/repository"
)

//go:embed migrations/*.sql
var migrations embed.FS

var _ repository.Repository = (*Repository)(nil)

// lowerFunc is a Unicode-aware replacement for LOWER(), which folds ASCII only
const lowerFunc = "unicode_lower"

func init() {
	if err := sqlitedriver.RegisterDeterministicScalarFunction(lowerFunc, 1, unicodeLower); err != nil {
		panic(fmt.Sprintf("register %s: %v", lowerFunc, err))
	}
}

func unicodeLower(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// Open creates the database file if needed, enables foreign keys and applies migrations
func Open(ctx context.Context, dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	r := &Repository{db: db}
	if err := r.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Migrate applies the embedded schema migrations
func (r *Repository) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, r.db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed"):
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, msg)
		case strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return repository.ErrNotFound
		}
	}
	return err
}

func toUnix(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
