// Package postgres implements repository.Repository on PostgreSQL through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/Dan9191/car-service/internal/repository"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	uniqueViolation     pq.ErrorCode = "23505"
	invalidTextFormat   pq.ErrorCode = "22P02"
	foreignKeyViolation pq.ErrorCode = "23503"
)

var _ repository.Repository = (*Repository)(nil)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository over an open connection pool
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Open connects to PostgreSQL and verifies the connection
func Open(ctx context.Context, dsn string) (*Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewRepository(db), nil
}

// Migrate applies the embedded schema migrations
func (r *Repository) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, r.db, fsys)
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

// Close closes the connection pool
func (r *Repository) Close() error {
	return r.db.Close()
}

// translate maps driver errors onto repository sentinels
func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, pqErr.Constraint)
		case invalidTextFormat, foreignKeyViolation:
			return repository.ErrNotFound
		}
	}
	return err
}
