package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dan9191/car-service/internal/models"
	"github.com/Dan9191/car-service/internal/repository"
)

const userColumns = `id, email, password_hash, created_at, updated_at`

// CreateUser inserts a new user into the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, toUnix(user.CreatedAt), toUnix(user.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.findUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// UpdateUser applies the non-nil fields of update and returns the stored user
func (r *Repository) UpdateUser(ctx context.Context, id string, update models.UserUpdate) (*models.User, error) {
	query := `
		UPDATE users
		SET email = COALESCE(?, email),
			password_hash = COALESCE(?, password_hash),
			updated_at = ?
		WHERE id = ?
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query,
		update.Email, update.PasswordHash, toUnix(update.UpdatedAt), id))
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", translate(err))
	}
	return user, nil
}

func (r *Repository) findUser(ctx context.Context, query, arg string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		err = translate(err)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var createdAt, updatedAt int64
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	user.CreatedAt = fromUnix(createdAt)
	user.UpdatedAt = fromUnix(updatedAt)
	return user, nil
}
