package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dan9191/car-service/internal/models"
	"github.com/Dan9191/car-service/internal/repository"
)

const carColumns = `id, user_id, title, description, tags, images, created_at, updated_at`

// CreateCar creates a new car in the database
func (r *Repository) CreateCar(ctx context.Context, car *models.Car) error {
	query := `
		INSERT INTO cars (id, user_id, title, description, tags, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		car.ID, car.UserID, car.Title, car.Description,
		pq.Array(nonNil(car.Tags)), pq.Array(nonNil(car.Images)),
		car.CreatedAt, car.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create car: %w", translate(err))
	}
	return nil
}

// ListCars returns the user's cars, newest first, optionally filtered by a search term
func (r *Repository) ListCars(ctx context.Context, userID, search string) ([]*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE user_id = $1`
	args := []any{userID}
	if search != "" {
		query += `
			AND (LOWER(title) LIKE $2 ESCAPE '\'
				OR LOWER(description) LIKE $2 ESCAPE '\'
				OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE LOWER(tag) LIKE $2 ESCAPE '\'))`
		args = append(args, repository.ContainsPattern(search))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", translate(err))
	}
	defer rows.Close()

	cars := []*models.Car{}
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, car)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	return cars, nil
}

// FindCar retrieves a car by id if it belongs to the user
func (r *Repository) FindCar(ctx context.Context, userID, id string) (*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1 AND user_id = $2`
	car, err := scanCar(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, carError("find", err)
	}
	return car, nil
}

// UpdateCar applies the non-nil fields of update to the user's car in a single statement
func (r *Repository) UpdateCar(ctx context.Context, userID, id string, update models.CarUpdate) (*models.Car, error) {
	query := `
		UPDATE cars
		SET title = COALESCE($3, title),
			description = COALESCE($4, description),
			tags = COALESCE($5, tags),
			images = COALESCE($6, images),
			updated_at = $7
		WHERE id = $1 AND user_id = $2
		RETURNING ` + carColumns
	car, err := scanCar(r.db.QueryRowContext(ctx, query,
		id, userID, update.Title, update.Description,
		pq.Array(update.Tags), pq.Array(update.Images), update.UpdatedAt))
	if err != nil {
		return nil, carError("update", err)
	}
	return car, nil
}

// DeleteCar removes the user's car and returns the deleted row
func (r *Repository) DeleteCar(ctx context.Context, userID, id string) (*models.Car, error) {
	query := `DELETE FROM cars WHERE id = $1 AND user_id = $2 RETURNING ` + carColumns
	car, err := scanCar(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, carError("delete", err)
	}
	return car, nil
}

func carError(op string, err error) error {
	err = translate(err)
	if errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return fmt.Errorf("failed to %s car: %w", op, err)
}

func scanCar(row rowScanner) (*models.Car, error) {
	car := &models.Car{}
	err := row.Scan(&car.ID, &car.UserID, &car.Title, &car.Description,
		pq.Array(&car.Tags), pq.Array(&car.Images), &car.CreatedAt, &car.UpdatedAt)
	if err != nil {
		return nil, err
	}
	car.Tags = nonNil(car.Tags)
	car.Images = nonNil(car.Images)
	return car, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
