package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dan9191/car-service/internal/models"
	"github.com/Dan9191/car-service/internal/repository"
)

const carColumns = `id, user_id, title, description, tags, images, created_at, updated_at`

// CreateCar inserts a new car into the database
func (r *Repository) CreateCar(ctx context.Context, car *models.Car) error {
	tags, err := encodeList(car.Tags)
	if err != nil {
		return err
	}
	images, err := encodeList(car.Images)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cars (id, user_id, title, description, tags, images, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		car.ID, car.UserID, car.Title, car.Description, tags, images,
		toUnix(car.CreatedAt), toUnix(car.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to create car: %w", translate(err))
	}
	return nil
}

// ListCars returns the user's cars, newest first, optionally filtered by a search term
func (r *Repository) ListCars(ctx context.Context, userID, search string) ([]*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE user_id = ?`
	args := []any{userID}
	if search != "" {
		pattern := repository.ContainsPattern(search)
		query += `
			AND (` + lowerFunc + `(title) LIKE ? ESCAPE '\'
				OR ` + lowerFunc + `(description) LIKE ? ESCAPE '\'
				OR EXISTS (SELECT 1 FROM json_each(cars.tags) WHERE ` + lowerFunc + `(json_each.value) LIKE ? ESCAPE '\'))`
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
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
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = ? AND user_id = ?`
	car, err := scanCar(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, carError("find", err)
	}
	return car, nil
}

// UpdateCar applies the non-nil fields of update to the user's car in a single statement
func (r *Repository) UpdateCar(ctx context.Context, userID, id string, update models.CarUpdate) (*models.Car, error) {
	tags, err := encodeOptionalList(update.Tags)
	if err != nil {
		return nil, err
	}
	images, err := encodeOptionalList(update.Images)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE cars
		SET title = COALESCE(?, title),
			description = COALESCE(?, description),
			tags = COALESCE(?, tags),
			images = COALESCE(?, images),
			updated_at = ?
		WHERE id = ? AND user_id = ?
		RETURNING ` + carColumns
	car, err := scanCar(r.db.QueryRowContext(ctx, query,
		update.Title, update.Description, tags, images, toUnix(update.UpdatedAt), id, userID))
	if err != nil {
		return nil, carError("update", err)
	}
	return car, nil
}

// DeleteCar removes the user's car and returns the deleted row
func (r *Repository) DeleteCar(ctx context.Context, userID, id string) (*models.Car, error) {
	query := `DELETE FROM cars WHERE id = ? AND user_id = ? RETURNING ` + carColumns
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
	var tags, images string
	var createdAt, updatedAt int64
	car := &models.Car{}
	err := row.Scan(&car.ID, &car.UserID, &car.Title, &car.Description, &tags, &images, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &car.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if err := json.Unmarshal([]byte(images), &car.Images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}
	if car.Tags == nil {
		car.Tags = []string{}
	}
	if car.Images == nil {
		car.Images = []string{}
	}
	car.CreatedAt = fromUnix(createdAt)
	car.UpdatedAt = fromUnix(updatedAt)
	return car, nil
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}

// encodeOptionalList keeps nil as NULL so COALESCE leaves the column untouched
func encodeOptionalList(values []string) (*string, error) {
	if values == nil {
		return nil, nil
	}
	encoded, err := encodeList(values)
	if err != nil {
		return nil, err
	}
	return &encoded, nil
}
