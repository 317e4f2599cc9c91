// Package repository defines persistence contracts for users and cars.
// Implementations live in the postgres and sqlite subpackages.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Dan9191/car-service/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// UserRepository persists users
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, update models.UserUpdate) (*models.User, error)
}

// CarRepository persists cars. Every lookup and mutation is scoped by the owner id.
type CarRepository interface {
	CreateCar(ctx context.Context, car *models.Car) error
	ListCars(ctx context.Context, userID, search string) ([]*models.Car, error)
	FindCar(ctx context.Context, userID, id string) (*models.Car, error)
	UpdateCar(ctx context.Context, userID, id string, update models.CarUpdate) (*models.Car, error)
	DeleteCar(ctx context.Context, userID, id string) (*models.Car, error)
}

// Repository is the full store used by the services
type Repository interface {
	UserRepository
	CarRepository
	Ping(ctx context.Context) error
	Close() error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds a lower-cased LIKE pattern matching term as a literal substring.
// Queries using it must declare ESCAPE '\'.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
