package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/car-service/internal/apperr"
	"github.com/Dan9191/car-service/internal/models"
	"github.com/Dan9191/car-service/internal/repository"
)

var errCarNotFound = apperr.NotFound("car not found")

// AssetStore keeps the image files referenced by cars
type AssetStore interface {
	Store(ctx context.Context, files []*multipart.FileHeader) ([]string, error)
	ResolveURLs(refs []string) []string
	Discard(ctx context.Context, refs []string)
}

// CarInput carries the fields of a create or update request.
// Nil text fields were not supplied by the caller.
type CarInput struct {
	Title       *string
	Description *string
	Tags        *string // Comma-separated
	Images      []*multipart.FileHeader
}

// CarService manages car listings and their images
type CarService struct {
	cars   repository.CarRepository
	assets AssetStore
	log    *logrus.Logger
	now    func() time.Time
}

// NewCarService initializes a new car service
func NewCarService(cars repository.CarRepository, assets AssetStore, log *logrus.Logger) *CarService {
	return &CarService{
		cars:   cars,
		assets: assets,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ImageURLs maps stored image references to public URLs
func (s *CarService) ImageURLs(refs []string) []string {
	return s.assets.ResolveURLs(refs)
}

// Create stores the uploaded images and inserts a new car owned by userID
func (s *CarService) Create(ctx context.Context, userID string, in CarInput) (*models.Car, error) {
	title, err := requiredText("title", in.Title)
	if err != nil {
		return nil, err
	}
	description, err := requiredText("description", in.Description)
	if err != nil {
		return nil, err
	}

	refs, err := s.assets.Store(ctx, in.Images)
	if err != nil {
		return nil, err
	}

	now := s.now()
	car := &models.Car{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Tags:        models.ParseTags(deref(in.Tags)),
		Images:      refs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.cars.CreateCar(ctx, car); err != nil {
		s.assets.Discard(ctx, refs)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized(fmt.Errorf("owner %s no longer exists: %w", userID, err))
		}
		return nil, apperr.Server(err)
	}

	s.log.Infof("Car %s created for user %s with %d images", car.ID, userID, len(refs))
	return car, nil
}

// List returns the user's cars, newest first, optionally filtered by a search term
func (s *CarService) List(ctx context.Context, userID, search string) ([]*models.Car, error) {
	cars, err := s.cars.ListCars(ctx, userID, strings.TrimSpace(search))
	if err != nil {
		return nil, apperr.Server(err)
	}
	return cars, nil
}

// Get returns a single car owned by userID
func (s *CarService) Get(ctx context.Context, userID, id string) (*models.Car, error) {
	if !validID(id) {
		return nil, errCarNotFound
	}

	car, err := s.cars.FindCar(ctx, userID, id)
	if err != nil {
		return nil, carError(err)
	}
	return car, nil
}

// Update changes the supplied fields of a car. New images replace all old ones,
// which are removed only after the car row points at the new set.
func (s *CarService) Update(ctx context.Context, userID, id string, in CarInput) (*models.Car, error) {
	if !validID(id) {
		return nil, errCarNotFound
	}

	update := models.CarUpdate{UpdatedAt: s.now()}
	if in.Title != nil {
		title, err := requiredText("title", in.Title)
		if err != nil {
			return nil, err
		}
		update.Title = &title
	}
	if in.Description != nil {
		description, err := requiredText("description", in.Description)
		if err != nil {
			return nil, err
		}
		update.Description = &description
	}
	if in.Tags != nil {
		update.Tags = models.ParseTags(*in.Tags)
	}

	existing, err := s.cars.FindCar(ctx, userID, id)
	if err != nil {
		return nil, carError(err)
	}

	if len(in.Images) > 0 {
		refs, err := s.assets.Store(ctx, in.Images)
		if err != nil {
			return nil, err
		}
		update.Images = refs
	}

	car, err := s.cars.UpdateCar(ctx, userID, id, update)
	if err != nil {
		s.assets.Discard(ctx, update.Images)
		return nil, carError(err)
	}

	if update.Images != nil {
		s.assets.Discard(ctx, existing.Images)
	}

	s.log.Infof("Car %s updated by user %s", car.ID, userID)
	return car, nil
}

// Delete removes a car owned by userID and then its images
func (s *CarService) Delete(ctx context.Context, userID, id string) (*models.Car, error) {
	if !validID(id) {
		return nil, errCarNotFound
	}

	car, err := s.cars.DeleteCar(ctx, userID, id)
	if err != nil {
		return nil, carError(err)
	}

	s.assets.Discard(ctx, car.Images)
	s.log.Infof("Car %s deleted by user %s", car.ID, userID)
	return car, nil
}

func carError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errCarNotFound
	}
	return apperr.Server(err)
}

func requiredText(field string, value *string) (string, error) {
	text := strings.TrimSpace(deref(value))
	if text == "" {
		return "", apperr.Validation("%s is required", field)
	}
	return text, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
