package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Dan9191/car-service/internal/models"
	"github.com/Dan9191/car-service/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, creds service.Credentials) (*service.Session, error) {
	args := m.Called(ctx, creds)
	session, _ := args.Get(0).(*service.Session)
	return session, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, creds service.Credentials) (*service.Session, error) {
	args := m.Called(ctx, creds)
	session, _ := args.Get(0).(*service.Session)
	return session, args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID string, update service.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, userID, update)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type MockCarService struct {
	mock.Mock
}

func (m *MockCarService) Create(ctx context.Context, userID string, in service.CarInput) (*models.Car, error) {
	args := m.Called(ctx, userID, in)
	car, _ := args.Get(0).(*models.Car)
	return car, args.Error(1)
}

func (m *MockCarService) List(ctx context.Context, userID, search string) ([]*models.Car, error) {
	args := m.Called(ctx, userID, search)
	cars, _ := args.Get(0).([]*models.Car)
	return cars, args.Error(1)
}

func (m *MockCarService) Get(ctx context.Context, userID, id string) (*models.Car, error) {
	args := m.Called(ctx, userID, id)
	car, _ := args.Get(0).(*models.Car)
	return car, args.Error(1)
}

func (m *MockCarService) Update(ctx context.Context, userID, id string, in service.CarInput) (*models.Car, error) {
	args := m.Called(ctx, userID, id, in)
	car, _ := args.Get(0).(*models.Car)
	return car, args.Error(1)
}

func (m *MockCarService) Delete(ctx context.Context, userID, id string) (*models.Car, error) {
	args := m.Called(ctx, userID, id)
	car, _ := args.Get(0).(*models.Car)
	return car, args.Error(1)
}

func (m *MockCarService) ImageURLs(refs []string) []string {
	urls := make([]string, len(refs))
	for i, ref := range refs {
		urls[i] = "http://cdn.test/" + ref
	}
	return urls
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
