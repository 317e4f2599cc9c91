package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/car-service/internal/apperr"
	"github.com/Dan9191/car-service/internal/auth"
	"github.com/Dan9191/car-service/internal/models"
	"github.com/Dan9191/car-service/internal/notify"
	"github.com/Dan9191/car-service/internal/repository"
)

var (
	errEmailTaken   = apperr.Validation("email already registered")
	errUserNotFound = apperr.NotFound("user not found")
)

// Credentials are the email and password a user signs up or logs in with
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// ProfileUpdate holds the fields a user may change. Nil or empty fields are left unchanged.
type ProfileUpdate struct {
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

// Session is the result of a successful signup or login
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService handles signup, login and token verification
type AuthService struct {
	users    repository.UserRepository
	tokens   *auth.TokenManager
	notifier notify.Notifier
	validate *validator.Validate
	log      *logrus.Logger
}

// NewAuthService initializes a new auth service
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, notifier notify.Notifier, log *logrus.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		validate: validator.New(),
		log:      log,
	}
}

// Signup creates a new user with a hashed password and returns a session for it
func (s *AuthService) Signup(ctx context.Context, creds Credentials) (*Session, error) {
	creds.Email = normalizeEmail(creds.Email)
	if err := s.validate.Struct(creds); err != nil {
		return nil, validationError(err)
	}

	if _, err := s.users.FindUserByEmail(ctx, creds.Email); err == nil {
		return nil, errEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Server(err)
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		return nil, apperr.Server(err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        creds.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errEmailTaken
		}
		return nil, apperr.Server(err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, apperr.Server(err)
	}

	s.log.Infof("User registered: %s", user.Email)
	if err := s.notifier.Welcome(user.Email); err != nil {
		s.log.WithError(err).Warnf("Welcome email not delivered to %s", user.Email)
	}
	return &Session{User: user, Token: token}, nil
}

// Login authenticates a user and returns a fresh session
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*Session, error) {
	user, err := s.users.FindUserByEmail(ctx, normalizeEmail(creds.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, apperr.Server(err)
	}

	if !auth.CheckPassword(user.PasswordHash, creds.Password) {
		return nil, apperr.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, apperr.Server(err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return &Session{User: user, Token: token}, nil
}

// Authenticate validates a bearer token and returns the id of the user it belongs to
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	userID, err := s.tokens.Validate(token)
	if err != nil {
		return "", apperr.Unauthorized(err)
	}

	if _, err := s.users.FindUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.Unauthorized(errors.New("token user no longer exists"))
		}
		return "", apperr.Server(err)
	}
	return userID, nil
}

// Profile returns the user's public fields
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errUserNotFound
		}
		return nil, apperr.Server(err)
	}
	return user, nil
}

// UpdateProfile changes the user's email and/or password
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*models.User, error) {
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	in.Email = nilIfEmpty(in.Email)
	in.Password = nilIfEmpty(in.Password)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	update := models.UserUpdate{Email: in.Email, UpdatedAt: time.Now().UTC()}
	var changed []string
	if in.Email != nil {
		existing, err := s.users.FindUserByEmail(ctx, *in.Email)
		switch {
		case err == nil && existing.ID != userID:
			return nil, errEmailTaken
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, apperr.Server(err)
		}
		changed = append(changed, "email")
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, apperr.Server(err)
		}
		update.PasswordHash = &hash
		changed = append(changed, "password")
	}

	if len(changed) == 0 {
		return s.Profile(ctx, userID)
	}

	user, err := s.users.UpdateUser(ctx, userID, update)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, errUserNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, errEmailTaken
		}
		return nil, apperr.Server(err)
	}

	s.log.Infof("Profile updated for user %s: %s", user.ID, strings.Join(changed, ", "))
	if err := s.notifier.ProfileChanged(user.Email, changed); err != nil {
		s.log.WithError(err).Warnf("Profile change email not delivered to %s", user.Email)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nilIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
