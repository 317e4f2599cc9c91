package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/car-service/internal/apperr"
	"github.com/Dan9191/car-service/internal/middleware"
	"github.com/Dan9191/car-service/internal/models"
	"github.com/Dan9191/car-service/internal/service"
)

// AuthService is the account logic the handlers depend on
type AuthService interface {
	Signup(ctx context.Context, creds service.Credentials) (*service.Session, error)
	Login(ctx context.Context, creds service.Credentials) (*service.Session, error)
	Authenticate(ctx context.Context, token string) (string, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, update service.ProfileUpdate) (*models.User, error)
}

// CarService is the listing logic the handlers depend on
type CarService interface {
	Create(ctx context.Context, userID string, in service.CarInput) (*models.Car, error)
	List(ctx context.Context, userID, search string) ([]*models.Car, error)
	Get(ctx context.Context, userID, id string) (*models.Car, error)
	Update(ctx context.Context, userID, id string, in service.CarInput) (*models.Car, error)
	Delete(ctx context.Context, userID, id string) (*models.Car, error)
	ImageURLs(refs []string) []string
}

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	auth AuthService
	cars CarService
	db   Pinger
	log  *logrus.Logger
}

func NewHandler(auth AuthService, cars CarService, db Pinger, log *logrus.Logger) *Handler {
	return &Handler{auth: auth, cars: cars, db: db, log: log}
}

// Health reports liveness, including database reachability
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.log.WithError(err).Error("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

// WriteError maps err to a status code and writes it as {"error": message}
func (h *Handler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
	}
	writeJSON(w, status, errorResponse{Error: apperr.Message(err)})
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuth:
		if errors.Is(err, apperr.ErrInvalidCredentials) {
			return http.StatusBadRequest
		}
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Validation("invalid JSON body")
	}
	return nil
}

// currentUser returns the id set by the auth middleware
func currentUser(r *http.Request) (string, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return "", apperr.ErrUnauthorized
	}
	return userID, nil
}
