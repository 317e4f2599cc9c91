package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Dan9191/car-service/internal/apperr"
	"github.com/Dan9191/car-service/internal/auth"
)

type contextKey string

const userIDKey contextKey = "userID"

// Authenticator resolves a bearer token to a user id
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// ErrorFunc writes err as the response
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// AuthMiddleware rejects requests without a valid bearer token and stores the caller's id in the request context
func AuthMiddleware(authn Authenticator, fail ErrorFunc) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				fail(w, r, apperr.Unauthorized(auth.ErrMissingToken))
				return
			}

			userID, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				fail(w, r, err)
				return
			}

			if rec, ok := w.(*statusRecorder); ok {
				rec.userID = userID
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying the authenticated user id
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id, if any
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
