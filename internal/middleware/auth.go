package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/postboard/internal/auth"
	"github.com/crucial707/postboard/internal/metrics"
	"github.com/crucial707/postboard/internal/models"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type key string

const userKey key = "user"

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Authenticate requires a valid bearer token whose user still exists and puts
// that user in the request context. 401 (with a Bearer challenge) for a missing,
// invalid or expired token; 404 when the token's user is gone.
func Authenticate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				metrics.AuthFailure("token")
				unauthorized(w)
				return
			}

			user, err := a.CurrentUser(r.Context(), token)
			switch {
			case errors.Is(err, auth.ErrUnauthorized):
				metrics.AuthFailure("token")
				unauthorized(w)
				return
			case errors.Is(err, auth.ErrUserNotFound):
				metrics.AuthFailure("user")
				writeJSONError(w, "user not found", http.StatusNotFound)
				return
			case err != nil:
				slog.Error("resolve current user", "request_id", chimw.GetReqID(r.Context()), "error", err)
				writeJSONError(w, "internal server error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// WithUser returns a copy of ctx carrying user, as Authenticate does.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUserID returns the authenticated user's id.
func GetUserID(ctx context.Context) (int, bool) {
	u, ok := CurrentUser(ctx)
	if !ok {
		return 0, false
	}
	return u.ID, true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSONError(w, auth.ErrUnauthorized.Error(), http.StatusUnauthorized)
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
