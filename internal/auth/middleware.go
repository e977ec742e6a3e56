package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/accounts-api/internal/apperror"
	"github.com/sakif/accounts-api/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue takes any as the key. With a plain string key, any package
// that knows the string could read or shadow the value. A package-private type
// means only this package can create the key, so only this package can read
// or write the authenticated user in the context.
type contextKey string

const userKey contextKey = "user"

// UserLoader is the subset of the auth service the middleware needs: resolve
// the token's subject id to a live account. Declared here (consumer side) so
// the middleware doesn't import the service package.
type UserLoader interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// RequireAuth enforces authentication on protected routes.
//
// DECISION CHAIN (each step either rejects and stops, or moves on):
//
//	no Authorization header        → 401 "token not provided"
//	header without a bearer part   → 400 "invalid token format"
//	token fails verification       → 401 "invalid or expired token"
//	subject id not in store        → 401 (a valid signature for a deleted
//	                                  account is still not an identity)
//	otherwise                      → attach user to context, continue
//
// The subject-lookup miss is deliberately NOT a 404: answering "that user
// doesn't exist" to an unauthenticated caller leaks account state.
//
// The token is read from "Authorization: Bearer <token>" first, falling back
// to the "token" HttpOnly cookie set by the OAuth callback so browser
// sessions work without custom headers.
func RequireAuth(tokens *TokenService, users UserLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, appErr := extractToken(r)
			if appErr != nil {
				writeReject(w, appErr)
				return
			}

			claims, err := tokens.Verify(tokenStr)
			if err != nil {
				// Log the kind (expired vs forged vs garbage) for operators;
				// the client gets one collapsed message.
				logger.Info("rejected token",
					slog.String("path", r.URL.Path),
					slog.String("reason", err.Error()),
				)
				writeReject(w, apperror.TokenInvalid())
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					logger.Info("token subject no longer exists",
						slog.String("userID", claims.Subject),
					)
					writeReject(w, apperror.TokenInvalid())
					return
				}
				logger.Error("loading token subject",
					slog.String("userID", claims.Subject),
					slog.String("error", err.Error()),
				)
				writeReject(w, apperror.Unavailable())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a context carrying user as the authenticated identity.
// RequireAuth uses it internally; handler tests use it to simulate a request
// that already passed the middleware.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser retrieves the authenticated user from the request context.
// Returns (nil, false) on routes not behind RequireAuth.
func CurrentUser(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// extractToken pulls the bearer token out of the request.
// Returns a typed rejection when the header is absent or not bearer-shaped.
func extractToken(r *http.Request) (string, *apperror.AppError) {
	header := r.Header.Get("Authorization")
	if header == "" {
		// No header at all — maybe a browser session carrying the cookie.
		if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
			return cookie.Value, nil
		}
		return "", apperror.TokenMissing()
	}

	// "Bearer <token>" — scheme check is case-insensitive per RFC 6750.
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperror.TokenMalformed()
	}

	return strings.TrimSpace(parts[1]), nil
}

// writeReject emits the standard envelope for a middleware rejection.
// Mirrors handler.writeError's mapping for the token sentinels; duplicated
// here (rather than imported) to keep the auth → handler dependency arrow
// pointing one way.
func writeReject(w http.ResponseWriter, appErr *apperror.AppError) {
	status := http.StatusUnauthorized
	switch {
	case errors.Is(appErr, apperror.ErrTokenMalformed):
		status = http.StatusBadRequest
	case errors.Is(appErr, apperror.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   true,
		"data":    nil,
		"message": appErr.Message,
	})
}
