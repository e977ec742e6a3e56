// Package handler contains the HTTP handlers. Handlers decode requests, call
// a service, and encode the envelope — no business rules live here.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/accounts-api/internal/apperror"
	"github.com/sakif/accounts-api/internal/auth"
	"github.com/sakif/accounts-api/internal/service"
)

// AuthHandler serves the register and login endpoints plus the authenticated
// "who am I" lookup.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected; the
// handler has no knowledge of how they're constructed.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// registrationData is the register response payload: a deliberate subset of
// the account (never the full record) plus the session token.
type registrationData struct {
	User  registeredUser `json:"user"`
	Token string         `json:"token"`
}

type registeredUser struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /auth/register
// BODY: {"fullName":..., "email":..., "password":..., "city":..., "country":..., "isGraduate":...}
//
// 201 with {user:{fullName,email}, token} on success; 400 on validation
// failure or duplicate email. Validation happens inside the service BEFORE any
// store access.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Warn("invalid register JSON", slog.String("error", err.Error()))
		writeErrorEnvelope(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, registrationData{
		User:  registeredUser{FullName: result.User.FullName, Email: result.User.Email},
		Token: result.Token,
	}, "User successfully registered")
}

// sessionData is the login response payload. The full user record is safe to
// embed — the password hash is excluded from serialization at the model level.
type sessionData struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

// HandleLogin authenticates an existing account.
//
// HTTP: POST /auth/login
// BODY: {"email":..., "password":...}
//
// 200 with {user, token} on success; 401 with the same generic message for an
// unknown email and a wrong password.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Warn("invalid login JSON", slog.String("error", err.Error()))
		writeErrorEnvelope(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.auth.Login(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, sessionData{
		User:  result.User,
		Token: result.Token,
	}, "User logged in")
}

// HandleMe returns the authenticated user's own record.
//
// HTTP: GET /auth/me
// Auth: required — RequireAuth has already verified the token and attached
// the loaded user to the context, so this is a pure context read.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		// Unreachable on a RequireAuth-protected route, but be safe.
		writeError(w, apperror.TokenMissing())
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"user": user}, "User's token found")
}
