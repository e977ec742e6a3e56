package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/accounts-api/internal/service"
)

// UserHandler serves the account-collection endpoints: list-all and the
// graduation toggle. Both sit behind RequireAuth.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleList returns every registered account.
//
// HTTP: GET /auth/allUsers
// Auth: required
//
// Password hashes cannot appear here (or anywhere): the hash field is
// excluded from JSON at the model level.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.logger.Error("listing users", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"users": users}, "All users")
}

// HandleToggleGraduate flips the isGraduate flag on the addressed account.
//
// HTTP: PATCH /auth/patch/{id}  (also mounted at /auth/patchToggle/{id})
// Auth: required
//
// 200 with the updated record; 404 if the id doesn't exist.
func (h *UserHandler) HandleToggleGraduate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeErrorEnvelope(w, http.StatusBadRequest, "user id is required")
		return
	}

	user, err := h.users.ToggleGraduate(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"user": user}, "User updated")
}
