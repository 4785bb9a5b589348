package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/crucial707/postboard/internal/models"
	"github.com/crucial707/postboard/internal/repo"
)

// ==========================
// UserHandler (other users are shown as models.PublicUser)
// ==========================
type UserHandler struct {
	Repo *repo.UserRepo
}

// ==========================
// List Users (optional ?sex=MALE|FEMALE)
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	sex := models.Sex(strings.ToUpper(r.URL.Query().Get("sex")))
	if sex != "" && !sex.Valid() {
		JSONValidationError(w, "validation failed", map[string]string{"sex": "must be one of MALE FEMALE"}, http.StatusBadRequest)
		return
	}

	users, err := h.Repo.List(r.Context(), sex)
	if err != nil {
		internalError(w, r, "list users", err)
		return
	}

	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	writeJSON(w, http.StatusOK, out)
}

// ==========================
// Get User
// ==========================
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		JSONError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.Repo.GetByID(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, r, "get user", err)
		return
	}

	writeJSON(w, http.StatusOK, user.Public())
}
