package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/crucial707/postboard/internal/middleware"
	"github.com/crucial707/postboard/internal/posts"
)

// PostHandler serves the authenticated user's own posts. Every route expects
// middleware.Authenticate to have run.
type PostHandler struct {
	Guard *posts.Guard
}

// ListPosts returns the caller's posts from the cache, or straight from the
// datastore when asked with ?fresh=true or Cache-Control: no-cache.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	list := h.Guard.ListOwn
	if wantsFresh(r) {
		list = h.Guard.Get
	}
	items, err := list(r.Context(), userID)
	if err != nil {
		internalError(w, r, "list posts", err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// CreatePost stores a post owned by the caller and returns its id.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	// Text may be empty but must be present.
	var input struct {
		Text *string `json:"text" validate:"required"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if !validateStruct(w, input) {
		return
	}

	id, err := h.Guard.Create(r.Context(), *input.Text, userID)
	switch {
	case errors.Is(err, posts.ErrTextTooLong):
		JSONValidationError(w, "validation failed", map[string]string{
			"text": "must be at most " + strconv.Itoa(h.Guard.MaxTextLength()) + " characters",
		}, http.StatusBadRequest)
		return
	case err != nil:
		internalError(w, r, "create post", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int{"id": id})
}

// DeletePost removes one of the caller's posts. Another user's post is
// reported as not found.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	postID, ok := pathID(r)
	if !ok {
		JSONError(w, "invalid post id", http.StatusBadRequest)
		return
	}

	err := h.Guard.Delete(r.Context(), postID, userID)
	if errors.Is(err, posts.ErrPostNotFound) {
		JSONError(w, "post not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, r, "delete post", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func wantsFresh(r *http.Request) bool {
	if v, err := strconv.ParseBool(r.URL.Query().Get("fresh")); err == nil && v {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Cache-Control")), "no-cache")
}
