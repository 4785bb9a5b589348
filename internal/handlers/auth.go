package handlers

import (
	"errors"
	"mime"
	"net/http"

	"github.com/crucial707/postboard/internal/auth"
	"github.com/crucial707/postboard/internal/metrics"
	"github.com/crucial707/postboard/internal/models"
	"github.com/crucial707/postboard/internal/repo"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	UserRepo *repo.UserRepo
	Tokens   *auth.TokenService
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user,omitempty"`
}

// ==========================
// Signup (password stored as bcrypt hash, returns a token for the new user)
// ==========================
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username" validate:"required,max=255"`
		Email    string `json:"email" validate:"required,email,max=255"`
		Sex      string `json:"sex" validate:"required,oneof=MALE FEMALE"`
		// bcrypt reads at most 72 bytes of the password.
		Password string `json:"password" validate:"required,maxbytes=72"`
	}

	if !decodeJSON(w, r, &input) {
		return
	}
	if !validateStruct(w, input) {
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		internalError(w, r, "signup: hash password", err)
		return
	}

	user, err := h.UserRepo.Create(r.Context(), input.Username, input.Email, models.Sex(input.Sex), hash)
	if errors.Is(err, repo.ErrConflict) {
		JSONError(w, "user with provided username or email already exists", http.StatusBadRequest)
		return
	}
	if err != nil {
		internalError(w, r, "signup: create user", err)
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		internalError(w, r, "signup: issue token", err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{AccessToken: token, TokenType: "bearer", User: user})
}

// ==========================
// Login (JSON body, or an OAuth2 password-grant form)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			JSONError(w, "invalid form", http.StatusBadRequest)
			return
		}
		input.Username = r.PostForm.Get("username")
		input.Password = r.PostForm.Get("password")
	} else if !decodeJSON(w, r, &input) {
		return
	}
	if !validateStruct(w, input) {
		return
	}

	user, err := h.UserRepo.GetByUsername(r.Context(), input.Username)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		internalError(w, r, "login: get user", err)
		return
	}
	// Unknown user and wrong password are indistinguishable to the caller.
	if user == nil || !auth.VerifyPassword(input.Password, user.Password) {
		metrics.AuthFailure("credentials")
		w.Header().Set("WWW-Authenticate", "Bearer")
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		internalError(w, r, "login: issue token", err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func isForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/x-www-form-urlencoded"
}
