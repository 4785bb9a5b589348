package auth

import (
	"context"
	"errors"

	"github.com/crucial707/postboard/internal/models"
	"github.com/crucial707/postboard/internal/repo"
	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrUnauthorized means no usable token was presented.
	ErrUnauthorized = errors.New("could not validate credentials")
	// ErrUserNotFound means the token is sound but its user no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// UserFinder is the part of the user store the resolver needs.
// GetByID must return repo.ErrNotFound for a missing user.
type UserFinder interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// Resolver turns a bearer token into the user it was issued for.
type Resolver struct {
	Tokens *TokenService
	Users  UserFinder
}

func NewResolver(tokens *TokenService, users UserFinder) *Resolver {
	return &Resolver{Tokens: tokens, Users: users}
}

// CurrentUser validates the token before touching the store, so a holder of a
// bad token learns nothing about which users exist.
func (r *Resolver) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	userID, err := r.Tokens.Validate(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := r.Users.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "resolve current user")
	}
	return user, nil
}
