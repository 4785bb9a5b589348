// Package posts enforces post ownership and serves the cached "my posts" list.
package posts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/crucial707/postboard/internal/cache"
	"github.com/crucial707/postboard/internal/metrics"
	"github.com/crucial707/postboard/internal/models"
	"github.com/crucial707/postboard/internal/repo"
)

var (
	// ErrPostNotFound covers both a missing post and a post owned by someone else.
	ErrPostNotFound = errors.New("post not found")
	// ErrTextTooLong is returned when text exceeds the configured maximum.
	ErrTextTooLong = errors.New("text too long")
)

// Store is the post persistence the guard relies on.
type Store interface {
	ListByOwner(ctx context.Context, ownerID int) ([]models.Post, error)
	Create(ctx context.Context, text string, ownerID int) (int, error)
	DeleteOwned(ctx context.Context, postID, ownerID int) error
}

// Guard exposes post operations for an already resolved owner.
//
// Create and Delete do not touch the list cache, so ListOwn can lag behind
// them by up to one cache TTL. Get always reads the datastore.
type Guard struct {
	store         Store
	cache         *cache.ReadThrough[[]models.Post]
	maxTextLength int
}

func NewGuard(store Store, listCache *cache.ReadThrough[[]models.Post], maxTextLength int) *Guard {
	return &Guard{store: store, cache: listCache, maxTextLength: maxTextLength}
}

// MaxTextLength is the largest accepted post, in characters.
func (g *Guard) MaxTextLength() int {
	return g.maxTextLength
}

func cacheKey(userID int) string {
	return "posts:" + strconv.Itoa(userID)
}

// ListOwn returns the user's posts through the read-through cache.
func (g *Guard) ListOwn(ctx context.Context, userID int) ([]models.Post, error) {
	return g.cache.GetOrPopulate(ctx, cacheKey(userID), func(ctx context.Context) ([]models.Post, error) {
		return g.store.ListByOwner(ctx, userID)
	})
}

// Get returns the user's posts straight from the datastore.
func (g *Guard) Get(ctx context.Context, userID int) ([]models.Post, error) {
	return g.store.ListByOwner(ctx, userID)
}

// Create stores text for ownerID and returns the new post id. Oversized text
// is rejected, never truncated.
func (g *Guard) Create(ctx context.Context, text string, ownerID int) (int, error) {
	if err := g.ValidateText(text); err != nil {
		return 0, err
	}
	id, err := g.store.Create(ctx, text, ownerID)
	if err != nil {
		return 0, err
	}
	metrics.PostWritten("create")
	return id, nil
}

// ValidateText checks text against the length bound. Empty text is allowed.
func (g *Guard) ValidateText(text string) error {
	if n := utf8.RuneCountInString(text); n > g.maxTextLength {
		return fmt.Errorf("%w: %d characters, limit is %d", ErrTextTooLong, n, g.maxTextLength)
	}
	return nil
}

// Delete removes postID if ownerID owns it. Not owning the post and the post
// not existing are the same ErrPostNotFound.
func (g *Guard) Delete(ctx context.Context, postID, ownerID int) error {
	err := g.store.DeleteOwned(ctx, postID, ownerID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrPostNotFound
	}
	if err != nil {
		return err
	}
	metrics.PostWritten("delete")
	return nil
}
