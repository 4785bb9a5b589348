package posts

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/crucial707/postboard/internal/cache"
	"github.com/crucial707/postboard/internal/clock"
	"github.com/crucial707/postboard/internal/models"
	"github.com/crucial707/postboard/internal/repo"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store with the same ownership semantics as repo.PostRepo.
type fakeStore struct {
	mu     sync.Mutex
	nextID int
	posts  map[int]models.Post
	reads  int
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, posts: make(map[int]models.Post)}
}

func (s *fakeStore) ListByOwner(_ context.Context, ownerID int) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	out := []models.Post{}
	for _, p := range s.posts {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) Create(_ context.Context, text string, ownerID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	id := s.nextID
	s.nextID++
	s.posts[id] = models.Post{ID: id, Text: text, OwnerID: ownerID}
	return id, nil
}

func (s *fakeStore) DeleteOwned(_ context.Context, postID, ownerID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	p, ok := s.posts[postID]
	if !ok || p.OwnerID != ownerID {
		return repo.ErrNotFound
	}
	delete(s.posts, postID)
	return nil
}

func newTestGuard(maxLen int) (*Guard, *fakeStore, *clock.Stub) {
	stub := clock.NewStub(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := newFakeStore()
	listCache := cache.NewReadThrough[[]models.Post]("posts-test", cache.NewMemory(stub), 5*time.Minute)
	return NewGuard(store, listCache, maxLen), store, stub
}

func TestGuard_CreateLengthBound(t *testing.T) {
	g, _, _ := newTestGuard(10)
	ctx := context.Background()

	for n := 1; n <= 10; n++ {
		_, err := g.Create(ctx, strings.Repeat("a", n), 1)
		require.NoError(t, err, "length %d is within the bound", n)
	}
	for _, n := range []int{11, 12, 100} {
		_, err := g.Create(ctx, strings.Repeat("a", n), 1)
		require.ErrorIs(t, err, ErrTextTooLong, "length %d exceeds the bound", n)
	}
}

func TestGuard_CreateCountsCharactersNotBytes(t *testing.T) {
	g, _, _ := newTestGuard(5)

	_, err := g.Create(context.Background(), "héllo", 1)
	require.NoError(t, err)
	_, err = g.Create(context.Background(), "héllo!", 1)
	require.ErrorIs(t, err, ErrTextTooLong)
}

func TestGuard_CreateRejectedTextIsNotStored(t *testing.T) {
	g, store, _ := newTestGuard(3)

	_, err := g.Create(context.Background(), "toolong", 1)
	require.ErrorIs(t, err, ErrTextTooLong)
	require.Empty(t, store.posts)
}

func TestGuard_CreateAcceptsEmptyText(t *testing.T) {
	g, store, _ := newTestGuard(255)

	id, err := g.Create(context.Background(), "", 1)
	require.NoError(t, err)
	require.Equal(t, "", store.posts[id].Text)
}

func TestGuard_DeleteRequiresOwnership(t *testing.T) {
	g, _, _ := newTestGuard(255)
	ctx := context.Background()
	const alice, bob = 1, 2

	for i := 0; i < 20; i++ {
		id, err := g.Create(ctx, gofakeit.LetterN(20), alice)
		require.NoError(t, err)

		err = g.Delete(ctx, id, bob)
		require.ErrorIs(t, err, ErrPostNotFound, "non-owner delete reports not found")

		posts, err := g.Get(ctx, alice)
		require.NoError(t, err)
		require.True(t, containsPost(posts, id), "non-owner delete must not remove the post")

		require.NoError(t, g.Delete(ctx, id, alice))

		posts, err = g.Get(ctx, alice)
		require.NoError(t, err)
		require.False(t, containsPost(posts, id), "owner delete removes the post")
	}
}

func TestGuard_DeleteMissingPost(t *testing.T) {
	g, _, _ := newTestGuard(255)
	require.ErrorIs(t, g.Delete(context.Background(), 404, 1), ErrPostNotFound)
}

// ListOwn may serve a snapshot taken before a write until the TTL elapses;
// Get always reflects the write.
func TestGuard_ListOwnIsStaleUntilTTLButGetIsFresh(t *testing.T) {
	g, store, stub := newTestGuard(255)
	ctx := context.Background()

	posts, err := g.ListOwn(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, posts)

	id, err := g.Create(ctx, "hello", 1)
	require.NoError(t, err)

	cached, err := g.ListOwn(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, cached, "cached list is not invalidated by create")

	fresh, err := g.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []models.Post{{ID: id, Text: "hello", OwnerID: 1}}, fresh)

	stub.Advance(5 * time.Minute)
	afterTTL, err := g.ListOwn(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, fresh, afterTTL)

	reads := store.reads
	_, err = g.ListOwn(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, reads, store.reads, "cache hit does not touch the datastore")
}

func TestGuard_ListOwnIsScopedPerUser(t *testing.T) {
	g, _, _ := newTestGuard(255)
	ctx := context.Background()

	_, err := g.Create(ctx, "alice's", 1)
	require.NoError(t, err)
	_, err = g.Create(ctx, "bob's", 2)
	require.NoError(t, err)

	a, err := g.ListOwn(ctx, 1)
	require.NoError(t, err)
	b, err := g.ListOwn(ctx, 2)
	require.NoError(t, err)

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	require.Equal(t, "alice's", a[0].Text)
	require.Equal(t, "bob's", b[0].Text)
}

func TestGuard_StoreErrorsPropagate(t *testing.T) {
	g, store, _ := newTestGuard(255)
	ctx := context.Background()
	store.err = errors.New("db down")

	_, err := g.ListOwn(ctx, 1)
	require.Error(t, err)
	_, err = g.Get(ctx, 1)
	require.Error(t, err)
	_, err = g.Create(ctx, "x", 1)
	require.Error(t, err)

	err = g.Delete(ctx, 1, 1)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrPostNotFound)
}

func containsPost(posts []models.Post, id int) bool {
	for _, p := range posts {
		if p.ID == id {
			return true
		}
	}
	return false
}
