package wishlist

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodefavour/skyflo-store-sub000/internal/domain"
	"github.com/bodefavour/skyflo-store-sub000/internal/storage"
)

func newTestStore() (*Store, *storage.MemoryStore) {
	mem := storage.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStore(mem, logger), mem
}

func snapshot(id string) domain.ProductSnapshot {
	return domain.ProductSnapshot{ProductID: id, Name: "product " + id, Price: 9.99}
}

func TestToggle_IsItsOwnInverse(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.Add(ctx, "s1", snapshot("p1"))

	list, saved := store.Toggle(ctx, "s1", snapshot("p2"))
	assert.True(t, saved)
	assert.Equal(t, 2, list.Count())

	list, saved = store.Toggle(ctx, "s1", snapshot("p2"))
	assert.False(t, saved)
	require.Equal(t, 1, list.Count())
	assert.Equal(t, "p1", list.Items[0].Product.ProductID)
}

func TestAdd_PresentProductIsNoop(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.Add(ctx, "s1", snapshot("p1"))
	list := store.Add(ctx, "s1", snapshot("p1"))

	assert.Equal(t, 1, list.Count())
}

func TestRemove_AbsentProductIsNoop(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.Add(ctx, "s1", snapshot("p1"))
	list := store.Remove(ctx, "s1", "missing")

	assert.Equal(t, 1, list.Count())
}

func TestContains(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.Add(ctx, "s1", snapshot("p1"))

	assert.True(t, store.Contains(ctx, "s1", "p1"))
	assert.False(t, store.Contains(ctx, "s1", "p2"))
	assert.False(t, store.Contains(ctx, "s2", "p1"))
}

func TestClear_EmptiesCollection(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.Add(ctx, "s1", snapshot("p1"))
	store.Clear(ctx, "s1")

	assert.Equal(t, 0, store.Get(ctx, "s1").Count())
}

func TestPersistenceRoundTrip(t *testing.T) {
	store, mem := newTestStore()
	ctx := context.Background()

	store.Add(ctx, "s1", snapshot("p1"))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reloaded := NewStore(mem, logger)
	list := reloaded.Get(ctx, "s1")

	require.Equal(t, 1, list.Count())
	assert.Equal(t, "p1", list.Items[0].Product.ProductID)
}

func TestGet_CorruptDataStartsEmpty(t *testing.T) {
	store, mem := newTestStore()
	ctx := context.Background()

	require.NoError(t, mem.Save(ctx, "wishlist:s1", []byte("{broken")))

	assert.Equal(t, 0, store.Get(ctx, "s1").Count())
}
