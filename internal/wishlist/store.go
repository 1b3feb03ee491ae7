package wishlist

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/bodefavour/skyflo-store-sub000/internal/domain"
	"github.com/bodefavour/skyflo-store-sub000/internal/storage"
)

// Store maintains the per-session set of saved products. Persistence follows
// the cart store: every mutation is written back before returning.
type Store struct {
	store storage.Store
	log   *slog.Logger
	now   func() time.Time

	mu sync.Mutex
}

func NewStore(store storage.Store, log *slog.Logger) *Store {
	return &Store{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

func wishlistKey(sessionID string) string {
	return "wishlist:" + sessionID
}

// Get loads the session's wishlist; missing or corrupt data yields an empty
// one.
func (s *Store) Get(ctx context.Context, sessionID string) *domain.Wishlist {
	data, err := s.store.Load(ctx, wishlistKey(sessionID))
	if err != nil {
		if err != storage.ErrNotFound {
			s.log.Warn("failed to load wishlist", "session", sessionID, "error", err)
		}
		return s.empty(sessionID)
	}

	var list domain.Wishlist
	if err := json.Unmarshal(data, &list); err != nil {
		s.log.Warn("stored wishlist is corrupt, starting empty", "session", sessionID, "error", err)
		return s.empty(sessionID)
	}
	list.SessionID = sessionID
	return &list
}

// Add inserts the product if absent; already-present products are left alone.
func (s *Store) Add(ctx context.Context, sessionID string, product domain.ProductSnapshot) *domain.Wishlist {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.Get(ctx, sessionID)
	if list.Contains(product.ProductID) {
		return list
	}

	list.Items = append(list.Items, domain.WishlistItem{
		Product: product,
		AddedAt: s.now(),
	})
	s.persist(ctx, list)
	return list
}

// Remove drops the product if present; no-op otherwise.
func (s *Store) Remove(ctx context.Context, sessionID, productID string) *domain.Wishlist {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.Get(ctx, sessionID)
	i := indexOf(list.Items, productID)
	if i < 0 {
		return list
	}

	list.Items = append(list.Items[:i], list.Items[i+1:]...)
	s.persist(ctx, list)
	return list
}

// Toggle removes the product when present and inserts it otherwise. Applying
// it twice with the same product is a net no-op. The second return value
// reports whether the product ended up in the list.
func (s *Store) Toggle(ctx context.Context, sessionID string, product domain.ProductSnapshot) (*domain.Wishlist, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.Get(ctx, sessionID)
	if i := indexOf(list.Items, product.ProductID); i >= 0 {
		list.Items = append(list.Items[:i], list.Items[i+1:]...)
		s.persist(ctx, list)
		return list, false
	}

	list.Items = append(list.Items, domain.WishlistItem{
		Product: product,
		AddedAt: s.now(),
	})
	s.persist(ctx, list)
	return list, true
}

// Contains is a membership test by product id.
func (s *Store) Contains(ctx context.Context, sessionID, productID string) bool {
	return s.Get(ctx, sessionID).Contains(productID)
}

// Clear empties the collection.
func (s *Store) Clear(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, wishlistKey(sessionID)); err != nil {
		s.log.Warn("failed to clear wishlist", "session", sessionID, "error", err)
	}
}

func (s *Store) persist(ctx context.Context, list *domain.Wishlist) {
	list.UpdatedAt = s.now()
	if list.CreatedAt.IsZero() {
		list.CreatedAt = list.UpdatedAt
	}

	data, err := json.Marshal(list)
	if err != nil {
		s.log.Warn("failed to marshal wishlist", "session", list.SessionID, "error", err)
		return
	}
	if err := s.store.Save(ctx, wishlistKey(list.SessionID), data); err != nil {
		s.log.Warn("failed to persist wishlist", "session", list.SessionID, "error", err)
	}
}

func (s *Store) empty(sessionID string) *domain.Wishlist {
	now := s.now()
	return &domain.Wishlist{
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func indexOf(items []domain.WishlistItem, productID string) int {
	for i := range items {
		if items[i].Product.ProductID == productID {
			return i
		}
	}
	return -1
}
