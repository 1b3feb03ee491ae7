package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/bodefavour/skyflo-store-sub000/internal/domain"
	"github.com/bodefavour/skyflo-store-sub000/internal/storage"
)

// Store maintains the per-session line-item collection. Every mutation is
// written back through the storage port before it returns, so a reconnecting
// session sees the latest state.
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

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

// Get loads the session's cart. Missing or corrupt data yields an empty cart,
// never an error the caller has to handle.
func (s *Store) Get(ctx context.Context, sessionID string) *domain.Cart {
	data, err := s.store.Load(ctx, cartKey(sessionID))
	if err != nil {
		if err != storage.ErrNotFound {
			s.log.Warn("failed to load cart", "session", sessionID, "error", err)
		}
		return s.emptyCart(sessionID)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		s.log.Warn("stored cart is corrupt, starting empty", "session", sessionID, "error", err)
		return s.emptyCart(sessionID)
	}
	cart.SessionID = sessionID
	return &cart
}

// Add appends a line item with a snapshot of the product's display fields and
// price at time of add. If the product is already present its quantity is
// incremented instead of duplicating the entry.
func (s *Store) Add(ctx context.Context, sessionID string, product domain.ProductSnapshot, quantity int) *domain.Cart {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.Get(ctx, sessionID)
	if i := indexOf(cart.Items, product.ProductID); i >= 0 {
		cart.Items[i].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			Product:  product,
			Quantity: quantity,
			AddedAt:  s.now(),
		})
	}
	s.persist(ctx, cart)
	return cart
}

// UpdateQuantity sets the line item's quantity; zero or below removes the
// item entirely. An absent product id is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.Get(ctx, sessionID)
	i := indexOf(cart.Items, productID)
	if i < 0 {
		return cart
	}

	if quantity <= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	} else {
		cart.Items[i].Quantity = quantity
	}
	s.persist(ctx, cart)
	return cart
}

// Remove drops the line item if present; no-op otherwise.
func (s *Store) Remove(ctx context.Context, sessionID, productID string) *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.Get(ctx, sessionID)
	i := indexOf(cart.Items, productID)
	if i < 0 {
		return cart
	}

	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	s.persist(ctx, cart)
	return cart
}

// Clear empties the collection, e.g. after order placement.
func (s *Store) Clear(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, cartKey(sessionID)); err != nil {
		s.log.Warn("failed to clear cart", "session", sessionID, "error", err)
	}
}

func (s *Store) persist(ctx context.Context, cart *domain.Cart) {
	cart.UpdatedAt = s.now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = cart.UpdatedAt
	}

	data, err := json.Marshal(cart)
	if err != nil {
		s.log.Warn("failed to marshal cart", "session", cart.SessionID, "error", err)
		return
	}
	if err := s.store.Save(ctx, cartKey(cart.SessionID), data); err != nil {
		s.log.Warn("failed to persist cart", "session", cart.SessionID, "error", err)
	}
}

func (s *Store) emptyCart(sessionID string) *domain.Cart {
	now := s.now()
	return &domain.Cart{
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func indexOf(items []domain.CartItem, productID string) int {
	for i := range items {
		if items[i].Product.ProductID == productID {
			return i
		}
	}
	return -1
}
