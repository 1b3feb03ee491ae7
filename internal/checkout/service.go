package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bodefavour/skyflo-store-sub000/internal/cart"
	"github.com/bodefavour/skyflo-store-sub000/internal/catalog"
	"github.com/bodefavour/skyflo-store-sub000/internal/currency"
	"github.com/bodefavour/skyflo-store-sub000/internal/domain"
)

var ErrEmptyCart = errors.New("cart is empty")

// OrderPublisher notifies downstream consumers that an order was placed.
type OrderPublisher interface {
	Publish(ctx context.Context, order *domain.Order) error
}

// Service is the checkout passthrough: it snapshots the cart, persists the
// order, announces it and clears the cart. No payment logic lives here.
type Service struct {
	carts    *cart.Store
	repo     catalog.Repository
	currency *currency.Service
	pub      OrderPublisher
	log      *slog.Logger
	now      func() time.Time
}

// NewService wires the checkout passthrough. pub may be nil when no broker is
// configured.
func NewService(carts *cart.Store, repo catalog.Repository, cur *currency.Service, pub OrderPublisher, log *slog.Logger) *Service {
	return &Service{
		carts:    carts,
		repo:     repo,
		currency: cur,
		pub:      pub,
		log:      log,
		now:      time.Now,
	}
}

// PlaceOrder captures the session's cart as an immutable order. The stored
// total stays in the base currency; the display fields record what the buyer
// saw in their own currency and locale.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string) (*domain.Order, error) {
	c := s.carts.Get(ctx, sessionID)
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	prefs := s.currency.Preferences(ctx, sessionID)

	items := make([]domain.OrderItem, len(c.Items))
	for i, item := range c.Items {
		items[i] = domain.OrderItem{
			ProductID: item.Product.ProductID,
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
			Subtotal:  item.Product.Price * float64(item.Quantity),
		}
	}

	order := &domain.Order{
		ID:           uuid.NewString(),
		SessionID:    sessionID,
		Items:        items,
		TotalAmount:  c.Total(),
		Currency:     prefs.Currency,
		DisplayTotal: s.currency.Format(ctx, sessionID, c.Total()),
		PlacedAt:     s.now(),
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	if s.pub != nil {
		if err := s.pub.Publish(ctx, order); err != nil {
			// The order is already persisted; publishing is best effort.
			s.log.Warn("failed to publish order-placed event", "order", order.ID, "error", err)
		}
	}

	s.carts.Clear(ctx, sessionID)
	return order, nil
}
