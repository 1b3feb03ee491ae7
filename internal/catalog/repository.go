package catalog

import (
	"context"
	"errors"

	"github.com/bodefavour/skyflo-store-sub000/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Repository is the product/order persistence collaborator. Two
// implementations exist: the MongoDB document store the catalog started on
// and the Postgres store it is migrating to.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error

	CreateOrder(ctx context.Context, o *domain.Order) error

	Close(ctx context.Context) error
}
