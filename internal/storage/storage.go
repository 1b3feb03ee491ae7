package storage

import (
	"context"
	"errors"
)

// Store is the narrow save port shared by the cart, wishlist and currency
// layers. Consumers define the interface, not the Redis implementation.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")
