package domain

import "time"

type WishlistItem struct {
	Product ProductSnapshot `json:"product"`
	AddedAt time.Time       `json:"added_at"`
}

// Wishlist is a set keyed by product id; a product appears at most once.
type Wishlist struct {
	SessionID string         `json:"session_id"`
	Items     []WishlistItem `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (w *Wishlist) Contains(productID string) bool {
	return w.find(productID) >= 0
}

func (w *Wishlist) Count() int {
	return len(w.Items)
}

func (w *Wishlist) find(productID string) int {
	for i := range w.Items {
		if w.Items[i].Product.ProductID == productID {
			return i
		}
	}
	return -1
}
