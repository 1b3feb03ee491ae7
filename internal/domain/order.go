package domain

import "time"

type OrderItem struct {
	ProductID string  `json:"product_id" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	UnitPrice float64 `json:"unit_price" bson:"unit_price"`
	Subtotal  float64 `json:"subtotal" bson:"subtotal"`
}

// Order captures the full cart state at checkout time. Amounts are stored in
// the base currency; Currency and DisplayTotal record what the buyer saw.
type Order struct {
	ID           string      `json:"id" bson:"_id,omitempty"`
	SessionID    string      `json:"session_id" bson:"session_id"`
	Items        []OrderItem `json:"items" bson:"items"`
	TotalAmount  float64     `json:"total_amount" bson:"total_amount"`
	Currency     string      `json:"currency" bson:"currency"`
	DisplayTotal string      `json:"display_total" bson:"display_total"`
	PlacedAt     time.Time   `json:"placed_at" bson:"placed_at"`
}
