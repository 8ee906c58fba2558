package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is a cart line frozen at submission time. Name, image and price
// are copied from the catalog snapshot, not referenced, so later catalog edits
// never change a submitted order.
type OrderItem struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"img"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
}

// Order is immutable after creation; the admin side may only delete it whole.
type Order struct {
	ID              string      `json:"id"`
	Items           []OrderItem `json:"items"`
	BuyerName       string      `json:"itemName"`
	BuyerPhone      string      `json:"tel"`
	ShippingAddress string      `json:"shippingAddress"`
	// TotalPrice is fixed to two decimal places at submission time.
	TotalPrice string    `json:"totalPrice"`
	CreatedAt  time.Time `json:"createdAt"`
}
