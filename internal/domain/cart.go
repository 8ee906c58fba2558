package domain

// LineItem is a shopper's selection of one product. Carts hold at most one
// line per product id; re-adding a product increments the existing line.
type LineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
