package domain

import "github.com/shopspring/decimal"

// Product is one record of the remote catalog. The catalog collection is the
// authoritative source; this process only observes it through the feed, apart
// from the admin editor endpoints.
type Product struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	ImageURL    string          `json:"img"`
	Price       decimal.Decimal `json:"price"`
}
