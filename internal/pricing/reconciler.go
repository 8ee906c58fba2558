package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/shaxzod67/Sunnat/internal/domain"
)

// PricedLine is a cart line joined with the live catalog. It is derived state:
// it becomes stale the moment a new catalog snapshot arrives and must be
// recomputed before use, never cached across snapshots.
type PricedLine struct {
	ProductID   string          `json:"product_id"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"img"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	// Pending marks a line whose product is no longer in the catalog. Pending
	// lines carry no price and are excluded from the total; the underlying
	// cart line stays until the shopper removes it.
	Pending bool `json:"pending"`
}

// View is the reconciled cart: every cart line in insertion order plus the
// grand total over the resolved lines.
type View struct {
	Lines []PricedLine    `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func (v View) HasPending() bool {
	for _, l := range v.Lines {
		if l.Pending {
			return true
		}
	}
	return false
}

// Reconcile joins cart lines against a catalog snapshot. Lines are priced at
// the catalog's current price; lines whose product id has no exact match are
// flagged pending. The total is summed exactly and rounded to two decimal
// places once at the end, so per-line rounding drift cannot accumulate.
// Reconcile is deterministic: identical inputs yield identical output.
func Reconcile(lines []domain.LineItem, catalog []domain.Product) View {
	byID := make(map[string]domain.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	view := View{Lines: make([]PricedLine, 0, len(lines))}
	total := decimal.Zero
	for _, item := range lines {
		p, ok := byID[item.ProductID]
		if !ok {
			view.Lines = append(view.Lines, PricedLine{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Pending:   true,
			})
			continue
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Lines = append(view.Lines, PricedLine{
			ProductID: item.ProductID,
			Category:  p.Category,
			ImageURL:  p.ImageURL,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
			LineTotal: lineTotal,
		})
		total = total.Add(lineTotal)
	}
	view.Total = total.Round(2)
	return view
}
