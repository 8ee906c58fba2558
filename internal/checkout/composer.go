package checkout

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/shaxzod67/Sunnat/internal/domain"
	"github.com/shaxzod67/Sunnat/internal/pricing"
)

// BuyerInfo is what the shopper types into the checkout form. All three
// fields are mandatory and must be non-empty after trimming.
type BuyerInfo struct {
	Name            string
	Phone           string
	ShippingAddress string
}

// OrderWriter persists a new order and returns its assigned id. The write is
// all-or-nothing from the composer's point of view.
type OrderWriter interface {
	CreateOrder(ctx context.Context, order *domain.Order) (string, error)
}

// Notifier is told about every created order. Notification is best-effort:
// a failure is logged and never unwinds the order.
type Notifier interface {
	OrderCreated(ctx context.Context, order *domain.Order) error
}

// Composer turns a reconciled cart into an immutable order record. One
// composer serves one shopping session. The buyer fields travel with each
// Submit call, so concurrent submissions cannot read each other's form; the
// shopping session orders submissions against cart mutations.
//
// State machine: Idle -> Collecting (buyer captured) -> Validating ->
// Submitted | Rejected. A successful submission returns the composer to Idle;
// a failed write returns it to Collecting so the shopper may retry with the
// cart intact.
type Composer struct {
	orders   OrderWriter
	notifier Notifier

	mu    sync.Mutex
	state State

	now func() time.Time
}

func NewComposer(orders OrderWriter, notifier Notifier) *Composer {
	return &Composer{
		orders:   orders,
		notifier: notifier,
		state:    StateIdle,
		now:      time.Now,
	}
}

func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Composer) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Submit validates the buyer fields and the reconciled view, freezes the
// resolved lines into an order and persists it. The caller clears the cart
// on success.
func (c *Composer) Submit(ctx context.Context, info BuyerInfo, view pricing.View) (*domain.Order, error) {
	c.setState(StateCollecting)
	c.setState(StateValidating)

	if fields := invalidFields(info, view); len(fields) > 0 {
		c.setState(StateRejected)
		return nil, &ValidationError{Fields: fields}
	}

	order := c.freeze(info, view)

	id, err := c.orders.CreateOrder(ctx, order)
	if err != nil {
		// The cart stays untouched so the shopper can retry.
		c.setState(StateCollecting)
		return nil, &SubmissionError{Err: err}
	}
	order.ID = id
	c.setState(StateSubmitted)

	if c.notifier != nil {
		if errNotify := c.notifier.OrderCreated(ctx, order); errNotify != nil {
			log.Printf("order %s created but notification failed: %v", order.ID, errNotify)
		}
	}

	c.setState(StateIdle)
	return order, nil
}

func invalidFields(info BuyerInfo, view pricing.View) []string {
	var fields []string
	if strings.TrimSpace(info.Name) == "" {
		fields = append(fields, "buyerName")
	}
	if strings.TrimSpace(info.Phone) == "" {
		fields = append(fields, "buyerPhone")
	}
	if strings.TrimSpace(info.ShippingAddress) == "" {
		fields = append(fields, "shippingAddress")
	}
	if len(view.Lines) == 0 {
		fields = append(fields, "cart")
	}
	if view.HasPending() {
		fields = append(fields, "pendingLines")
	}
	return fields
}

// freeze copies every resolved line into the order so later catalog changes
// cannot alter it. Validation has already ruled out pending lines.
func (c *Composer) freeze(info BuyerInfo, view pricing.View) *domain.Order {
	items := make([]domain.OrderItem, 0, len(view.Lines))
	for _, line := range view.Lines {
		items = append(items, domain.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Category,
			ImageURL:  line.ImageURL,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return &domain.Order{
		Items:           items,
		BuyerName:       strings.TrimSpace(info.Name),
		BuyerPhone:      strings.TrimSpace(info.Phone),
		ShippingAddress: strings.TrimSpace(info.ShippingAddress),
		TotalPrice:      view.Total.StringFixed(2),
		CreatedAt:       c.now(),
	}
}
