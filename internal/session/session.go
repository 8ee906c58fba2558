package session

import (
	"context"
	"errors"
	"sync"

	"github.com/shaxzod67/Sunnat/internal/cart"
	"github.com/shaxzod67/Sunnat/internal/catalog"
	"github.com/shaxzod67/Sunnat/internal/checkout"
	"github.com/shaxzod67/Sunnat/internal/domain"
	"github.com/shaxzod67/Sunnat/internal/pricing"
)

// ErrClosed is returned by Checkout after the session has been shut down.
var ErrClosed = errors.New("shopping session closed")

// Catalog is the injected subscription capability. Any push- or poll-based
// source works behind it; production wires the change-stream feed.
type Catalog interface {
	Subscribe(ctx context.Context, l catalog.Listener) (func(), error)
}

// Submitter freezes a reconciled view into a persisted order. The composer
// implements it.
type Submitter interface {
	Submit(ctx context.Context, info checkout.BuyerInfo, view pricing.View) (*domain.Order, error)
}

// Session is one shopper's execution context. Both event sources — catalog
// snapshot deliveries and cart mutations — are serialized onto a single
// goroutine: each handler runs to completion, recomputing the priced view,
// before the next is processed. No two reconciliations ever run concurrently.
type Session struct {
	cart *cart.Store
	feed Catalog

	cmds chan func()
	quit chan struct{}
	once sync.Once

	// owned by the loop goroutine
	catalog   []domain.Product
	view      pricing.View
	feedErr   error
	cancelSub func()
}

func New(store *cart.Store, feed Catalog) *Session {
	return &Session{
		cart: store,
		feed: feed,
		cmds: make(chan func()),
		quit: make(chan struct{}),
	}
}

// Start launches the loop and activates the catalog subscription. Until the
// first snapshot arrives every cart line reconciles as pending.
func (s *Session) Start(ctx context.Context) error {
	go s.loop()

	cancel, err := s.feed.Subscribe(ctx, catalog.Listener{
		OnSnapshot: func(products []domain.Product) {
			s.post(func() {
				s.catalog = products
				s.recompute()
			})
		},
		OnError: func(err error) {
			s.post(func() {
				s.feedErr = err
			})
		},
	})
	if err != nil {
		s.Close()
		return err
	}
	s.cancelSub = cancel
	return nil
}

// Close cancels the catalog subscription and stops the loop. The subscription
// is a long-lived resource; leaking it keeps snapshots flowing to a session
// nobody reads.
func (s *Session) Close() {
	s.once.Do(func() {
		if s.cancelSub != nil {
			s.cancelSub()
		}
		close(s.quit)
	})
}

func (s *Session) loop() {
	for {
		select {
		case fn := <-s.cmds:
			fn()
		case <-s.quit:
			return
		}
	}
}

func (s *Session) post(fn func()) {
	select {
	case s.cmds <- fn:
	case <-s.quit:
	}
}

// do runs fn on the loop goroutine and waits for it to finish. After Close
// fn never runs.
func (s *Session) do(fn func()) {
	select {
	case <-s.quit:
		return
	default:
	}
	done := make(chan struct{})
	s.post(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
	case <-s.quit:
	}
}

func (s *Session) recompute() {
	s.view = pricing.Reconcile(s.cart.Snapshot(), s.catalog)
}

func (s *Session) AddItem(productID string, quantity int) error {
	var err error
	s.do(func() {
		if err = s.cart.Add(productID, quantity); err == nil {
			s.recompute()
		}
	})
	return err
}

func (s *Session) SetQuantity(productID string, quantity int) error {
	var err error
	s.do(func() {
		if err = s.cart.SetQuantity(productID, quantity); err == nil {
			s.recompute()
		}
	})
	return err
}

func (s *Session) RemoveItem(productID string) {
	s.do(func() {
		s.cart.Remove(productID)
		s.recompute()
	})
}

func (s *Session) ClearCart() {
	s.do(func() {
		if s.cart.Empty() {
			return
		}
		s.cart.Clear()
		s.recompute()
	})
}

// Checkout submits the current reconciled cart on the loop goroutine. The
// view handed to the submitter and the clear that follows a successful
// submission are one step: a line added concurrently lands after the clear
// and stays in the cart for the next order, never silently dropped. Cart
// mutations wait while the submission is in flight.
func (s *Session) Checkout(ctx context.Context, submitter Submitter, info checkout.BuyerInfo) (*domain.Order, error) {
	var order *domain.Order
	err := ErrClosed
	s.do(func() {
		order, err = submitter.Submit(ctx, info, s.view)
		if err == nil {
			s.cart.Clear()
			s.recompute()
		}
	})
	return order, err
}

// View returns the current reconciled cart.
func (s *Session) View() pricing.View {
	var view pricing.View
	s.do(func() {
		view = s.view
	})
	return view
}

// FeedErr reports a subscription failure, if any. After a failure the feed is
// inactive and the session keeps serving the last known snapshot.
func (s *Session) FeedErr() error {
	var err error
	s.do(func() {
		err = s.feedErr
	})
	return err
}
