package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"

	"github.com/shaxzod67/Sunnat/internal/cart"
	"github.com/shaxzod67/Sunnat/internal/catalog"
	"github.com/shaxzod67/Sunnat/internal/checkout"
	"github.com/shaxzod67/Sunnat/internal/domain"
	"github.com/shaxzod67/Sunnat/internal/pricing"
)

// fakeSubmitter stands in for the composer. entered/release let a test hold
// the submission open while other calls contend for the loop.
type fakeSubmitter struct {
	mu      sync.Mutex
	entered chan struct{}
	release chan struct{}
	err     error
	info    checkout.BuyerInfo
	view    pricing.View
}

func (f *fakeSubmitter) Submit(_ context.Context, info checkout.BuyerInfo, view pricing.View) (*domain.Order, error) {
	f.mu.Lock()
	f.info = info
	f.view = view
	f.mu.Unlock()
	if f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Order{ID: "order-1", TotalPrice: view.Total.StringFixed(2)}, nil
}

type fakeFeed struct {
	mu           sync.Mutex
	listener     catalog.Listener
	cancelled    bool
	subscribeErr error
}

func (f *fakeFeed) Subscribe(_ context.Context, l catalog.Listener) (func(), error) {
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	f.mu.Lock()
	f.listener = l
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.cancelled = true
		f.mu.Unlock()
	}, nil
}

// deliver blocks until the session has processed the snapshot.
func (f *fakeFeed) deliver(products []domain.Product) {
	f.mu.Lock()
	l := f.listener
	f.mu.Unlock()
	l.OnSnapshot(products)
}

func (f *fakeFeed) fail(err error) {
	f.mu.Lock()
	l := f.listener
	f.mu.Unlock()
	l.OnError(err)
}

func (f *fakeFeed) isCancelled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}

func startSession(t *testing.T) (*Session, *fakeFeed) {
	t.Helper()
	feed := &fakeFeed{}
	s := New(cart.NewStore(), feed)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Close)
	return s, feed
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSession_LinesPendingBeforeFirstSnapshot(t *testing.T) {
	s, _ := startSession(t)

	require.NoError(t, s.AddItem("p1", 2))

	view := s.View()
	require.Len(t, view.Lines, 1)
	assert.Equal(t, true, view.Lines[0].Pending)
	assert.Equal(t, "0.00", view.Total.StringFixed(2))
}

func TestSession_SnapshotDeliveryReprices(t *testing.T) {
	s, feed := startSession(t)
	require.NoError(t, s.AddItem("p1", 3))

	feed.deliver([]domain.Product{{ID: "p1", Category: "c", Price: price("12.50")}})

	view := s.View()
	require.Len(t, view.Lines, 1)
	assert.Equal(t, false, view.Lines[0].Pending)
	assert.Equal(t, "37.50", view.Total.StringFixed(2))

	// Price update before submission reprices the live cart.
	feed.deliver([]domain.Product{{ID: "p1", Category: "c", Price: price("15.00")}})
	assert.Equal(t, "45.00", s.View().Total.StringFixed(2))
}

func TestSession_ProductRemovedFromCatalogGoesPending(t *testing.T) {
	s, feed := startSession(t)
	require.NoError(t, s.AddItem("p1", 1))
	require.NoError(t, s.AddItem("p2", 1))

	feed.deliver([]domain.Product{
		{ID: "p1", Price: price("1.00")},
		{ID: "p2", Price: price("2.00")},
	})
	assert.Equal(t, "3.00", s.View().Total.StringFixed(2))

	// p2 disappears from the catalog; its line stays but stops counting.
	feed.deliver([]domain.Product{{ID: "p1", Price: price("1.00")}})

	view := s.View()
	require.Len(t, view.Lines, 2)
	assert.Equal(t, true, view.Lines[1].Pending)
	assert.Equal(t, "1.00", view.Total.StringFixed(2))

	s.RemoveItem("p2")
	assert.Equal(t, false, s.View().HasPending())
}

func TestSession_MutationsRecompute(t *testing.T) {
	s, feed := startSession(t)
	feed.deliver([]domain.Product{{ID: "p1", Price: price("2.50")}})

	require.NoError(t, s.AddItem("p1", 1))
	assert.Equal(t, "2.50", s.View().Total.StringFixed(2))

	require.NoError(t, s.SetQuantity("p1", 4))
	assert.Equal(t, "10.00", s.View().Total.StringFixed(2))

	err := s.SetQuantity("p1", 0)
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
	assert.Equal(t, "10.00", s.View().Total.StringFixed(2))

	s.ClearCart()
	assert.Equal(t, 0, len(s.View().Lines))
	assert.Equal(t, "0.00", s.View().Total.StringFixed(2))
}

func TestSession_CloseCancelsSubscription(t *testing.T) {
	feed := &fakeFeed{}
	s := New(cart.NewStore(), feed)
	require.NoError(t, s.Start(context.Background()))

	s.Close()
	assert.Equal(t, true, feed.isCancelled())
}

func TestSession_StartFailsWhenSubscribeFails(t *testing.T) {
	feed := &fakeFeed{subscribeErr: &catalog.SubscriptionError{Err: errors.New("no stream")}}
	s := New(cart.NewStore(), feed)

	err := s.Start(context.Background())
	var subErr *catalog.SubscriptionError
	require.ErrorAs(t, err, &subErr)
}

func TestSession_FeedErrorSurfaces(t *testing.T) {
	s, feed := startSession(t)
	require.NoError(t, s.FeedErr())

	cause := &catalog.SubscriptionError{Err: errors.New("cursor died")}
	feed.fail(cause)

	var subErr *catalog.SubscriptionError
	require.ErrorAs(t, s.FeedErr(), &subErr)
}

func TestSession_ClearEmptyCartKeepsView(t *testing.T) {
	s, feed := startSession(t)
	feed.deliver([]domain.Product{{ID: "p1", Price: price("1.00")}})

	s.ClearCart()

	assert.Equal(t, 0, len(s.View().Lines))
	assert.Equal(t, "0.00", s.View().Total.StringFixed(2))
}

func TestSession_CheckoutClearsCartOnSuccess(t *testing.T) {
	s, feed := startSession(t)
	feed.deliver([]domain.Product{{ID: "p1", Price: price("12.50")}})
	require.NoError(t, s.AddItem("p1", 3))

	submitter := &fakeSubmitter{}
	order, err := s.Checkout(context.Background(), submitter, checkout.BuyerInfo{Name: "Ali"})
	require.NoError(t, err)
	assert.Equal(t, "37.50", order.TotalPrice)
	assert.Equal(t, "Ali", submitter.info.Name)

	assert.Equal(t, 0, len(s.View().Lines))
}

func TestSession_CheckoutFailureKeepsCart(t *testing.T) {
	s, feed := startSession(t)
	feed.deliver([]domain.Product{{ID: "p1", Price: price("2.50")}})
	require.NoError(t, s.AddItem("p1", 2))

	_, err := s.Checkout(context.Background(),
		&fakeSubmitter{err: errors.New("backend unreachable")}, checkout.BuyerInfo{})
	require.Error(t, err)

	view := s.View()
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "5.00", view.Total.StringFixed(2))
}

func TestSession_LineAddedDuringSubmissionSurvivesClear(t *testing.T) {
	s, feed := startSession(t)
	feed.deliver([]domain.Product{
		{ID: "p1", Price: price("10.00")},
		{ID: "p2", Price: price("2.00")},
	})
	require.NoError(t, s.AddItem("p1", 1))

	submitter := &fakeSubmitter{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}

	type result struct {
		order *domain.Order
		err   error
	}
	done := make(chan result, 1)
	go func() {
		order, err := s.Checkout(context.Background(), submitter,
			checkout.BuyerInfo{Name: "Ali", Phone: "+998901234567", ShippingAddress: "Tashkent"})
		done <- result{order, err}
	}()
	<-submitter.entered

	// Arrives while the submission holds the loop; it must land after the
	// clear and stay in the cart for the next order.
	added := make(chan error, 1)
	go func() { added <- s.AddItem("p2", 1) }()

	close(submitter.release)
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "10.00", res.order.TotalPrice)
	require.NoError(t, <-added)

	view := s.View()
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "p2", view.Lines[0].ProductID)
	assert.Equal(t, "2.00", view.Total.StringFixed(2))
}

func TestSession_CheckoutAfterClose(t *testing.T) {
	s, _ := startSession(t)
	s.Close()

	_, err := s.Checkout(context.Background(), &fakeSubmitter{}, checkout.BuyerInfo{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSession_ConcurrentMutationsSerialized(t *testing.T) {
	s, feed := startSession(t)

	var products []domain.Product
	for i := 0; i < 10; i++ {
		products = append(products, domain.Product{
			ID:    fmt.Sprintf("p%d", i),
			Price: price("1.00"),
		})
	}
	feed.deliver(products)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.AddItem(fmt.Sprintf("p%d", i), 1)
		}(i)
	}
	wg.Wait()

	view := s.View()
	assert.Equal(t, 10, len(view.Lines))
	assert.Equal(t, "10.00", view.Total.StringFixed(2))
}
