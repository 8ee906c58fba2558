package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/shaxzod67/Sunnat/internal/cache"
	"github.com/shaxzod67/Sunnat/internal/domain"
)

// SubscriptionError means the live feed was disrupted. The subscription is
// inactive afterwards; callers decide whether and when to resubscribe.
type SubscriptionError struct {
	Err error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("catalog subscription failed: %v", e.Err)
}

func (e *SubscriptionError) Unwrap() error {
	return e.Err
}

// Source is the document-store capability the feed is built on. Repository
// implements it; tests swap in fakes.
type Source interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	Watch(ctx context.Context) (Changes, error)
}

// Changes is the subset of a change stream the feed consumes.
// *mongo.ChangeStream satisfies it.
type Changes interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

// Listener receives feed deliveries. OnSnapshot gets the complete current
// catalog, never a diff; each delivery replaces the previous one. OnError is
// called at most once, after which no further deliveries occur.
type Listener struct {
	OnSnapshot func([]domain.Product)
	OnError    func(error)
}

// Feed pushes full catalog snapshots to subscribers whenever the product
// collection changes. Snapshots are cached so a fresh subscription can be
// primed without hitting the collection; concurrent reloads are collapsed
// with singleflight.
type Feed struct {
	source Source
	cache  cache.ProductCache
	sfg    singleflight.Group
}

func NewFeed(source Source, cache cache.ProductCache) *Feed {
	return &Feed{source: source, cache: cache}
}

// Subscribe activates a live subscription and returns a cancel handle. The
// handle must be called on deactivation; a leaked subscription keeps
// delivering snapshots nobody reads. The initial snapshot is delivered before
// any change events.
func (f *Feed) Subscribe(ctx context.Context, l Listener) (func(), error) {
	stream, err := f.source.Watch(ctx)
	if err != nil {
		return nil, &SubscriptionError{Err: err}
	}

	ctx, cancel := context.WithCancel(ctx)
	go f.run(ctx, stream, l)
	return cancel, nil
}

func (f *Feed) run(ctx context.Context, stream Changes, l Listener) {
	defer func() {
		if err := stream.Close(context.Background()); err != nil {
			log.Printf("error closing change stream: %v", err)
		}
	}()

	snapshot, err := f.primedSnapshot(ctx)
	if err != nil {
		f.fail(ctx, l, err)
		return
	}
	l.OnSnapshot(snapshot)

	for stream.Next(ctx) {
		snapshot, err := f.reload(ctx)
		if err != nil {
			f.fail(ctx, l, err)
			return
		}
		l.OnSnapshot(snapshot)
	}

	if err := stream.Err(); err != nil {
		f.fail(ctx, l, err)
	}
}

func (f *Feed) fail(ctx context.Context, l Listener, err error) {
	// Cancellation is deactivation, not a failure.
	if ctx.Err() != nil {
		return
	}
	// A disrupted stream may have missed changes, so the cached snapshot can
	// no longer be trusted to be current.
	if f.cache != nil {
		if errDel := f.cache.Delete(context.Background()); errDel != nil {
			log.Printf("catalog cache delete error: %v", errDel)
		}
	}
	if l.OnError != nil {
		l.OnError(&SubscriptionError{Err: err})
	}
}

// primedSnapshot serves the cached snapshot when one exists, falling back to
// the collection. Cache errors other than a miss are logged and ignored.
func (f *Feed) primedSnapshot(ctx context.Context) ([]domain.Product, error) {
	if f.cache != nil {
		products, err := f.cache.Get(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("catalog cache get error: %v", err)
		}
	}
	return f.reload(ctx)
}

// reload reads the full catalog and refreshes the cache. Multiple subscribers
// reloading at once share a single read.
func (f *Feed) reload(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := f.sfg.Do("catalog", func() (interface{}, error) {
		products, err := f.source.ListProducts(ctx)
		if err != nil {
			return nil, err
		}
		if f.cache != nil {
			if errSet := f.cache.Set(ctx, products); errSet != nil {
				log.Printf("catalog cache set error: %v", errSet)
			}
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}
