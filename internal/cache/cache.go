package cache

import (
	"context"
	"errors"

	"github.com/shaxzod67/Sunnat/internal/domain"
)

// ProductCache keeps the last delivered catalog snapshot so a freshly
// activated session can render a last-known catalog before the first live
// delivery arrives.
type ProductCache interface {
	Get(ctx context.Context) ([]domain.Product, error)
	Set(ctx context.Context, products []domain.Product) error
	Delete(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
