package cart

import (
	"errors"

	"github.com/shaxzod67/Sunnat/internal/domain"
)

// ErrInvalidQuantity is returned when a quantity below 1 is requested for an
// existing line. Use Remove to drop a line instead.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Store holds the shopper's selected line items in insertion order. It is
// purely in-memory and session-scoped; nothing survives the process. Store is
// not safe for concurrent use on its own — the shopping session serializes
// all access onto a single goroutine.
type Store struct {
	items []domain.LineItem
}

func NewStore() *Store {
	return &Store{}
}

// Add inserts a new line or increments the quantity of an existing one.
func (s *Store) Add(productID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity += quantity
			return nil
		}
	}
	s.items = append(s.items, domain.LineItem{ProductID: productID, Quantity: quantity})
	return nil
}

// SetQuantity replaces the quantity of an existing line. A missing product id
// is a no-op.
func (s *Store) SetQuantity(productID string, quantity int) error {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			if quantity < 1 {
				return ErrInvalidQuantity
			}
			s.items[i].Quantity = quantity
			return nil
		}
	}
	return nil
}

// Remove deletes the line if present. Removing an absent line is not an error.
func (s *Store) Remove(productID string) {
	for i, item := range s.items {
		if item.ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func (s *Store) Clear() {
	s.items = nil
}

// Snapshot returns a copy of the current lines in insertion order.
func (s *Store) Snapshot() []domain.LineItem {
	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Empty() bool {
	return len(s.items) == 0
}
