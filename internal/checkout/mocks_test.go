package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/shaxzod67/Sunnat/internal/domain"
)

// MockOrderWriter implements OrderWriter for testing. Safe for concurrent use.
type MockOrderWriter struct {
	mu            sync.Mutex
	CreatedOrders []*domain.Order // Captures the orders passed to CreateOrder
	CreateCalls   int
	NextID        string
	CreateErr     error
	Delay         time.Duration // Holds each write open to overlap concurrent submissions
}

func (m *MockOrderWriter) CreateOrder(_ context.Context, order *domain.Order) (string, error) {
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	copied := *order
	m.CreatedOrders = append(m.CreatedOrders, &copied)
	return m.NextID, nil
}

func (m *MockOrderWriter) CreatedOrder() *domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.CreatedOrders) == 0 {
		return nil
	}
	return m.CreatedOrders[len(m.CreatedOrders)-1]
}

func (m *MockOrderWriter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CreateCalls
}

func (m *MockOrderWriter) SetErr(err error) {
	m.mu.Lock()
	m.CreateErr = err
	m.mu.Unlock()
}

// MockNotifier implements Notifier for testing
type MockNotifier struct {
	Notified  []*domain.Order
	NotifyErr error
}

func (m *MockNotifier) OrderCreated(_ context.Context, order *domain.Order) error {
	m.Notified = append(m.Notified, order)
	return m.NotifyErr
}
