package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaxzod67/Sunnat/internal/domain"
	"github.com/shaxzod67/Sunnat/internal/orders"
)

type orderStoreMock struct {
	list    []domain.Order
	listErr error

	deleted   string
	deleteErr error
}

func (m *orderStoreMock) ListOrders(context.Context) ([]domain.Order, error) {
	return m.list, m.listErr
}

func (m *orderStoreMock) DeleteOrder(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = id
	return nil
}

func TestListOrders(t *testing.T) {
	mock := &orderStoreMock{list: []domain.Order{{
		ID:         "order-1",
		BuyerName:  "Ali",
		TotalPrice: "37.50",
		CreatedAt:  time.Now(),
		Items: []domain.OrderItem{{
			ProductID: "p1",
			Name:      "Poyabzal",
			Quantity:  3,
			UnitPrice: decimal.RequireFromString("12.50"),
		}},
	}}}
	handler := NewOrdersHandler(mock)

	recorder := httptest.NewRecorder()
	handler.ListOrders(recorder, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp []domain.Order
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "order-1", resp[0].ID)
	assert.Equal(t, "37.50", resp[0].TotalPrice)
}

func TestListOrders_Empty(t *testing.T) {
	handler := NewOrdersHandler(&orderStoreMock{})

	recorder := httptest.NewRecorder()
	handler.ListOrders(recorder, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, "[]", recorder.Body.String())
}

func deleteRequest(id string) *http.Request {
	request := httptest.NewRequest("DELETE", "/"+id, nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", id)
	return request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, routeCtx))
}

func TestDeleteOrder(t *testing.T) {
	mock := &orderStoreMock{}
	handler := NewOrdersHandler(mock)

	recorder := httptest.NewRecorder()
	handler.DeleteOrder(recorder, deleteRequest("order-1"))

	require.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "order-1", mock.deleted)
}

func TestDeleteOrder_NotFound(t *testing.T) {
	mock := &orderStoreMock{deleteErr: orders.ErrOrderNotFound}
	handler := NewOrdersHandler(mock)

	recorder := httptest.NewRecorder()
	handler.DeleteOrder(recorder, deleteRequest("missing"))

	require.Equal(t, http.StatusNotFound, recorder.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "not_found", resp.Code)
}
