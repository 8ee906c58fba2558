package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shaxzod67/Sunnat/internal/checkout"
	"github.com/shaxzod67/Sunnat/internal/domain"
	"github.com/shaxzod67/Sunnat/internal/session"
)

// CheckoutSession is what the checkout endpoint needs from the shopping
// session: a submission slot that runs atomically against cart mutations.
type CheckoutSession interface {
	Checkout(ctx context.Context, submitter session.Submitter, info checkout.BuyerInfo) (*domain.Order, error)
}

type CheckoutHandler struct {
	composer *checkout.Composer
	session  CheckoutSession
}

func NewCheckoutHandler(composer *checkout.Composer, session CheckoutSession) *CheckoutHandler {
	return &CheckoutHandler{composer: composer, session: session}
}

type CheckoutRequestDTO struct {
	BuyerName       string `json:"itemName"`
	BuyerPhone      string `json:"tel"`
	ShippingAddress string `json:"shippingAddress"`
}

// Submit freezes the current reconciled cart into an order. The session
// serializes the submission, so the priced lines are the live ones at the
// moment of submission and no concurrent cart change is lost.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.session.Checkout(r.Context(), h.composer, checkout.BuyerInfo{
		Name:            req.BuyerName,
		Phone:           req.BuyerPhone,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		var validationErr *checkout.ValidationError
		if errors.As(err, &validationErr) {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "order validation failed",
				Code:    "validation_failed",
				Details: strings.Join(validationErr.Fields, ", "),
			})
			return
		}
		var submissionErr *checkout.SubmissionError
		if errors.As(err, &submissionErr) {
			respondError(w, http.StatusServiceUnavailable, "submission_failed", submissionErr.Error())
			return
		}
		if errors.Is(err, session.ErrClosed) {
			respondError(w, http.StatusServiceUnavailable, "session_closed", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

// State reports where the composer is in the checkout lifecycle.
func (h *CheckoutHandler) State(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"state": h.composer.State().String()})
}
