package public

import (
	"errors"

	"github.com/smartskincare/api/internal/http/response"
	"github.com/smartskincare/api/internal/service"

	"github.com/gin-gonic/gin"
)

// BuildCheckoutSummary prices the cart and issues a checkout token.
func (h *Handler) BuildCheckoutSummary(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	summary, err := h.CheckoutService.BuildSummary(c.Request.Context(), uid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartEmpty):
			respondError(c, response.CodeBadRequest, "Cart is empty", nil)
		case errors.Is(err, service.ErrProductNotAvailable):
			respondError(c, response.CodeBadRequest, "Product not available", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "User not found", nil)
		default:
			respondError(c, response.CodeInternal, "Checkout failed", err)
		}
		return
	}

	response.Success(c, summary)
}

// ConfirmCheckoutRequest commits a checkout.
type ConfirmCheckoutRequest struct {
	Token      string `json:"token" binding:"required"`
	CardHolder string `json:"card_holder" binding:"required"`
	CardNumber string `json:"card_number" binding:"required"`
	CardExpiry string `json:"card_expiry" binding:"required"`
	CardCVV    string `json:"card_cvv" binding:"required"`
}

// ConfirmCheckout commits the checkout as a paid order. Replays with a
// used token return the original order.
func (h *Handler) ConfirmCheckout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req ConfirmCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	order, err := h.CheckoutService.ConfirmPayment(c.Request.Context(), service.ConfirmPaymentInput{
		UserID:     uid,
		Token:      req.Token,
		CardHolder: req.CardHolder,
		CardNumber: req.CardNumber,
		CardExpiry: req.CardExpiry,
		CardCVV:    req.CardCVV,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCheckoutSummaryMissing):
			respondError(c, response.CodeBadRequest, "Checkout summary missing or expired", nil)
		case errors.Is(err, service.ErrCheckoutTokenMismatch):
			respondError(c, response.CodeBadRequest, "Checkout token does not match summary", nil)
		case errors.Is(err, service.ErrInvalidCard):
			respondError(c, response.CodeBadRequest, "Invalid card details", nil)
		case errors.Is(err, service.ErrCartEmpty):
			respondError(c, response.CodeBadRequest, "Cart is empty", nil)
		case errors.Is(err, service.ErrProductNotAvailable):
			respondError(c, response.CodeBadRequest, "Product not available", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "User not found", nil)
		default:
			respondError(c, response.CodeInternal, "Checkout failed", err)
		}
		return
	}

	response.Success(c, order)
}

// GetCheckoutConfirmation returns the committed order for the receipt page.
func (h *Handler) GetCheckoutConfirmation(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	orderNo := c.Param("order_no")
	order, err := h.CheckoutService.GetConfirmation(uid, orderNo)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "Order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "Failed to load order", err)
		return
	}

	response.Success(c, order)
}
