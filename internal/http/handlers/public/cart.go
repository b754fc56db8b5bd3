package public

import (
	"errors"
	"strconv"

	"github.com/smartskincare/api/internal/http/response"
	"github.com/smartskincare/api/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest puts a product in the cart.
type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// SetCartQuantityRequest sets an absolute line quantity.
type SetCartQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCartItem):
		respondError(c, response.CodeBadRequest, "Invalid cart item", nil)
	case errors.Is(err, service.ErrProductNotAvailable):
		respondError(c, response.CodeBadRequest, "Product not available", nil)
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, "Cart item not found", nil)
	default:
		respondError(c, response.CodeInternal, "Cart update failed", err)
	}
}

func cartProductIDParam(c *gin.Context) (uint, bool) {
	rawID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || rawID == 0 {
		respondError(c, response.CodeBadRequest, "Invalid cart item", nil)
		return 0, false
	}
	return uint(rawID), true
}

// GetCart returns the priced cart with totals.
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	view, err := h.CartService.GetCart(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "Failed to load cart", err)
		return
	}

	response.Success(c, view)
}

// AddCartItem adds a product to the cart, stacking onto an existing line.
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	if err := h.CartService.AddItem(uid, req.ProductID, req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"added": true})
}

// IncrementCartItem bumps a line quantity by one.
func (h *Handler) IncrementCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := cartProductIDParam(c)
	if !ok {
		return
	}

	if err := h.CartService.IncrementItem(uid, productID); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// DecrementCartItem lowers a line quantity. Quantity never drops below one.
func (h *Handler) DecrementCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := cartProductIDParam(c)
	if !ok {
		return
	}

	if err := h.CartService.DecrementItem(uid, productID); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// SetCartItemQuantity sets an absolute line quantity.
func (h *Handler) SetCartItemQuantity(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := cartProductIDParam(c)
	if !ok {
		return
	}

	var req SetCartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	if err := h.CartService.SetQuantity(uid, productID, req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// DeleteCartItem removes one line.
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, ok := cartProductIDParam(c)
	if !ok {
		return
	}

	if err := h.CartService.RemoveItem(uid, productID); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	if err := h.CartService.Clear(uid); err != nil {
		respondError(c, response.CodeInternal, "Cart update failed", err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
