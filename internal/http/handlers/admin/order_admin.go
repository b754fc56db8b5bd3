package admin

import (
	"errors"
	"strconv"
	"time"

	"github.com/smartskincare/api/internal/http/response"
	"github.com/smartskincare/api/internal/logger"
	"github.com/smartskincare/api/internal/repository"
	"github.com/smartskincare/api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminOrders lists orders across all members.
func (h *Handler) GetAdminOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		OrderNo:  c.Query("order_no"),
	}
	if raw := c.Query("created_from"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			filter.CreatedFrom = &parsed
		}
	}
	if raw := c.Query("created_to"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			filter.CreatedTo = &parsed
		}
	}
	if rawUserID := c.Query("user_id"); rawUserID != "" {
		if userID, err := strconv.ParseUint(rawUserID, 10, 64); err == nil {
			filter.UserID = uint(userID)
		}
	}

	orders, total, err := h.OrderService.ListAdminOrders(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "Failed to load orders", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, orders, pagination)
}

// GetAdminOrder returns one order with its items.
func (h *Handler) GetAdminOrder(c *gin.Context) {
	order, err := h.OrderService.GetOrderByNo(c.Param("order_no"))
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

// UpdateOrderStatusRequest moves an order along its lifecycle.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus advances an order. Delivered and Cancelled are
// terminal; setting the current status again is a no-op.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	existing, err := h.OrderService.GetOrderByNo(c.Param("order_no"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "Order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "Failed to load order", err)
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	order, err := h.OrderService.UpdateStatus(existing.ID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "Order not found", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "Order status transition not allowed", nil)
		default:
			respondError(c, response.CodeInternal, "Order update failed", err)
		}
		return
	}

	logger.Infow("admin_order_status_updated",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"status", order.Status,
	)

	response.Success(c, order)
}
