package admin

import (
	"errors"
	"strconv"

	"github.com/smartskincare/api/internal/http/response"
	"github.com/smartskincare/api/internal/repository"
	"github.com/smartskincare/api/internal/service"

	"github.com/gin-gonic/gin"
)

func productIDParam(c *gin.Context) (uint, bool) {
	rawID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || rawID == 0 {
		respondError(c, response.CodeBadRequest, "Invalid product id", nil)
		return 0, false
	}
	return uint(rawID), true
}

// GetAdminProducts lists catalog products, inactive ones included.
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	products, total, err := h.ProductService.ListProducts(repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Category: c.Query("category"),
		Search:   c.Query("search"),
		SortBy:   c.Query("sort_by"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "Failed to load products", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, products, pagination)
}

// GetAdminProduct returns one product regardless of active state.
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}

	product, err := h.ProductService.GetProduct(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "Product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "Failed to load product", err)
		return
	}

	response.Success(c, product)
}

// ProductRequest is the create/update payload.
type ProductRequest struct {
	Code              string   `json:"code"`
	Name              string   `json:"name" binding:"required"`
	Category          string   `json:"category" binding:"required"`
	Description       string   `json:"description"`
	Price             string   `json:"price" binding:"required"`
	ImageURL          string   `json:"image_url"`
	TargetSkinTypes   []string `json:"target_skin_types"`
	ActiveIngredients []string `json:"active_ingredients"`
	IsActive          *bool    `json:"is_active"`
	SortOrder         *int     `json:"sort_order"`
}

func (r ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Code:              r.Code,
		Name:              r.Name,
		Category:          r.Category,
		Description:       r.Description,
		Price:             r.Price,
		ImageURL:          r.ImageURL,
		TargetSkinTypes:   r.TargetSkinTypes,
		ActiveIngredients: r.ActiveIngredients,
		IsActive:          r.IsActive,
		SortOrder:         r.SortOrder,
	}
}

func respondProductWriteError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, "Product not found", nil)
	case errors.Is(err, service.ErrProductCodeExists):
		respondError(c, response.CodeBadRequest, "Product code already exists", nil)
	case errors.Is(err, service.ErrProductNotAvailable):
		respondError(c, response.CodeBadRequest, "Invalid product fields", nil)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}

// CreateProduct adds a catalog entry.
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	product, err := h.ProductService.CreateProduct(req.toInput())
	if err != nil {
		respondProductWriteError(c, err, "Product create failed")
		return
	}

	response.Success(c, product)
}

// UpdateProduct rewrites a catalog entry.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	product, err := h.ProductService.UpdateProduct(id, req.toInput())
	if err != nil {
		respondProductWriteError(c, err, "Product update failed")
		return
	}

	response.Success(c, product)
}

// DeleteProduct soft-deletes a catalog entry.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := productIDParam(c)
	if !ok {
		return
	}

	if err := h.ProductService.DeleteProduct(id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "Product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "Product delete failed", err)
		return
	}

	response.Success(c, nil)
}

// GetAdminCategories returns the fixed product categories.
func (h *Handler) GetAdminCategories(c *gin.Context) {
	response.Success(c, h.ProductService.Categories())
}
