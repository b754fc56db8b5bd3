package public

import (
	"errors"
	"strconv"

	"github.com/smartskincare/api/internal/http/response"
	"github.com/smartskincare/api/internal/repository"
	"github.com/smartskincare/api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetProducts lists active catalog products.
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	products, total, err := h.ProductService.ListProducts(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		Category:   c.Query("category"),
		Search:     c.Query("search"),
		OnlyActive: true,
		SortBy:     c.Query("sort_by"),
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

// GetProduct returns one active product.
func (h *Handler) GetProduct(c *gin.Context) {
	rawID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || rawID == 0 {
		respondError(c, response.CodeBadRequest, "Invalid product id", nil)
		return
	}

	product, err := h.ProductService.GetActiveProduct(uint(rawID))
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

// GetCategories returns the fixed product categories.
func (h *Handler) GetCategories(c *gin.Context) {
	response.Success(c, h.ProductService.Categories())
}
