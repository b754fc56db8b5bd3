package service

import (
	"fmt"
	"strings"

	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService manages the catalog.
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService builds the product service.
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// ListProducts returns catalog entries matching the filter. Storefront
// callers set OnlyActive.
func (s *ProductService) ListProducts(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.productRepo.List(filter)
}

// GetProduct fetches one catalog entry.
func (s *ProductService) GetProduct(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// GetActiveProduct fetches a product visible to the storefront.
func (s *ProductService) GetActiveProduct(id uint) (*models.Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrNotFound
	}
	return product, nil
}

// ProductInput carries a catalog create or update.
type ProductInput struct {
	Code              string
	Name              string
	Category          string
	Description       string
	Price             string
	ImageURL          string
	TargetSkinTypes   []string
	ActiveIngredients []string
	IsActive          *bool
	SortOrder         *int
}

// CreateProduct adds a catalog entry. An empty code is assigned the next
// sequential one.
func (s *ProductService) CreateProduct(input ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProductNotAvailable
	}
	category, err := normalizeCategory(input.Category)
	if err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(strings.TrimSpace(input.Price))
	if err != nil || price.IsNegative() {
		return nil, ErrProductNotAvailable
	}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		code, err = s.nextProductCode()
		if err != nil {
			return nil, err
		}
	} else {
		existing, err := s.productRepo.GetByCode(code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrProductCodeExists
		}
	}

	product := &models.Product{
		Code:              code,
		Name:              name,
		Category:          category,
		Description:       strings.TrimSpace(input.Description),
		Price:             models.NewMoneyFromDecimal(price),
		ImageURL:          strings.TrimSpace(input.ImageURL),
		TargetSkinTypes:   filterTags(input.TargetSkinTypes, constants.ProductSkinTypes),
		ActiveIngredients: filterTags(input.ActiveIngredients, constants.ProductActiveIngredients),
		IsActive:          true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.SortOrder != nil {
		product.SortOrder = *input.SortOrder
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct edits a catalog entry. Empty fields keep their value.
func (s *ProductService) UpdateProduct(id uint, input ProductInput) (*models.Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		product.Name = name
	}
	if strings.TrimSpace(input.Category) != "" {
		category, err := normalizeCategory(input.Category)
		if err != nil {
			return nil, err
		}
		product.Category = category
	}
	if strings.TrimSpace(input.Description) != "" {
		product.Description = strings.TrimSpace(input.Description)
	}
	if raw := strings.TrimSpace(input.Price); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil || price.IsNegative() {
			return nil, ErrProductNotAvailable
		}
		product.Price = models.NewMoneyFromDecimal(price)
	}
	if url := strings.TrimSpace(input.ImageURL); url != "" {
		product.ImageURL = url
	}
	if input.TargetSkinTypes != nil {
		product.TargetSkinTypes = filterTags(input.TargetSkinTypes, constants.ProductSkinTypes)
	}
	if input.ActiveIngredients != nil {
		product.ActiveIngredients = filterTags(input.ActiveIngredients, constants.ProductActiveIngredients)
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.SortOrder != nil {
		product.SortOrder = *input.SortOrder
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a catalog entry.
func (s *ProductService) DeleteProduct(id uint) error {
	if _, err := s.GetProduct(id); err != nil {
		return err
	}
	return s.productRepo.Delete(id)
}

// Categories lists the valid catalog categories.
func (s *ProductService) Categories() []string {
	return constants.ProductCategories
}

// nextProductCode scans for a free P-prefixed sequential code.
func (s *ProductService) nextProductCode() (string, error) {
	count, err := s.productRepo.Count()
	if err != nil {
		return "", err
	}
	for candidate := count + 1; ; candidate++ {
		code := fmt.Sprintf("P%03d", candidate)
		existing, err := s.productRepo.GetByCode(code)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return code, nil
		}
	}
}

func normalizeCategory(category string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(category))
	for _, c := range constants.ProductCategories {
		if c == normalized {
			return normalized, nil
		}
	}
	return "", ErrProductNotAvailable
}

// filterTags keeps only values from the allowed set, preserving order
// and dropping duplicates.
func filterTags(tags, allowed []string) []string {
	if tags == nil {
		return nil
	}
	allowedSet := make(map[string]string, len(allowed))
	for _, a := range allowed {
		allowedSet[strings.ToLower(a)] = a
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		key := strings.ToLower(strings.TrimSpace(tag))
		canonical, ok := allowedSet[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, canonical)
	}
	return out
}
