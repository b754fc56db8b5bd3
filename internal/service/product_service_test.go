package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupProductServiceTest(t *testing.T) *ProductService {
	t.Helper()
	dsn := fmt.Sprintf("file:product_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewProductService(repository.NewProductRepository(db))
}

func TestCreateProductAssignsCode(t *testing.T) {
	svc := setupProductServiceTest(t)

	first, err := svc.CreateProduct(ProductInput{
		Name:     "Hydra Boost Moisturizer",
		Category: "moisturizer",
		Price:    "39.90",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if first.Code != "P001" {
		t.Errorf("code want P001 got %s", first.Code)
	}

	second, err := svc.CreateProduct(ProductInput{
		Name:     "Glow Serum",
		Category: "serum",
		Price:    "59.00",
	})
	if err != nil {
		t.Fatalf("create second failed: %v", err)
	}
	if second.Code != "P002" {
		t.Errorf("code want P002 got %s", second.Code)
	}

	if _, err := svc.CreateProduct(ProductInput{
		Code:     "P001",
		Name:     "Duplicate",
		Category: "serum",
		Price:    "10.00",
	}); err != ErrProductCodeExists {
		t.Fatalf("expected ErrProductCodeExists, got %v", err)
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc := setupProductServiceTest(t)

	if _, err := svc.CreateProduct(ProductInput{Name: "", Category: "serum", Price: "10.00"}); err != ErrProductNotAvailable {
		t.Fatalf("empty name must fail, got %v", err)
	}
	if _, err := svc.CreateProduct(ProductInput{Name: "X", Category: "haircare", Price: "10.00"}); err != ErrProductNotAvailable {
		t.Fatalf("unknown category must fail, got %v", err)
	}
	if _, err := svc.CreateProduct(ProductInput{Name: "X", Category: "serum", Price: "-1"}); err != ErrProductNotAvailable {
		t.Fatalf("negative price must fail, got %v", err)
	}
}

func TestProductTagFiltering(t *testing.T) {
	svc := setupProductServiceTest(t)

	product, err := svc.CreateProduct(ProductInput{
		Name:              "Clear Skin Gel",
		Category:          "acne",
		Price:             "25.00",
		TargetSkinTypes:   []string{"oily", "Oily", "Martian"},
		ActiveIngredients: []string{"salicylic acid", "Snake Oil"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if len(product.TargetSkinTypes) != 1 || product.TargetSkinTypes[0] != "Oily" {
		t.Errorf("skin types must dedupe and canonicalize, got %v", product.TargetSkinTypes)
	}
	if len(product.ActiveIngredients) != 1 || product.ActiveIngredients[0] != "Salicylic Acid" {
		t.Errorf("ingredients must filter to the known set, got %v", product.ActiveIngredients)
	}
}

func TestUpdateAndDeactivateProduct(t *testing.T) {
	svc := setupProductServiceTest(t)

	product, err := svc.CreateProduct(ProductInput{
		Name:     "Hydra Boost Moisturizer",
		Category: "moisturizer",
		Price:    "39.90",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	inactive := false
	updated, err := svc.UpdateProduct(product.ID, ProductInput{
		Price:    "34.90",
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := updated.Price.String(); got != "34.90" {
		t.Errorf("price want 34.90 got %s", got)
	}
	if updated.IsActive {
		t.Error("product must be inactive")
	}

	if _, err := svc.GetActiveProduct(product.ID); err != ErrNotFound {
		t.Fatalf("inactive product must hide from the storefront, got %v", err)
	}
	if _, err := svc.GetProduct(product.ID); err != nil {
		t.Fatalf("back office must still see it: %v", err)
	}
}
