package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/smartskincare/api/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCartRepositoryTest(t *testing.T) (*GormCartRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.CartItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewCartRepository(db), db
}

func TestCartRepositoryUpsertAndQuantity(t *testing.T) {
	repo, db := setupCartRepositoryTest(t)

	product := models.Product{
		Code:     "P001",
		Name:     "Hydra Boost Moisturizer",
		Category: "moisturizer",
		Price:    models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")),
		IsActive: true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}

	line := models.CartItem{UserID: 1, ProductID: product.ID, Quantity: 1}
	if err := repo.Upsert(&line); err != nil {
		t.Fatalf("upsert insert failed: %v", err)
	}

	line.Quantity = 3
	if err := repo.Upsert(&line); err != nil {
		t.Fatalf("upsert update failed: %v", err)
	}

	items, err := repo.ListByUser(1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("want single line per product, got %d", len(items))
	}
	if items[0].Quantity != 3 {
		t.Fatalf("quantity want 3 got %d", items[0].Quantity)
	}
	if items[0].Product == nil || items[0].Product.Name != "Hydra Boost Moisturizer" {
		t.Fatalf("expected product preloaded, got %+v", items[0].Product)
	}

	if err := repo.UpdateQuantity(1, product.ID, 2); err != nil {
		t.Fatalf("update quantity failed: %v", err)
	}
	got, err := repo.GetByUserAndProduct(1, product.ID)
	if err != nil {
		t.Fatalf("get line failed: %v", err)
	}
	if got.Quantity != 2 {
		t.Fatalf("quantity want 2 got %d", got.Quantity)
	}
}

func TestCartRepositoryClearByUser(t *testing.T) {
	repo, _ := setupCartRepositoryTest(t)

	lines := []models.CartItem{
		{UserID: 1, ProductID: 1, Quantity: 1},
		{UserID: 1, ProductID: 2, Quantity: 2},
		{UserID: 2, ProductID: 1, Quantity: 1},
	}
	for i := range lines {
		if err := repo.Upsert(&lines[i]); err != nil {
			t.Fatalf("seed line %d failed: %v", i, err)
		}
	}

	if err := repo.ClearByUser(1); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	mine, err := repo.ListByUser(1)
	if err != nil {
		t.Fatalf("list cleared failed: %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(mine))
	}

	theirs, err := repo.ListByUser(2)
	if err != nil {
		t.Fatalf("list other user failed: %v", err)
	}
	if len(theirs) != 1 {
		t.Fatalf("other user's cart must be untouched, got %d lines", len(theirs))
	}
}
