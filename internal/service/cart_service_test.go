package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/smartskincare/api/internal/config"
	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func testCheckoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		SummaryExpireMinutes: 30,
		TaxRatePercent:       "6",
		FreeShippingMinimum:  "50.00",
		ShippingFee:          "5.90",
	}
}

func setupCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.CartItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	cfg := &config.Config{Checkout: testCheckoutConfig()}
	svc := NewCartService(cfg, repository.NewCartRepository(db), repository.NewProductRepository(db))
	return svc, db
}

func seedProduct(t *testing.T, db *gorm.DB, code, name, price string) models.Product {
	t.Helper()
	product := models.Product{
		Code:     code,
		Name:     name,
		Category: "moisturizer",
		Price:    models.NewMoneyFromDecimal(decimal.RequireFromString(price)),
		IsActive: true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product %s failed: %v", code, err)
	}
	return product
}

func TestCartTotals(t *testing.T) {
	svc, db := setupCartServiceTest(t)

	moisturizer := seedProduct(t, db, "P001", "Hydra Boost Moisturizer", "10.00")
	serum := seedProduct(t, db, "P002", "Glow Serum", "5.00")

	if err := svc.AddItem(1, moisturizer.ID, 2); err != nil {
		t.Fatalf("add moisturizer failed: %v", err)
	}
	if err := svc.AddItem(1, serum.ID, 1); err != nil {
		t.Fatalf("add serum failed: %v", err)
	}

	view, err := svc.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}

	if got := view.Totals.Subtotal.String(); got != "25.00" {
		t.Errorf("subtotal want 25.00 got %s", got)
	}
	if got := view.Totals.TaxAmount.String(); got != "1.50" {
		t.Errorf("tax want 1.50 got %s", got)
	}
	if got := view.Totals.ShippingFee.String(); got != "5.90" {
		t.Errorf("shipping want 5.90 got %s", got)
	}
	if got := view.Totals.GrandTotal.String(); got != "32.40" {
		t.Errorf("grand total want 32.40 got %s", got)
	}
}

func TestCartFreeShippingBoundary(t *testing.T) {
	cfg := testCheckoutConfig()

	line := func(amount string) []CartLine {
		d := decimal.RequireFromString(amount)
		return []CartLine{{
			UnitPrice:  models.NewMoneyFromDecimal(d),
			Quantity:   1,
			TotalPrice: models.NewMoneyFromDecimal(d),
		}}
	}

	// The waiver keys on subtotal plus tax. 47.17 + 6% tax lands on
	// exactly 50.00, the last free-shipping point.
	atThreshold := computeCartTotals(cfg, line("47.17"))
	if got := atThreshold.TaxAmount.String(); got != "2.83" {
		t.Errorf("tax on RM47.17 want 2.83 got %s", got)
	}
	if got := atThreshold.ShippingFee.String(); got != "0.00" {
		t.Errorf("shipping at pre-shipping RM50.00 want 0.00 got %s", got)
	}
	if got := atThreshold.GrandTotal.String(); got != "50.00" {
		t.Errorf("grand total at threshold want 50.00 got %s", got)
	}

	below := computeCartTotals(cfg, line("47.16"))
	if got := below.ShippingFee.String(); got != "5.90" {
		t.Errorf("shipping at pre-shipping RM49.99 want 5.90 got %s", got)
	}
	if got := below.GrandTotal.String(); got != "55.89" {
		t.Errorf("grand total below threshold want 55.89 got %s", got)
	}

	// A bare subtotal below 50 still ships free once tax lifts it over.
	liftedByTax := computeCartTotals(cfg, line("49.99"))
	if got := liftedByTax.ShippingFee.String(); got != "0.00" {
		t.Errorf("shipping at RM49.99 subtotal (RM52.99 with tax) want 0.00 got %s", got)
	}

	empty := computeCartTotals(cfg, nil)
	if got := empty.ShippingFee.String(); got != "0.00" {
		t.Errorf("shipping on empty cart want 0.00 got %s", got)
	}
	if got := empty.GrandTotal.String(); got != "0.00" {
		t.Errorf("grand total on empty cart want 0.00 got %s", got)
	}
}

func TestCartAddItemMergesLines(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := seedProduct(t, db, "P001", "Hydra Boost Moisturizer", "10.00")

	if err := svc.AddItem(1, product.ID, 1); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := svc.AddItem(1, product.ID, 2); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	view, err := svc.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("want single line got %d", len(view.Items))
	}
	if view.Items[0].Quantity != 3 {
		t.Errorf("quantity want 3 got %d", view.Items[0].Quantity)
	}
}

func TestCartDecrementFloor(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := seedProduct(t, db, "P001", "Hydra Boost Moisturizer", "10.00")

	if err := svc.AddItem(1, product.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// Decrement at quantity 1 is a no-op; the line stays.
	if err := svc.DecrementItem(1, product.ID); err != nil {
		t.Fatalf("decrement at floor failed: %v", err)
	}

	view, err := svc.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 1 {
		t.Fatalf("expected line to remain at quantity 1, got %+v", view.Items)
	}

	if err := svc.RemoveItem(1, product.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	view, err = svc.GetCart(1)
	if err != nil {
		t.Fatalf("get cart after remove failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart after remove, got %d lines", len(view.Items))
	}
}

func TestCartRejectsInactiveProduct(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := seedProduct(t, db, "P001", "Hydra Boost Moisturizer", "10.00")
	if err := db.Model(&product).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	if err := svc.AddItem(1, product.ID, 1); err != ErrProductNotAvailable {
		t.Fatalf("expected ErrProductNotAvailable, got %v", err)
	}
}
