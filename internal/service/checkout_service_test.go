package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/smartskincare/api/internal/config"
	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/queue"
	"github.com/smartskincare/api/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCheckoutServiceTest(t *testing.T) (*CheckoutService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:checkout_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	// The payment commit runs inside models.DB.Transaction.
	models.DB = db

	cfg := &config.Config{Checkout: testCheckoutConfig()}
	queueClient, err := queue.NewClient(nil) // disabled, enqueues are no-ops
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}
	svc := NewCheckoutService(
		cfg,
		repository.NewCartRepository(db),
		repository.NewProductRepository(db),
		repository.NewOrderRepository(db),
		repository.NewUserRepository(db),
		queueClient,
	)
	return svc, db
}

func seedMemberWithCart(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		Username:         "aina",
		Email:            "aina@example.com",
		PasswordHash:     "x",
		MembershipStatus: constants.MembershipStatusActive,
		Address:          "12 Jalan Melur",
		City:             "Kuala Lumpur",
		PostalCode:       "50480",
		Country:          "Malaysia",
		CardHolder:       "Aina Binti Ahmad",
		CardNumber:       "4111111111111111",
		CardExpiry:       "12/27",
		CardCVV:          "123",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	moisturizer := seedProduct(t, db, "P001", "Hydra Boost Moisturizer", "10.00")
	serum := seedProduct(t, db, "P002", "Glow Serum", "5.00")
	lines := []models.CartItem{
		{UserID: user.ID, ProductID: moisturizer.ID, Quantity: 2},
		{UserID: user.ID, ProductID: serum.ID, Quantity: 1},
	}
	if err := db.Create(&lines).Error; err != nil {
		t.Fatalf("seed cart failed: %v", err)
	}
	return &user
}

func TestCheckoutConfirmPaymentCommitsOnce(t *testing.T) {
	svc, db := setupCheckoutServiceTest(t)
	user := seedMemberWithCart(t, db)
	ctx := context.Background()

	token := "tok-checkout-1"
	input := ConfirmPaymentInput{UserID: user.ID, Token: token}

	order, err := svc.ConfirmPayment(ctx, input)
	if err != nil {
		t.Fatalf("confirm payment failed: %v", err)
	}
	if order.Status != constants.OrderStatusPaid {
		t.Errorf("status want Paid got %s", order.Status)
	}
	if order.Currency != constants.SiteCurrency {
		t.Errorf("currency want MYR got %s", order.Currency)
	}
	if !strings.HasPrefix(order.OrderNo, "SSC") {
		t.Errorf("order no must carry SSC prefix, got %s", order.OrderNo)
	}
	if got := order.TotalAmount.String(); got != "32.40" {
		t.Errorf("total want 32.40 got %s", got)
	}
	if order.ShipCity != "Kuala Lumpur" {
		t.Errorf("shipping snapshot missing, got %q", order.ShipCity)
	}
	if len(order.Items) != 2 {
		t.Errorf("want 2 order items got %d", len(order.Items))
	}

	// The cart is cleared in the same transaction.
	var cartCount int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&cartCount).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if cartCount != 0 {
		t.Fatalf("cart must be empty after payment, got %d lines", cartCount)
	}

	// A replayed confirmation returns the same order, not a twin.
	replay, err := svc.ConfirmPayment(ctx, input)
	if err != nil {
		t.Fatalf("replayed confirm failed: %v", err)
	}
	if replay.OrderNo != order.OrderNo {
		t.Fatalf("replay must return original order, got %s vs %s", replay.OrderNo, order.OrderNo)
	}

	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 1 {
		t.Fatalf("want exactly 1 order got %d", orderCount)
	}
}

func TestCheckoutConfirmPaymentRequiresCard(t *testing.T) {
	svc, db := setupCheckoutServiceTest(t)
	user := seedMemberWithCart(t, db)
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("card_number", "").Error; err != nil {
		t.Fatalf("clear card failed: %v", err)
	}

	_, err := svc.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		UserID: user.ID,
		Token:  "tok-no-card",
	})
	if err != ErrInvalidCard {
		t.Fatalf("expected ErrInvalidCard without card on file, got %v", err)
	}

	// Supplying valid card details inline works without one on file.
	order, err := svc.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		UserID:     user.ID,
		Token:      "tok-inline-card",
		CardHolder: "Aina Binti Ahmad",
		CardNumber: "4111 1111 1111 1111",
		CardExpiry: "11/28",
		CardCVV:    "456",
	})
	if err != nil {
		t.Fatalf("confirm with inline card failed: %v", err)
	}
	if order == nil || order.Status != constants.OrderStatusPaid {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestCheckoutConfirmPaymentEmptyCart(t *testing.T) {
	svc, db := setupCheckoutServiceTest(t)
	user := seedMemberWithCart(t, db)
	if err := db.Where("user_id = ?", user.ID).Delete(&models.CartItem{}).Error; err != nil {
		t.Fatalf("clear cart failed: %v", err)
	}

	_, err := svc.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		UserID: user.ID,
		Token:  "tok-empty",
	})
	if err != ErrCartEmpty {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestCheckoutTotalsFrozenOnOrder(t *testing.T) {
	svc, db := setupCheckoutServiceTest(t)
	user := seedMemberWithCart(t, db)

	order, err := svc.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		UserID: user.ID,
		Token:  "tok-freeze",
	})
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	// Repricing the catalog must not touch the committed order.
	if err := db.Model(&models.Product{}).Where("code = ?", "P001").
		Update("price", decimal.RequireFromString("99.00")).Error; err != nil {
		t.Fatalf("reprice failed: %v", err)
	}

	stored, err := svc.GetConfirmation(user.ID, order.OrderNo)
	if err != nil {
		t.Fatalf("get confirmation failed: %v", err)
	}
	if got := stored.TotalAmount.String(); got != "32.40" {
		t.Fatalf("committed total must stay 32.40, got %s", got)
	}
	if got := stored.Subtotal.String(); got != "25.00" {
		t.Fatalf("committed subtotal must stay 25.00, got %s", got)
	}
}
