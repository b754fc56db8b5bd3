package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewOrderService(repository.NewOrderRepository(db)), db
}

func seedOrder(t *testing.T, db *gorm.DB, status string) models.Order {
	t.Helper()
	now := time.Now()
	order := models.Order{
		OrderNo:       generateOrderNo(),
		CheckoutToken: fmt.Sprintf("tok-%d", time.Now().UnixNano()),
		UserID:        1,
		Status:        status,
		Currency:      constants.SiteCurrency,
		TotalAmount:   models.NewMoneyFromDecimal(decimal.RequireFromString("32.40")),
		PaidAt:        &now,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	return order
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		current string
		target  string
		allowed bool
	}{
		{constants.OrderStatusPaid, constants.OrderStatusShipped, true},
		{constants.OrderStatusPaid, constants.OrderStatusCancelled, true},
		{constants.OrderStatusPaid, constants.OrderStatusDelivered, false},
		{constants.OrderStatusShipped, constants.OrderStatusDelivered, true},
		{constants.OrderStatusShipped, constants.OrderStatusCancelled, true},
		{constants.OrderStatusShipped, constants.OrderStatusPaid, false},
		{constants.OrderStatusDelivered, constants.OrderStatusShipped, false},
		{constants.OrderStatusDelivered, constants.OrderStatusCancelled, false},
		{constants.OrderStatusCancelled, constants.OrderStatusPaid, false},
		{constants.OrderStatusPaid, constants.OrderStatusPaid, true}, // no-op
	}

	for _, tc := range cases {
		if got := isTransitionAllowed(tc.current, tc.target); got != tc.allowed {
			t.Errorf("%s -> %s: want %v got %v", tc.current, tc.target, tc.allowed, got)
		}
	}
}

func TestOrderUpdateStatus(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	order := seedOrder(t, db, constants.OrderStatusPaid)

	updated, err := svc.UpdateStatus(order.ID, constants.OrderStatusShipped)
	if err != nil {
		t.Fatalf("update to Shipped failed: %v", err)
	}
	if updated.Status != constants.OrderStatusShipped {
		t.Fatalf("status want Shipped got %s", updated.Status)
	}

	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusPaid); err != ErrOrderStatusInvalid {
		t.Fatalf("expected ErrOrderStatusInvalid going backwards, got %v", err)
	}

	delivered, err := svc.UpdateStatus(order.ID, constants.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("update to Delivered failed: %v", err)
	}
	if delivered.Status != constants.OrderStatusDelivered {
		t.Fatalf("status want Delivered got %s", delivered.Status)
	}

	if _, err := svc.UpdateStatus(order.ID, constants.OrderStatusCancelled); err != ErrOrderStatusInvalid {
		t.Fatalf("Delivered is terminal, got %v", err)
	}
}

func TestGenerateOrderNo(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		no := generateOrderNo()
		if !strings.HasPrefix(no, "SSC") {
			t.Fatalf("order no must carry SSC prefix, got %s", no)
		}
		if len(no) != len("SSC")+14+6 {
			t.Fatalf("unexpected order no length: %s", no)
		}
		if seen[no] {
			t.Fatalf("duplicate order no generated: %s", no)
		}
		seen[no] = true
	}
}

func TestGetUserOrderScoping(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	order := seedOrder(t, db, constants.OrderStatusPaid)

	got, err := svc.GetUserOrder(order.OrderNo, 1)
	if err != nil {
		t.Fatalf("get own order failed: %v", err)
	}
	if got.OrderNo != order.OrderNo {
		t.Fatalf("unexpected order: %s", got.OrderNo)
	}

	if _, err := svc.GetUserOrder(order.OrderNo, 2); err != ErrNotFound {
		t.Fatalf("other member must not see the order, got %v", err)
	}
}
