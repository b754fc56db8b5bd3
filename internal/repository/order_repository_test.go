package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOrderRepositoryTest(t *testing.T) (*GormOrderRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewOrderRepository(db), db
}

func testOrder(orderNo, token string, userID uint, total string) models.Order {
	now := time.Now()
	return models.Order{
		OrderNo:       orderNo,
		CheckoutToken: token,
		UserID:        userID,
		Status:        constants.OrderStatusPaid,
		Currency:      constants.SiteCurrency,
		Subtotal:      models.NewMoneyFromDecimal(decimal.RequireFromString(total)),
		TotalAmount:   models.NewMoneyFromDecimal(decimal.RequireFromString(total)),
		PaidAt:        &now,
	}
}

func TestOrderRepositoryCreateRejectsDuplicateToken(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)

	first := testOrder("SSC1001", "tok-aaa", 1, "32.40")
	items := []models.OrderItem{
		{ProductID: 1, ProductName: "Hydra Boost Moisturizer", Quantity: 2,
			UnitPrice:  models.NewMoneyFromDecimal(decimal.RequireFromString("10.00")),
			TotalPrice: models.NewMoneyFromDecimal(decimal.RequireFromString("20.00"))},
	}
	if err := repo.Create(&first, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	twin := testOrder("SSC1002", "tok-aaa", 1, "32.40")
	if err := repo.Create(&twin, nil); !errors.Is(err, ErrDuplicateCheckoutToken) {
		t.Fatalf("expected ErrDuplicateCheckoutToken, got %v", err)
	}

	existing, err := repo.GetByCheckoutToken("tok-aaa")
	if err != nil {
		t.Fatalf("get by token failed: %v", err)
	}
	if existing == nil || existing.OrderNo != "SSC1001" {
		t.Fatalf("expected original order for token, got %+v", existing)
	}
	if len(existing.Items) != 1 {
		t.Fatalf("expected items preloaded, got %d", len(existing.Items))
	}
}

func TestOrderRepositoryListAndStatus(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)

	orders := []models.Order{
		testOrder("SSC2001", "tok-1", 1, "20.00"),
		testOrder("SSC2002", "tok-2", 1, "30.00"),
		testOrder("SSC2003", "tok-3", 2, "40.00"),
	}
	for i := range orders {
		if err := repo.Create(&orders[i], nil); err != nil {
			t.Fatalf("seed order %d failed: %v", i, err)
		}
	}

	rows, total, err := repo.ListByUser(OrderListFilter{UserID: 1, Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("list by user want 2 got total=%d rows=%d", total, len(rows))
	}

	if err := repo.UpdateStatus(orders[0].ID, constants.OrderStatusShipped, nil); err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	updated, err := repo.GetByID(orders[0].ID)
	if err != nil {
		t.Fatalf("get updated failed: %v", err)
	}
	if updated.Status != constants.OrderStatusShipped {
		t.Fatalf("status want Shipped got %s", updated.Status)
	}
	if !updated.TotalAmount.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("total must not change on status update, got %s", updated.TotalAmount)
	}

	shipped, total, err := repo.ListAdmin(OrderListFilter{Status: constants.OrderStatusShipped, Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if total != 1 || shipped[0].OrderNo != "SSC2001" {
		t.Fatalf("admin list by status unexpected: total=%d", total)
	}
}

func TestOrderRepositoryMonthlySalesExcludesCancelled(t *testing.T) {
	repo, db := setupOrderRepositoryTest(t)

	kept := testOrder("SSC3001", "tok-10", 1, "50.00")
	cancelled := testOrder("SSC3002", "tok-11", 1, "99.00")
	cancelled.Status = constants.OrderStatusCancelled
	if err := repo.Create(&kept, nil); err != nil {
		t.Fatalf("seed kept failed: %v", err)
	}
	if err := repo.Create(&cancelled, nil); err != nil {
		t.Fatalf("seed cancelled failed: %v", err)
	}
	_ = db

	rows, err := repo.MonthlySales(12)
	if err != nil {
		t.Fatalf("monthly sales failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("want 1 month row got %d", len(rows))
	}
	if rows[0].Orders != 1 || rows[0].Revenue != 50.00 {
		t.Fatalf("unexpected aggregate: %+v", rows[0])
	}
}
