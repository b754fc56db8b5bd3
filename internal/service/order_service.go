package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/repository"
)

// OrderService answers order queries and drives the fulfilment status
// machine. Orders are created by the checkout service; amounts are
// frozen there and never change here.
type OrderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService builds the order service.
func NewOrderService(orderRepo repository.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

// allowedTransitions is the fulfilment status machine. Orders enter at
// Paid; Delivered and Cancelled are terminal.
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPaid: {
		constants.OrderStatusShipped:   true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
		constants.OrderStatusCancelled: true,
	},
}

// ListUserOrders returns a member's order history.
func (s *OrderService) ListUserOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.UserID == 0 {
		return nil, 0, ErrNotFound
	}
	return s.orderRepo.ListByUser(filter)
}

// GetUserOrder fetches one of the member's own orders.
func (s *OrderService) GetUserOrder(orderNo string, userID uint) (*models.Order, error) {
	if strings.TrimSpace(orderNo) == "" || userID == 0 {
		return nil, ErrNotFound
	}
	order, err := s.orderRepo.GetByOrderNoAndUser(orderNo, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return order, nil
}

// ListAdminOrders returns orders for the back office.
func (s *OrderService) ListAdminOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// GetOrderByNo fetches any order by number.
func (s *OrderService) GetOrderByNo(orderNo string) (*models.Order, error) {
	if strings.TrimSpace(orderNo) == "" {
		return nil, ErrNotFound
	}
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return order, nil
}

// UpdateStatus advances an order through the fulfilment machine.
func (s *OrderService) UpdateStatus(orderID uint, target string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}

	target = strings.TrimSpace(target)
	if !isTransitionAllowed(order.Status, target) {
		return nil, ErrOrderStatusInvalid
	}
	if order.Status == target {
		return order, nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"updated_at": now,
	}
	if err := s.orderRepo.UpdateStatus(order.ID, target, updates); err != nil {
		return nil, ErrOrderUpdateFailed
	}

	order.Status = target
	order.UpdatedAt = now
	return order, nil
}

// isTransitionAllowed checks the status machine. A no-op transition onto
// the current status is allowed.
func isTransitionAllowed(current, target string) bool {
	if current == target {
		return true
	}
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	randPart := randNumeric(6)
	return fmt.Sprintf("SSC%s%s", now, randPart)
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
