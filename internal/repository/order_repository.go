package repository

import (
	"errors"

	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicateCheckoutToken reports an order insert that collided with an
// already-committed checkout token.
var ErrDuplicateCheckoutToken = errors.New("checkout token already used")

// OrderRepository is the order data access interface.
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	GetByOrderNoAndUser(orderNo string, userID uint) (*models.Order, error)
	GetByCheckoutToken(token string) (*models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	Count() (int64, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	MonthlySales(months int) ([]MonthlySalesRow, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// MonthlySalesRow is one month of revenue from non-cancelled orders.
type MonthlySalesRow struct {
	Month   string  // YYYY-MM
	Orders  int64
	Revenue float64
}

// GormOrderRepository is the GORM implementation.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository builds an order repository.
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create inserts the order and its items. A duplicate checkout token is
// surfaced as ErrDuplicateCheckoutToken.
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Create(order).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCheckoutToken
		}
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches an order with items. Returns (nil, nil) when missing.
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo fetches an order by its number.
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNoAndUser fetches a member's own order by number.
func (r *GormOrderRepository) GetByOrderNoAndUser(orderNo string, userID uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Where("order_no = ? AND user_id = ?", orderNo, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByCheckoutToken fetches an order by its idempotency token.
func (r *GormOrderRepository) GetByCheckoutToken(token string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Where("checkout_token = ?", token).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByUser returns a member's orders.
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	query := r.db.Model(&models.Order{}).Where("user_id = ?", filter.UserID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no LIKE ?", "%"+filter.OrderNo+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Preload("Items").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListAdmin returns orders for the back office.
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	query := r.db.Model(&models.Order{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Preload("Items").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Count counts all orders.
func (r *GormOrderRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateStatus rewrites the order status plus any companion columns.
func (r *GormOrderRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// MonthlySales aggregates revenue per month over the trailing window,
// excluding cancelled orders.
func (r *GormOrderRepository) MonthlySales(months int) ([]MonthlySalesRow, error) {
	if months <= 0 {
		months = 12
	}
	rows := make([]MonthlySalesRow, 0)
	monthExpr := "CAST(strftime('%Y-%m', created_at) AS TEXT)"
	if r.db.Dialector.Name() == "postgres" {
		monthExpr = "to_char(created_at, 'YYYY-MM')"
	}
	if err := r.db.Model(&models.Order{}).
		Select(monthExpr+" as month, COUNT(*) as orders, COALESCE(SUM(total_amount), 0) as revenue").
		Where("status <> ?", constants.OrderStatusCancelled).
		Group(monthExpr).
		Order("month desc").
		Limit(months).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
