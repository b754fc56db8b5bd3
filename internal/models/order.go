package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is a committed purchase. Amounts are frozen at commit time; only
// Status changes afterwards. CheckoutToken is the idempotency key: a
// resubmitted checkout hits the unique index instead of creating a twin.
type Order struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	OrderNo       string         `gorm:"uniqueIndex;not null" json:"order_no"`
	CheckoutToken string         `gorm:"uniqueIndex;not null" json:"-"`
	UserID        uint           `gorm:"index;not null" json:"user_id"`
	Status        string         `gorm:"index;not null" json:"status"`
	Currency      string         `gorm:"not null" json:"currency"`
	Subtotal      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`
	TaxAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`
	ShippingFee   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_fee"`
	TotalAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`

	// Shipping address snapshot taken from the profile at commit time.
	ShipAddress    string `gorm:"type:varchar(300)" json:"ship_address"`
	ShipCity       string `gorm:"type:varchar(100)" json:"ship_city"`
	ShipPostalCode string `gorm:"type:varchar(20)" json:"ship_postal_code"`
	ShipCountry    string `gorm:"type:varchar(100)" json:"ship_country"`

	PaidAt    *time.Time     `gorm:"index" json:"paid_at"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName sets the table name.
func (Order) TableName() string {
	return "orders"
}
