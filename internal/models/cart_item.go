package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem is one line of a member's cart. One row per (user, product).
type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uint           `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  int            `gorm:"not null" json:"quantity"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName sets the table name.
func (CartItem) TableName() string {
	return "cart_items"
}
