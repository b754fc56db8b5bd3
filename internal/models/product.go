package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a catalog entry.
type Product struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	Code              string         `gorm:"uniqueIndex;not null" json:"code"` // catalog code, e.g. P001
	Name              string         `gorm:"not null;index" json:"name"`
	Category          string         `gorm:"type:varchar(50);not null;index" json:"category"`
	Description       string         `gorm:"type:text" json:"description"`
	Price             Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`
	ImageURL          string         `gorm:"type:varchar(500)" json:"image_url"`
	TargetSkinTypes   StringArray    `gorm:"type:json" json:"target_skin_types"`
	ActiveIngredients StringArray    `gorm:"type:json" json:"active_ingredients"`
	IsActive          bool           `gorm:"default:true;index" json:"is_active"`
	SortOrder         int            `gorm:"default:0;index" json:"sort_order"`
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Product) TableName() string {
	return "products"
}
