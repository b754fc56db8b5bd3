package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a storefront member account.
type User struct {
	ID                 uint       `gorm:"primarykey" json:"id"`
	Username           string     `gorm:"not null" json:"username"`
	Email              string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash       string     `gorm:"not null" json:"-"`
	Contact            string     `gorm:"type:varchar(20)" json:"contact"`
	MembershipStatus   string     `gorm:"default:'Active';index" json:"membership_status"`
	TokenVersion       uint64     `gorm:"not null;default:0" json:"-"`
	TokenInvalidBefore *time.Time `gorm:"index" json:"-"`

	// Shipping address
	Address    string `gorm:"type:varchar(300)" json:"address"`
	City       string `gorm:"type:varchar(100)" json:"city"`
	PostalCode string `gorm:"type:varchar(20)" json:"postal_code"`
	Country    string `gorm:"type:varchar(100)" json:"country"`

	// Billing card on file. Number and CVV never leave the server unmasked.
	CardHolder string `gorm:"type:varchar(120)" json:"-"`
	CardNumber string `gorm:"type:varchar(20)" json:"-"`
	CardExpiry string `gorm:"type:varchar(10)" json:"-"`
	CardCVV    string `gorm:"type:varchar(4)" json:"-"`

	LastLoginAt *time.Time     `json:"last_login_at"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (User) TableName() string {
	return "users"
}

// MaskedCardNumber returns the stored card number with all but the last
// four digits hidden. Empty when no card is on file.
func (u User) MaskedCardNumber() string {
	if len(u.CardNumber) < 4 {
		return ""
	}
	return "**** **** **** " + u.CardNumber[len(u.CardNumber)-4:]
}
