package models

import (
	"time"
)

// AvailabilitySlot is one bookable consultation slot. Date uses
// YYYY-MM-DD, Time uses HH:MM. Admins toggle Available.
type AvailabilitySlot struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Date      string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_slot_date_time" json:"date"`
	Time      string    `gorm:"type:varchar(5);not null;uniqueIndex:idx_slot_date_time" json:"time"`
	Available bool      `gorm:"not null;default:true" json:"available"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name.
func (AvailabilitySlot) TableName() string {
	return "availability_slots"
}
