package models

import (
	"time"

	"gorm.io/gorm"
)

// Appointment is a booked consultation. The partial unique (date,time)
// index over confirmed rows is the booking race arbiter: the first
// insert wins, later inserts fail. Cancelling moves the row out of the
// index so the slot opens up again while the history stays queryable.
// Name, email and contact are snapshots of the booking user.
type Appointment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Date      string         `gorm:"type:varchar(10);not null;uniqueIndex:idx_appt_date_time,where:status = 'confirmed'" json:"date"`
	Time      string         `gorm:"type:varchar(5);not null;uniqueIndex:idx_appt_date_time" json:"time"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"not null" json:"email"`
	Contact   string         `gorm:"type:varchar(20)" json:"contact"`
	Status    string         `gorm:"index;not null;default:'confirmed'" json:"status"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Appointment) TableName() string {
	return "appointments"
}
