package repository

import (
	"errors"

	"github.com/smartskincare/api/internal/models"

	"gorm.io/gorm"
)

// AvailabilityRepository is the consultation slot data access interface.
type AvailabilityRepository interface {
	ListByDate(date string) ([]models.AvailabilitySlot, error)
	GetByDateTime(date, timeOfDay string) (*models.AvailabilitySlot, error)
	ReplaceForDate(date string, slots []models.AvailabilitySlot) error
	SetAvailable(date, timeOfDay string, available bool) error
	WithTx(tx *gorm.DB) *GormAvailabilityRepository
}

// GormAvailabilityRepository is the GORM implementation.
type GormAvailabilityRepository struct {
	db *gorm.DB
}

// NewAvailabilityRepository builds an availability repository.
func NewAvailabilityRepository(db *gorm.DB) *GormAvailabilityRepository {
	return &GormAvailabilityRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormAvailabilityRepository) WithTx(tx *gorm.DB) *GormAvailabilityRepository {
	if tx == nil {
		return r
	}
	return &GormAvailabilityRepository{db: tx}
}

// ListByDate returns the slots of one day ordered by time.
func (r *GormAvailabilityRepository) ListByDate(date string) ([]models.AvailabilitySlot, error) {
	slots := make([]models.AvailabilitySlot, 0)
	if err := r.db.Where("date = ?", date).Order("time asc").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// GetByDateTime fetches one slot. Returns (nil, nil) when missing.
func (r *GormAvailabilityRepository) GetByDateTime(date, timeOfDay string) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	err := r.db.Where("date = ? AND time = ?", date, timeOfDay).First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// ReplaceForDate swaps out the slot set of one day.
func (r *GormAvailabilityRepository) ReplaceForDate(date string, slots []models.AvailabilitySlot) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date = ?", date).Delete(&models.AvailabilitySlot{}).Error; err != nil {
			return err
		}
		if len(slots) == 0 {
			return nil
		}
		return tx.Create(&slots).Error
	})
}

// SetAvailable toggles one slot.
func (r *GormAvailabilityRepository) SetAvailable(date, timeOfDay string, available bool) error {
	return r.db.Model(&models.AvailabilitySlot{}).
		Where("date = ? AND time = ?", date, timeOfDay).
		Update("available", available).Error
}
