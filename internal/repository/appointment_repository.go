package repository

import (
	"errors"
	"strings"

	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicateSlot reports an insert that lost the booking race on the
// unique (date,time) index.
var ErrDuplicateSlot = errors.New("appointment slot already booked")

// AppointmentRepository is the booking data access interface.
type AppointmentRepository interface {
	Create(appointment *models.Appointment) error
	GetByID(id uint) (*models.Appointment, error)
	GetByDateTime(date, timeOfDay string) (*models.Appointment, error)
	List(filter AppointmentListFilter) ([]models.Appointment, int64, error)
	UpdateStatus(id uint, status string) error
	Reschedule(id uint, date, timeOfDay string) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) *GormAppointmentRepository
}

// GormAppointmentRepository is the GORM implementation.
type GormAppointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository builds an appointment repository.
func NewAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormAppointmentRepository) WithTx(tx *gorm.DB) *GormAppointmentRepository {
	if tx == nil {
		return r
	}
	return &GormAppointmentRepository{db: tx}
}

// Create inserts a booking. A unique-index violation on (date,time) is
// surfaced as ErrDuplicateSlot so callers can map it to a conflict.
func (r *GormAppointmentRepository) Create(appointment *models.Appointment) error {
	if err := r.db.Create(appointment).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlot
		}
		return err
	}
	return nil
}

// GetByID fetches a booking by id.
func (r *GormAppointmentRepository) GetByID(id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := r.db.First(&appointment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// GetByDateTime fetches the confirmed booking that holds a slot.
// Cancelled rows do not hold slots.
func (r *GormAppointmentRepository) GetByDateTime(date, timeOfDay string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := r.db.Where("date = ? AND time = ? AND status = ?", date, timeOfDay, constants.AppointmentStatusConfirmed).First(&appointment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// List returns bookings matching the filter.
func (r *GormAppointmentRepository) List(filter AppointmentListFilter) ([]models.Appointment, int64, error) {
	query := r.db.Model(&models.Appointment{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Date != "" {
		query = query.Where("date = ?", filter.Date)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var appointments []models.Appointment
	if err := query.Order("date asc, time asc").Find(&appointments).Error; err != nil {
		return nil, 0, err
	}
	return appointments, total, nil
}

// UpdateStatus rewrites the booking status. Flipping a row back to
// confirmed re-enters the partial unique index; a slot rebooked in the
// meantime surfaces as ErrDuplicateSlot.
func (r *GormAppointmentRepository) UpdateStatus(id uint, status string) error {
	err := r.db.Model(&models.Appointment{}).Where("id = ?", id).Update("status", status).Error
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateSlot
	}
	return err
}

// Reschedule moves a booking to a new slot. The unique index still
// arbitrates; a taken target surfaces as ErrDuplicateSlot.
func (r *GormAppointmentRepository) Reschedule(id uint, date, timeOfDay string) error {
	err := r.db.Model(&models.Appointment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"date": date, "time": timeOfDay}).Error
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateSlot
	}
	return err
}

// Delete soft-deletes a booking. The status flips to cancelled first:
// a soft-deleted row keeps its index entries, so deleting a confirmed
// booking directly would block the slot forever.
func (r *GormAppointmentRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Appointment{}).Where("id = ?", id).
			Update("status", constants.AppointmentStatusCancelled).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Appointment{}, id).Error
	})
}

// isUniqueViolation matches the sqlite and postgres duplicate key errors.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
