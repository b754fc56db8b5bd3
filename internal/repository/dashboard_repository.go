package repository

import (
	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository aggregates back-office statistics. Counts only,
// no business rules.
type DashboardRepository interface {
	GetOverview() (DashboardOverviewRow, error)
	GetMembershipStats() (DashboardMembershipRow, error)
	GetAppointmentStats(date string) (DashboardAppointmentRow, error)
}

// DashboardOverviewRow holds the headline counters.
type DashboardOverviewRow struct {
	TotalUsers    int64
	TotalProducts int64
	TotalOrders   int64
}

// DashboardMembershipRow splits members by membership gate.
type DashboardMembershipRow struct {
	Active   int64
	Inactive int64
}

// DashboardAppointmentRow counts bookings for one day.
type DashboardAppointmentRow struct {
	Confirmed int64
	Cancelled int64
}

// GormDashboardRepository is the GORM implementation.
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository builds a dashboard repository.
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetOverview returns the user/product/order totals.
func (r *GormDashboardRepository) GetOverview() (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}

	if err := r.db.Model(&models.User{}).Count(&result.TotalUsers).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Product{}).Count(&result.TotalProducts).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Order{}).Count(&result.TotalOrders).Error; err != nil {
		return result, err
	}
	return result, nil
}

// GetMembershipStats splits members by status.
func (r *GormDashboardRepository) GetMembershipStats() (DashboardMembershipRow, error) {
	result := DashboardMembershipRow{}

	if err := r.db.Model(&models.User{}).
		Where("membership_status = ?", constants.MembershipStatusActive).
		Count(&result.Active).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.User{}).
		Where("membership_status = ?", constants.MembershipStatusInactive).
		Count(&result.Inactive).Error; err != nil {
		return result, err
	}
	return result, nil
}

// GetAppointmentStats counts bookings of one day by status.
func (r *GormDashboardRepository) GetAppointmentStats(date string) (DashboardAppointmentRow, error) {
	result := DashboardAppointmentRow{}

	base := func() *gorm.DB {
		query := r.db.Model(&models.Appointment{})
		if date != "" {
			query = query.Where("date = ?", date)
		}
		return query
	}

	if err := base().Where("status = ?", constants.AppointmentStatusConfirmed).
		Count(&result.Confirmed).Error; err != nil {
		return result, err
	}
	if err := base().Where("status = ?", constants.AppointmentStatusCancelled).
		Count(&result.Cancelled).Error; err != nil {
		return result, err
	}
	return result, nil
}
