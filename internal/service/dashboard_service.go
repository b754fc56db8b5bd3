package service

import (
	"github.com/smartskincare/api/internal/repository"
)

// DashboardService assembles the back-office overview page.
type DashboardService struct {
	dashboardRepo repository.DashboardRepository
	orderRepo     repository.OrderRepository
}

// NewDashboardService builds the dashboard service.
func NewDashboardService(dashboardRepo repository.DashboardRepository, orderRepo repository.OrderRepository) *DashboardService {
	return &DashboardService{
		dashboardRepo: dashboardRepo,
		orderRepo:     orderRepo,
	}
}

// MonthlySalesPoint is one month of the revenue chart.
type MonthlySalesPoint struct {
	Month   string  `json:"month"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// DashboardOverview is the headline block plus breakdowns.
type DashboardOverview struct {
	TotalUsers      int64               `json:"total_users"`
	TotalProducts   int64               `json:"total_products"`
	TotalOrders     int64               `json:"total_orders"`
	ActiveMembers   int64               `json:"active_members"`
	InactiveMembers int64               `json:"inactive_members"`
	MonthlySales    []MonthlySalesPoint `json:"monthly_sales"`
	TodayConfirmed  int64               `json:"today_confirmed_appointments"`
	TodayCancelled  int64               `json:"today_cancelled_appointments"`
}

// GetOverview assembles the dashboard payload. The date narrows the
// appointment counters; empty counts every booking.
func (s *DashboardService) GetOverview(date string) (*DashboardOverview, error) {
	overview, err := s.dashboardRepo.GetOverview()
	if err != nil {
		return nil, err
	}
	membership, err := s.dashboardRepo.GetMembershipStats()
	if err != nil {
		return nil, err
	}
	appointments, err := s.dashboardRepo.GetAppointmentStats(date)
	if err != nil {
		return nil, err
	}
	sales, err := s.orderRepo.MonthlySales(12)
	if err != nil {
		return nil, err
	}

	points := make([]MonthlySalesPoint, 0, len(sales))
	for _, row := range sales {
		points = append(points, MonthlySalesPoint{
			Month:   row.Month,
			Orders:  row.Orders,
			Revenue: row.Revenue,
		})
	}

	return &DashboardOverview{
		TotalUsers:      overview.TotalUsers,
		TotalProducts:   overview.TotalProducts,
		TotalOrders:     overview.TotalOrders,
		ActiveMembers:   membership.Active,
		InactiveMembers: membership.Inactive,
		MonthlySales:    points,
		TodayConfirmed:  appointments.Confirmed,
		TodayCancelled:  appointments.Cancelled,
	}, nil
}
