package service

import (
	"sort"
	"strings"
	"time"

	"github.com/smartskincare/api/internal/config"
	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/logger"
	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/queue"
	"github.com/smartskincare/api/internal/repository"
)

// AppointmentService manages consultation slots and bookings. The
// database's unique (date,time) index arbitrates concurrent bookings;
// the service only pre-checks for a friendlier error on the common path.
type AppointmentService struct {
	cfg             *config.Config
	appointmentRepo repository.AppointmentRepository
	availRepo       repository.AvailabilityRepository
	userRepo        repository.UserRepository
	queueClient     *queue.Client
}

// NewAppointmentService builds the appointment service.
func NewAppointmentService(
	cfg *config.Config,
	appointmentRepo repository.AppointmentRepository,
	availRepo repository.AvailabilityRepository,
	userRepo repository.UserRepository,
	queueClient *queue.Client,
) *AppointmentService {
	return &AppointmentService{
		cfg:             cfg,
		appointmentRepo: appointmentRepo,
		availRepo:       availRepo,
		userRepo:        userRepo,
		queueClient:     queueClient,
	}
}

// SlotView is one bookable time shown to members.
type SlotView struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// GetAvailability returns the day's slots with booked ones marked
// unavailable. Days without an explicit slot set fall back to the
// configured default times.
func (s *AppointmentService) GetAvailability(date string) ([]SlotView, error) {
	date, err := normalizeSlotDate(date)
	if err != nil {
		return nil, err
	}

	slots, err := s.availRepo.ListByDate(date)
	if err != nil {
		return nil, err
	}

	views := make([]SlotView, 0, len(slots))
	if len(slots) > 0 {
		for _, slot := range slots {
			views = append(views, SlotView{Time: slot.Time, Available: slot.Available})
		}
	} else {
		for _, t := range s.defaultSlotTimes() {
			views = append(views, SlotView{Time: t, Available: true})
		}
	}

	booked, _, err := s.appointmentRepo.List(repository.AppointmentListFilter{
		Date:   date,
		Status: constants.AppointmentStatusConfirmed,
	})
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(booked))
	for _, appt := range booked {
		taken[appt.Time] = true
	}
	for i := range views {
		if taken[views[i].Time] {
			views[i].Available = false
		}
	}

	sort.Slice(views, func(i, j int) bool { return views[i].Time < views[j].Time })
	return views, nil
}

// Book places a consultation booking. Losing the insert race on the
// unique slot index surfaces as ErrSlotTaken, same as the pre-check.
func (s *AppointmentService) Book(userID uint, date, timeOfDay string) (*models.Appointment, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	date, timeOfDay, err := normalizeSlot(date, timeOfDay)
	if err != nil {
		return nil, err
	}

	if err := s.requireSlotOpen(date, timeOfDay); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	appointment := &models.Appointment{
		Date:    date,
		Time:    timeOfDay,
		UserID:  userID,
		Name:    user.Username,
		Email:   user.Email,
		Contact: user.Contact,
		Status:  constants.AppointmentStatusConfirmed,
	}
	if err := s.appointmentRepo.Create(appointment); err != nil {
		if err == repository.ErrDuplicateSlot {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	s.enqueueStatusEmail(appointment.ID, appointment.Status)
	logger.Infow("appointment_booked",
		"appointment_id", appointment.ID,
		"user_id", userID,
		"date", date,
		"time", timeOfDay,
	)
	return appointment, nil
}

// CancelByUser cancels the member's own booking, freeing the slot.
func (s *AppointmentService) CancelByUser(userID, appointmentID uint) (*models.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil || appointment.UserID != userID {
		return nil, ErrNotFound
	}
	return s.cancel(appointment)
}

// Cancel cancels any booking, for the back office.
func (s *AppointmentService) Cancel(appointmentID uint) (*models.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, ErrNotFound
	}
	return s.cancel(appointment)
}

func (s *AppointmentService) cancel(appointment *models.Appointment) (*models.Appointment, error) {
	if appointment.Status == constants.AppointmentStatusCancelled {
		return appointment, nil
	}
	if appointment.Status != constants.AppointmentStatusConfirmed {
		return nil, ErrAppointmentStatusInvalid
	}
	// Flipping the status moves the row out of the partial unique
	// index, so the slot opens for rebooking.
	if err := s.appointmentRepo.UpdateStatus(appointment.ID, constants.AppointmentStatusCancelled); err != nil {
		return nil, err
	}
	appointment.Status = constants.AppointmentStatusCancelled

	s.enqueueStatusEmail(appointment.ID, appointment.Status)
	return appointment, nil
}

// Confirm re-confirms a cancelled booking, for the back office.
// Confirming an already-confirmed booking is a no-op. The unique index
// arbitrates again: a slot rebooked since the cancellation surfaces as
// ErrSlotTaken.
func (s *AppointmentService) Confirm(appointmentID uint) (*models.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, ErrNotFound
	}
	if appointment.Status == constants.AppointmentStatusConfirmed {
		return appointment, nil
	}
	if appointment.Status != constants.AppointmentStatusCancelled {
		return nil, ErrAppointmentStatusInvalid
	}

	if err := s.appointmentRepo.UpdateStatus(appointment.ID, constants.AppointmentStatusConfirmed); err != nil {
		if err == repository.ErrDuplicateSlot {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	appointment.Status = constants.AppointmentStatusConfirmed

	s.enqueueStatusEmail(appointment.ID, appointment.Status)
	logger.Infow("appointment_confirmed",
		"appointment_id", appointment.ID,
		"date", appointment.Date,
		"time", appointment.Time,
	)
	return appointment, nil
}

// Reschedule moves the member's booking to a new open slot.
func (s *AppointmentService) Reschedule(userID, appointmentID uint, date, timeOfDay string) (*models.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil || appointment.UserID != userID {
		return nil, ErrNotFound
	}
	if appointment.Status != constants.AppointmentStatusConfirmed {
		return nil, ErrAppointmentStatusInvalid
	}

	date, timeOfDay, err = normalizeSlot(date, timeOfDay)
	if err != nil {
		return nil, err
	}
	if appointment.Date == date && appointment.Time == timeOfDay {
		return appointment, nil
	}

	if err := s.requireSlotOpen(date, timeOfDay); err != nil {
		return nil, err
	}

	if err := s.appointmentRepo.Reschedule(appointment.ID, date, timeOfDay); err != nil {
		if err == repository.ErrDuplicateSlot {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	appointment.Date = date
	appointment.Time = timeOfDay

	s.enqueueStatusEmail(appointment.ID, appointment.Status)
	return appointment, nil
}

// ListUserAppointments returns the member's bookings.
func (s *AppointmentService) ListUserAppointments(userID uint, page, pageSize int) ([]models.Appointment, int64, error) {
	if userID == 0 {
		return nil, 0, ErrNotFound
	}
	return s.appointmentRepo.List(repository.AppointmentListFilter{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
}

// ListAppointments returns bookings for the back office.
func (s *AppointmentService) ListAppointments(filter repository.AppointmentListFilter) ([]models.Appointment, int64, error) {
	return s.appointmentRepo.List(filter)
}

// SetSlots replaces the day's slot set, for the back office.
func (s *AppointmentService) SetSlots(date string, times []string) ([]models.AvailabilitySlot, error) {
	date, err := normalizeSlotDate(date)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(times))
	slots := make([]models.AvailabilitySlot, 0, len(times))
	for _, t := range times {
		normalized, err := normalizeSlotTime(t)
		if err != nil {
			return nil, err
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		slots = append(slots, models.AvailabilitySlot{
			Date:      date,
			Time:      normalized,
			Available: true,
		})
	}

	if err := s.availRepo.ReplaceForDate(date, slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// ToggleSlot flips one slot's availability, for the back office.
func (s *AppointmentService) ToggleSlot(date, timeOfDay string, available bool) error {
	date, timeOfDay, err := normalizeSlot(date, timeOfDay)
	if err != nil {
		return err
	}
	slot, err := s.availRepo.GetByDateTime(date, timeOfDay)
	if err != nil {
		return err
	}
	if slot == nil {
		return ErrSlotNotFound
	}
	return s.availRepo.SetAvailable(date, timeOfDay, available)
}

// requireSlotOpen checks that the slot is offered, not toggled off, and
// not already booked.
func (s *AppointmentService) requireSlotOpen(date, timeOfDay string) error {
	slot, err := s.availRepo.GetByDateTime(date, timeOfDay)
	if err != nil {
		return err
	}
	if slot == nil {
		// Defaults only apply to days without an explicit slot set.
		existing, err := s.availRepo.ListByDate(date)
		if err != nil {
			return err
		}
		if len(existing) > 0 || !s.isDefaultSlotTime(timeOfDay) {
			return ErrSlotNotFound
		}
	} else if !slot.Available {
		return ErrSlotUnavailable
	}

	existing, err := s.appointmentRepo.GetByDateTime(date, timeOfDay)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrSlotTaken
	}
	return nil
}

func (s *AppointmentService) enqueueStatusEmail(appointmentID uint, status string) {
	if err := s.queueClient.EnqueueAppointmentEmail(queue.AppointmentEmailPayload{
		AppointmentID: appointmentID,
		Status:        status,
	}); err != nil {
		logger.Warnw("appointment_email_enqueue_failed",
			"appointment_id", appointmentID,
			"error", err,
		)
	}
}

func (s *AppointmentService) defaultSlotTimes() []string {
	times := s.cfg.Appointment.DefaultSlotTimes
	normalized := make([]string, 0, len(times))
	for _, t := range times {
		if v, err := normalizeSlotTime(t); err == nil {
			normalized = append(normalized, v)
		}
	}
	return normalized
}

func (s *AppointmentService) isDefaultSlotTime(timeOfDay string) bool {
	for _, t := range s.defaultSlotTimes() {
		if t == timeOfDay {
			return true
		}
	}
	return false
}

func normalizeSlot(date, timeOfDay string) (string, string, error) {
	normalizedDate, err := normalizeSlotDate(date)
	if err != nil {
		return "", "", err
	}
	normalizedTime, err := normalizeSlotTime(timeOfDay)
	if err != nil {
		return "", "", err
	}
	return normalizedDate, normalizedTime, nil
}

func normalizeSlotDate(date string) (string, error) {
	trimmed := strings.TrimSpace(date)
	parsed, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return "", ErrInvalidSlotTime
	}
	return parsed.Format("2006-01-02"), nil
}

func normalizeSlotTime(timeOfDay string) (string, error) {
	trimmed := strings.TrimSpace(timeOfDay)
	parsed, err := time.Parse("15:04", trimmed)
	if err != nil {
		return "", ErrInvalidSlotTime
	}
	return parsed.Format("15:04"), nil
}
