package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/smartskincare/api/internal/config"
	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/queue"
	"github.com/smartskincare/api/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAppointmentServiceTest(t *testing.T) (*AppointmentService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:appt_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.AvailabilitySlot{},
		&models.Appointment{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{
		Appointment: config.AppointmentConfig{
			DefaultSlotTimes: []string{"10:00", "11:00", "14:00"},
		},
	}
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}
	svc := NewAppointmentService(
		cfg,
		repository.NewAppointmentRepository(db),
		repository.NewAvailabilityRepository(db),
		repository.NewUserRepository(db),
		queueClient,
	)
	return svc, db
}

func seedMember(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{
		Username:         "aina",
		Email:            email,
		PasswordHash:     "x",
		Contact:          "0123456789",
		MembershipStatus: constants.MembershipStatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed member failed: %v", err)
	}
	return user
}

func TestAppointmentBookAndDoubleBook(t *testing.T) {
	svc, db := setupAppointmentServiceTest(t)
	aina := seedMember(t, db, "aina@example.com")
	mei := seedMember(t, db, "mei@example.com")

	appt, err := svc.Book(aina.ID, "2026-09-15", "10:00")
	if err != nil {
		t.Fatalf("book failed: %v", err)
	}
	if appt.Status != constants.AppointmentStatusConfirmed {
		t.Errorf("status want confirmed got %s", appt.Status)
	}
	if appt.Name != "aina" || appt.Email != "aina@example.com" {
		t.Errorf("booking must snapshot the member, got %+v", appt)
	}

	if _, err := svc.Book(mei.ID, "2026-09-15", "10:00"); err != ErrSlotTaken {
		t.Fatalf("expected ErrSlotTaken for second booking, got %v", err)
	}

	views, err := svc.GetAvailability("2026-09-15")
	if err != nil {
		t.Fatalf("availability failed: %v", err)
	}
	for _, v := range views {
		if v.Time == "10:00" && v.Available {
			t.Fatalf("booked slot still shown available")
		}
	}
}

func TestAppointmentCancelFreesSlot(t *testing.T) {
	svc, db := setupAppointmentServiceTest(t)
	aina := seedMember(t, db, "aina@example.com")
	mei := seedMember(t, db, "mei@example.com")

	appt, err := svc.Book(aina.ID, "2026-09-15", "11:00")
	if err != nil {
		t.Fatalf("book failed: %v", err)
	}

	cancelled, err := svc.CancelByUser(aina.ID, appt.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != constants.AppointmentStatusCancelled {
		t.Fatalf("status want cancelled got %s", cancelled.Status)
	}

	// The slot opens up for another member.
	if _, err := svc.Book(mei.ID, "2026-09-15", "11:00"); err != nil {
		t.Fatalf("rebooking a cancelled slot failed: %v", err)
	}

	// Cancelling twice is a no-op, not an error.
	again, err := svc.CancelByUser(aina.ID, appt.ID)
	if err != nil {
		t.Fatalf("repeat cancel failed: %v", err)
	}
	if again.Status != constants.AppointmentStatusCancelled {
		t.Fatalf("repeat cancel status want cancelled got %s", again.Status)
	}
}

func TestAppointmentConfirmRestoresCancelled(t *testing.T) {
	svc, db := setupAppointmentServiceTest(t)
	aina := seedMember(t, db, "aina@example.com")
	mei := seedMember(t, db, "mei@example.com")

	appt, err := svc.Book(aina.ID, "2026-09-15", "10:00")
	if err != nil {
		t.Fatalf("book failed: %v", err)
	}
	if _, err := svc.Cancel(appt.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	restored, err := svc.Confirm(appt.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if restored.Status != constants.AppointmentStatusConfirmed {
		t.Fatalf("status want confirmed got %s", restored.Status)
	}

	// Confirming an already-confirmed booking is a no-op.
	again, err := svc.Confirm(appt.ID)
	if err != nil {
		t.Fatalf("repeat confirm failed: %v", err)
	}
	if again.Status != constants.AppointmentStatusConfirmed {
		t.Fatalf("repeat confirm status want confirmed got %s", again.Status)
	}

	// The restored booking holds the slot again.
	if _, err := svc.Book(mei.ID, "2026-09-15", "10:00"); err != ErrSlotTaken {
		t.Fatalf("expected ErrSlotTaken after re-confirm, got %v", err)
	}
}

func TestAppointmentConfirmLosesToRebookedSlot(t *testing.T) {
	svc, db := setupAppointmentServiceTest(t)
	aina := seedMember(t, db, "aina@example.com")
	mei := seedMember(t, db, "mei@example.com")

	appt, err := svc.Book(aina.ID, "2026-09-15", "11:00")
	if err != nil {
		t.Fatalf("book failed: %v", err)
	}
	if _, err := svc.Cancel(appt.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := svc.Book(mei.ID, "2026-09-15", "11:00"); err != nil {
		t.Fatalf("rebooking the freed slot failed: %v", err)
	}

	if _, err := svc.Confirm(appt.ID); err != ErrSlotTaken {
		t.Fatalf("expected ErrSlotTaken confirming into a rebooked slot, got %v", err)
	}
}

func TestAppointmentCancelScopedToOwner(t *testing.T) {
	svc, db := setupAppointmentServiceTest(t)
	aina := seedMember(t, db, "aina@example.com")
	mei := seedMember(t, db, "mei@example.com")

	appt, err := svc.Book(aina.ID, "2026-09-15", "10:00")
	if err != nil {
		t.Fatalf("book failed: %v", err)
	}

	if _, err := svc.CancelByUser(mei.ID, appt.ID); err != ErrNotFound {
		t.Fatalf("other member must not cancel the booking, got %v", err)
	}
}

func TestAppointmentReschedule(t *testing.T) {
	svc, db := setupAppointmentServiceTest(t)
	aina := seedMember(t, db, "aina@example.com")
	mei := seedMember(t, db, "mei@example.com")

	a, err := svc.Book(aina.ID, "2026-09-15", "10:00")
	if err != nil {
		t.Fatalf("book a failed: %v", err)
	}
	if _, err := svc.Book(mei.ID, "2026-09-15", "11:00"); err != nil {
		t.Fatalf("book b failed: %v", err)
	}

	if _, err := svc.Reschedule(aina.ID, a.ID, "2026-09-15", "11:00"); err != ErrSlotTaken {
		t.Fatalf("expected ErrSlotTaken rescheduling into taken slot, got %v", err)
	}

	moved, err := svc.Reschedule(aina.ID, a.ID, "2026-09-15", "14:00")
	if err != nil {
		t.Fatalf("reschedule failed: %v", err)
	}
	if moved.Time != "14:00" {
		t.Fatalf("time want 14:00 got %s", moved.Time)
	}
}

func TestAppointmentSlotAdministration(t *testing.T) {
	svc, db := setupAppointmentServiceTest(t)
	aina := seedMember(t, db, "aina@example.com")

	slots, err := svc.SetSlots("2026-09-20", []string{"09:00", "10:00", "10:00"})
	if err != nil {
		t.Fatalf("set slots failed: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("duplicate times must collapse, got %d slots", len(slots))
	}

	// An explicit slot set replaces the defaults entirely.
	if _, err := svc.Book(aina.ID, "2026-09-20", "14:00"); err != ErrSlotNotFound {
		t.Fatalf("expected ErrSlotNotFound outside the slot set, got %v", err)
	}

	if err := svc.ToggleSlot("2026-09-20", "09:00", false); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if _, err := svc.Book(aina.ID, "2026-09-20", "09:00"); err != ErrSlotUnavailable {
		t.Fatalf("expected ErrSlotUnavailable for toggled-off slot, got %v", err)
	}

	if _, err := svc.Book(aina.ID, "2026-09-20", "10:00"); err != nil {
		t.Fatalf("booking open slot failed: %v", err)
	}
}

func TestAppointmentRejectsBadSlotFormat(t *testing.T) {
	svc, db := setupAppointmentServiceTest(t)
	aina := seedMember(t, db, "aina@example.com")

	if _, err := svc.Book(aina.ID, "15-09-2026", "10:00"); err != ErrInvalidSlotTime {
		t.Fatalf("expected ErrInvalidSlotTime for bad date, got %v", err)
	}
	if _, err := svc.Book(aina.ID, "2026-09-15", "10am"); err != ErrInvalidSlotTime {
		t.Fatalf("expected ErrInvalidSlotTime for bad time, got %v", err)
	}
}
