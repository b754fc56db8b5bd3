package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAppointmentRepositoryTest(t *testing.T) (*GormAppointmentRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:appointment_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Appointment{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewAppointmentRepository(db), db
}

func TestAppointmentRepositoryCreateFirstWriterWins(t *testing.T) {
	repo, _ := setupAppointmentRepositoryTest(t)

	first := models.Appointment{
		Date:    "2026-09-15",
		Time:    "10:00",
		UserID:  1,
		Name:    "Aina",
		Email:   "aina@example.com",
		Contact: "0123456789",
		Status:  constants.AppointmentStatusConfirmed,
	}
	if err := repo.Create(&first); err != nil {
		t.Fatalf("create first booking failed: %v", err)
	}

	second := models.Appointment{
		Date:   "2026-09-15",
		Time:   "10:00",
		UserID: 2,
		Name:   "Mei",
		Email:  "mei@example.com",
		Status: constants.AppointmentStatusConfirmed,
	}
	err := repo.Create(&second)
	if !errors.Is(err, ErrDuplicateSlot) {
		t.Fatalf("expected ErrDuplicateSlot, got %v", err)
	}

	holder, err := repo.GetByDateTime("2026-09-15", "10:00")
	if err != nil {
		t.Fatalf("get booking failed: %v", err)
	}
	if holder == nil || holder.UserID != 1 {
		t.Fatalf("expected first writer to hold the slot, got %+v", holder)
	}
}

func TestAppointmentRepositoryRescheduleIntoTakenSlot(t *testing.T) {
	repo, _ := setupAppointmentRepositoryTest(t)

	a := models.Appointment{Date: "2026-09-15", Time: "10:00", UserID: 1, Name: "Aina", Email: "aina@example.com", Status: constants.AppointmentStatusConfirmed}
	b := models.Appointment{Date: "2026-09-15", Time: "11:00", UserID: 2, Name: "Mei", Email: "mei@example.com", Status: constants.AppointmentStatusConfirmed}
	if err := repo.Create(&a); err != nil {
		t.Fatalf("create a failed: %v", err)
	}
	if err := repo.Create(&b); err != nil {
		t.Fatalf("create b failed: %v", err)
	}

	if err := repo.Reschedule(b.ID, "2026-09-15", "10:00"); !errors.Is(err, ErrDuplicateSlot) {
		t.Fatalf("expected ErrDuplicateSlot on reschedule, got %v", err)
	}
	if err := repo.Reschedule(b.ID, "2026-09-16", "10:00"); err != nil {
		t.Fatalf("reschedule to free slot failed: %v", err)
	}

	moved, err := repo.GetByID(b.ID)
	if err != nil {
		t.Fatalf("get moved booking failed: %v", err)
	}
	if moved.Date != "2026-09-16" || moved.Time != "10:00" {
		t.Fatalf("unexpected slot after reschedule: %s %s", moved.Date, moved.Time)
	}
}

func TestAppointmentRepositoryDeleteFreesSlot(t *testing.T) {
	repo, _ := setupAppointmentRepositoryTest(t)

	booked := models.Appointment{
		Date:   "2026-09-15",
		Time:   "10:00",
		UserID: 1,
		Name:   "Aina",
		Email:  "aina@example.com",
		Status: constants.AppointmentStatusConfirmed,
	}
	if err := repo.Create(&booked); err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	if err := repo.Delete(booked.ID); err != nil {
		t.Fatalf("delete booking failed: %v", err)
	}

	// A deleted confirmed booking must not keep holding the slot.
	rebooked := models.Appointment{
		Date:   "2026-09-15",
		Time:   "10:00",
		UserID: 2,
		Name:   "Mei",
		Email:  "mei@example.com",
		Status: constants.AppointmentStatusConfirmed,
	}
	if err := repo.Create(&rebooked); err != nil {
		t.Fatalf("rebooking a deleted slot failed: %v", err)
	}

	gone, err := repo.GetByID(booked.ID)
	if err != nil {
		t.Fatalf("get deleted booking failed: %v", err)
	}
	if gone != nil {
		t.Fatalf("deleted booking should not be readable, got %+v", gone)
	}
}

func TestAppointmentRepositoryListFilters(t *testing.T) {
	repo, _ := setupAppointmentRepositoryTest(t)

	seed := []models.Appointment{
		{Date: "2026-09-15", Time: "10:00", UserID: 1, Name: "Aina", Email: "aina@example.com", Status: constants.AppointmentStatusConfirmed},
		{Date: "2026-09-15", Time: "11:00", UserID: 2, Name: "Mei", Email: "mei@example.com", Status: constants.AppointmentStatusCancelled},
		{Date: "2026-09-16", Time: "10:00", UserID: 1, Name: "Aina", Email: "aina@example.com", Status: constants.AppointmentStatusConfirmed},
	}
	for i := range seed {
		if err := repo.Create(&seed[i]); err != nil {
			t.Fatalf("seed booking %d failed: %v", i, err)
		}
	}

	rows, total, err := repo.List(AppointmentListFilter{Date: "2026-09-15"})
	if err != nil {
		t.Fatalf("list by date failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("list by date want 2 got total=%d rows=%d", total, len(rows))
	}

	rows, total, err = repo.List(AppointmentListFilter{UserID: 1, Status: constants.AppointmentStatusConfirmed})
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("list by user want 2 got %d", total)
	}
	for _, row := range rows {
		if row.UserID != 1 {
			t.Fatalf("expected only user 1 rows, got user_id=%d", row.UserID)
		}
	}
}
