package admin

import (
	"errors"
	"strconv"

	"github.com/smartskincare/api/internal/http/response"
	"github.com/smartskincare/api/internal/logger"
	"github.com/smartskincare/api/internal/repository"
	"github.com/smartskincare/api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminAppointments lists bookings across all members.
func (h *Handler) GetAdminAppointments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.AppointmentListFilter{
		Page:     page,
		PageSize: pageSize,
		Date:     c.Query("date"),
		Status:   c.Query("status"),
	}
	if rawUserID := c.Query("user_id"); rawUserID != "" {
		if userID, err := strconv.ParseUint(rawUserID, 10, 64); err == nil {
			filter.UserID = uint(userID)
		}
	}

	appointments, total, err := h.AppointmentService.ListAppointments(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "Failed to load appointments", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, appointments, pagination)
}

// CancelAdminAppointment cancels any booking, freeing its slot.
func (h *Handler) CancelAdminAppointment(c *gin.Context) {
	rawID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || rawID == 0 {
		respondError(c, response.CodeBadRequest, "Invalid appointment id", nil)
		return
	}

	appointment, err := h.AppointmentService.Cancel(uint(rawID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "Appointment not found", nil)
		case errors.Is(err, service.ErrAppointmentStatusInvalid):
			respondError(c, response.CodeBadRequest, "Appointment can no longer be changed", nil)
		default:
			respondError(c, response.CodeInternal, "Appointment update failed", err)
		}
		return
	}

	logger.Infow("admin_appointment_cancelled",
		"appointment_id", appointment.ID,
		"date", appointment.Date,
		"time", appointment.Time,
	)

	response.Success(c, appointment)
}

// ConfirmAdminAppointment re-confirms a cancelled booking, retaking
// its slot.
func (h *Handler) ConfirmAdminAppointment(c *gin.Context) {
	rawID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || rawID == 0 {
		respondError(c, response.CodeBadRequest, "Invalid appointment id", nil)
		return
	}

	appointment, err := h.AppointmentService.Confirm(uint(rawID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "Appointment not found", nil)
		case errors.Is(err, service.ErrAppointmentStatusInvalid):
			respondError(c, response.CodeBadRequest, "Appointment can no longer be changed", nil)
		case errors.Is(err, service.ErrSlotTaken):
			respondError(c, response.CodeBadRequest, "Slot has been rebooked", nil)
		default:
			respondError(c, response.CodeInternal, "Appointment update failed", err)
		}
		return
	}

	logger.Infow("admin_appointment_confirmed",
		"appointment_id", appointment.ID,
		"date", appointment.Date,
		"time", appointment.Time,
	)

	response.Success(c, appointment)
}

// GetAdminAvailability returns the configured slots for a date.
func (h *Handler) GetAdminAvailability(c *gin.Context) {
	date := c.Query("date")
	slots, err := h.AppointmentService.GetAvailability(date)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSlotTime) {
			respondError(c, response.CodeBadRequest, "Invalid slot date or time", nil)
			return
		}
		respondError(c, response.CodeInternal, "Failed to load availability", err)
		return
	}

	response.Success(c, gin.H{
		"date":  date,
		"slots": slots,
	})
}

// SetAvailabilityRequest replaces a day's slot set.
type SetAvailabilityRequest struct {
	Times []string `json:"times" binding:"required"`
}

// SetAdminAvailability replaces the slot set for a date.
func (h *Handler) SetAdminAvailability(c *gin.Context) {
	date := c.Param("date")

	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	slots, err := h.AppointmentService.SetSlots(date, req.Times)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSlotTime) {
			respondError(c, response.CodeBadRequest, "Invalid slot date or time", nil)
			return
		}
		respondError(c, response.CodeInternal, "Availability update failed", err)
		return
	}

	logger.Infow("admin_availability_updated",
		"date", date,
		"slot_count", len(slots),
	)

	response.Success(c, slots)
}

// ToggleSlotRequest opens or closes a single slot.
type ToggleSlotRequest struct {
	Time      string `json:"time" binding:"required"`
	Available *bool  `json:"available" binding:"required"`
}

// ToggleAdminSlot opens or closes one slot on a date.
func (h *Handler) ToggleAdminSlot(c *gin.Context) {
	date := c.Param("date")

	var req ToggleSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	if err := h.AppointmentService.ToggleSlot(date, req.Time, *req.Available); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSlotTime):
			respondError(c, response.CodeBadRequest, "Invalid slot date or time", nil)
		case errors.Is(err, service.ErrSlotNotFound):
			respondError(c, response.CodeNotFound, "Slot not found", nil)
		default:
			respondError(c, response.CodeInternal, "Availability update failed", err)
		}
		return
	}

	response.Success(c, gin.H{"updated": true})
}
