package public

import (
	"errors"
	"strconv"

	"github.com/smartskincare/api/internal/http/response"
	"github.com/smartskincare/api/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAvailability returns the day's consultation slots with booked ones
// marked unavailable.
func (h *Handler) GetAvailability(c *gin.Context) {
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

// BookAppointmentRequest books a consultation slot.
type BookAppointmentRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

func respondAppointmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSlotTime):
		respondError(c, response.CodeBadRequest, "Invalid slot date or time", nil)
	case errors.Is(err, service.ErrSlotUnavailable):
		respondError(c, response.CodeBadRequest, "Slot is not available", nil)
	case errors.Is(err, service.ErrSlotTaken):
		respondError(c, response.CodeBadRequest, "Slot already booked", nil)
	case errors.Is(err, service.ErrSlotNotFound):
		respondError(c, response.CodeNotFound, "Slot not found", nil)
	case errors.Is(err, service.ErrAppointmentStatusInvalid):
		respondError(c, response.CodeBadRequest, "Appointment can no longer be changed", nil)
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, "Appointment not found", nil)
	default:
		respondError(c, response.CodeInternal, "Appointment update failed", err)
	}
}

// BookAppointment books a slot for the member. The first booking wins a
// contested slot.
func (h *Handler) BookAppointment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	appointment, err := h.AppointmentService.Book(uid, req.Date, req.Time)
	if err != nil {
		respondAppointmentError(c, err)
		return
	}

	response.Success(c, appointment)
}

func appointmentIDParam(c *gin.Context) (uint, bool) {
	rawID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || rawID == 0 {
		respondError(c, response.CodeBadRequest, "Invalid appointment id", nil)
		return 0, false
	}
	return uint(rawID), true
}

// CancelAppointment cancels one of the member's bookings, freeing the slot.
func (h *Handler) CancelAppointment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := appointmentIDParam(c)
	if !ok {
		return
	}

	appointment, err := h.AppointmentService.CancelByUser(uid, id)
	if err != nil {
		respondAppointmentError(c, err)
		return
	}

	response.Success(c, appointment)
}

// RescheduleAppointmentRequest moves a booking to another slot.
type RescheduleAppointmentRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// RescheduleAppointment moves a booking. The old slot opens up only when
// the new one is secured.
func (h *Handler) RescheduleAppointment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := appointmentIDParam(c)
	if !ok {
		return
	}

	var req RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	appointment, err := h.AppointmentService.Reschedule(uid, id, req.Date, req.Time)
	if err != nil {
		respondAppointmentError(c, err)
		return
	}

	response.Success(c, appointment)
}

// ListMyAppointments lists the member's bookings, newest first.
func (h *Handler) ListMyAppointments(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	appointments, total, err := h.AppointmentService.ListUserAppointments(uid, page, pageSize)
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
