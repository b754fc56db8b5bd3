package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/smartskincare/api/internal/logger"
	"github.com/smartskincare/api/internal/provider"
	"github.com/smartskincare/api/internal/queue"
	"github.com/smartskincare/api/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer handles queued email tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer builds a consumer over the container.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register wires task handlers onto the mux.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderReceiptEmail, c.handleOrderReceiptEmail)
	mux.HandleFunc(queue.TaskAppointmentEmail, c.handleAppointmentEmail)
	mux.HandleFunc(queue.TaskPasswordResetEmail, c.handlePasswordResetEmail)
}

func (c *Consumer) handleOrderReceiptEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_receipt_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderReceiptEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_receipt_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_receipt_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_receipt_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_receipt_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	user, err := c.UserRepo.GetByID(order.UserID)
	if err != nil {
		logger.Warnw("worker_order_receipt_email_fetch_user_failed", "order_id", order.ID, "user_id", order.UserID, "error", err)
		return err
	}
	if user == nil {
		logger.Debugw("worker_order_receipt_email_skip_user_not_found", "order_id", order.ID, "user_id", order.UserID)
		return nil
	}
	receiverEmail := strings.TrimSpace(user.Email)
	if receiverEmail == "" {
		logger.Debugw("worker_order_receipt_email_skip_empty_receiver", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_order_receipt_email_skip_email_service_nil", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	if err := c.EmailService.SendOrderReceiptEmail(receiverEmail, order); err != nil {
		if isPermanentEmailFailure(err) {
			logger.Debugw("worker_order_receipt_email_skip_unsendable", "order_id", order.ID, "order_no", order.OrderNo, "error", err)
			return nil
		}
		logger.Warnw("worker_order_receipt_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"receiver_email", receiverEmail,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleAppointmentEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_appointment_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.AppointmentEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_appointment_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.AppointmentID == 0 {
		logger.Debugw("worker_appointment_email_skip_invalid_payload", "appointment_id", payload.AppointmentID)
		return nil
	}
	appointment, err := c.AppointmentRepo.GetByID(payload.AppointmentID)
	if err != nil {
		logger.Warnw("worker_appointment_email_fetch_failed", "appointment_id", payload.AppointmentID, "error", err)
		return err
	}
	if appointment == nil {
		logger.Debugw("worker_appointment_email_skip_not_found", "appointment_id", payload.AppointmentID)
		return nil
	}
	receiverEmail := strings.TrimSpace(appointment.Email)
	if receiverEmail == "" {
		logger.Debugw("worker_appointment_email_skip_empty_receiver", "appointment_id", appointment.ID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_appointment_email_skip_email_service_nil", "appointment_id", appointment.ID)
		return nil
	}
	// The payload carries the status the booking moved to; the row may
	// have moved on again by the time the task runs.
	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = appointment.Status
	}
	if err := c.EmailService.SendAppointmentStatusEmail(receiverEmail, appointment, status); err != nil {
		if isPermanentEmailFailure(err) {
			logger.Debugw("worker_appointment_email_skip_unsendable", "appointment_id", appointment.ID, "error", err)
			return nil
		}
		logger.Warnw("worker_appointment_email_send_failed",
			"appointment_id", appointment.ID,
			"receiver_email", receiverEmail,
			"status", status,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handlePasswordResetEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_password_reset_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PasswordResetEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_password_reset_email_unmarshal_failed", "error", err)
		return err
	}
	receiverEmail := strings.TrimSpace(payload.Email)
	if receiverEmail == "" || payload.Token == "" {
		logger.Debugw("worker_password_reset_email_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_password_reset_email_skip_email_service_nil", "user_id", payload.UserID)
		return nil
	}
	if err := c.EmailService.SendPasswordResetEmail(receiverEmail, payload.Token); err != nil {
		if isPermanentEmailFailure(err) {
			logger.Debugw("worker_password_reset_email_skip_unsendable", "user_id", payload.UserID, "error", err)
			return nil
		}
		logger.Warnw("worker_password_reset_email_send_failed",
			"user_id", payload.UserID,
			"receiver_email", receiverEmail,
			"error", err,
		)
		return err
	}
	return nil
}

// isPermanentEmailFailure reports failures that retrying cannot fix.
func isPermanentEmailFailure(err error) bool {
	switch {
	case errors.Is(err, service.ErrEmailServiceDisabled),
		errors.Is(err, service.ErrEmailServiceNotConfigured),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrEmailRecipientRejected):
		return true
	}
	return false
}
