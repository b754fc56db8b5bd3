package queue

import (
	"encoding/json"

	"github.com/smartskincare/api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderReceiptEmail sends the receipt after payment commits.
	TaskOrderReceiptEmail = constants.TaskOrderReceiptEmail
	// TaskAppointmentEmail notifies on booking status changes.
	TaskAppointmentEmail = constants.TaskAppointmentEmail
	// TaskPasswordResetEmail delivers a password reset link.
	TaskPasswordResetEmail = constants.TaskPasswordResetEmail
)

// OrderReceiptEmailPayload identifies the order to send a receipt for.
type OrderReceiptEmailPayload struct {
	OrderID uint `json:"order_id"`
}

// AppointmentEmailPayload identifies the booking and the status it moved to.
type AppointmentEmailPayload struct {
	AppointmentID uint   `json:"appointment_id"`
	Status        string `json:"status"`
}

// PasswordResetEmailPayload carries the reset token to mail out.
type PasswordResetEmailPayload struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// NewOrderReceiptEmailTask builds a receipt email task.
func NewOrderReceiptEmailTask(payload OrderReceiptEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderReceiptEmail, body), nil
}

// NewAppointmentEmailTask builds a booking status email task.
func NewAppointmentEmailTask(payload AppointmentEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAppointmentEmail, body), nil
}

// NewPasswordResetEmailTask builds a password reset email task.
func NewPasswordResetEmailTask(payload PasswordResetEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPasswordResetEmail, body), nil
}
