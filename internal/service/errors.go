package service

import "errors"

// Sentinel errors shared across services. Handlers map these onto HTTP
// status codes; anything else is treated as an internal error.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMembershipInactive = errors.New("membership is inactive")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidPassword    = errors.New("current password is incorrect")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrInvalidContact     = errors.New("invalid contact number")
	ErrInvalidCard        = errors.New("invalid card details")
	ErrProfileEmpty       = errors.New("no profile fields to update")

	ErrInvalidMembershipStatus = errors.New("invalid membership status")

	ErrProductNotAvailable = errors.New("product not available")
	ErrProductCodeExists   = errors.New("product code already exists")
	ErrInvalidCartItem     = errors.New("invalid cart item")
	ErrCartEmpty           = errors.New("cart is empty")

	ErrCheckoutSummaryMissing = errors.New("checkout summary missing or expired")
	ErrCheckoutTokenMismatch  = errors.New("checkout token does not match summary")
	ErrOrderStatusInvalid     = errors.New("order status transition not allowed")
	ErrOrderUpdateFailed      = errors.New("order update failed")

	ErrSlotNotFound             = errors.New("slot not found")
	ErrSlotUnavailable          = errors.New("slot is not available")
	ErrSlotTaken                = errors.New("slot already booked")
	ErrAppointmentStatusInvalid = errors.New("appointment status transition not allowed")
	ErrInvalidSlotTime          = errors.New("invalid slot date or time")

	ErrResetTokenInvalid    = errors.New("reset token invalid or expired")
	ErrResetTokenTooSoon    = errors.New("reset email requested too frequently")
	ErrEmailServiceDisabled = errors.New("email service disabled")

	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("recipient address rejected")

	ErrRecommenderDisabled    = errors.New("recommender disabled")
	ErrRecommenderUnavailable = errors.New("recommender unavailable")
)
