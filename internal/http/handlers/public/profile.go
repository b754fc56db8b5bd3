package public

import (
	"errors"

	"github.com/smartskincare/api/internal/http/response"
	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/service"

	"github.com/gin-gonic/gin"
)

func userProfileResponse(user *models.User) gin.H {
	return gin.H{
		"id":                user.ID,
		"username":          user.Username,
		"email":             user.Email,
		"contact":           user.Contact,
		"membership_status": user.MembershipStatus,
		"address": gin.H{
			"address":     user.Address,
			"city":        user.City,
			"postal_code": user.PostalCode,
			"country":     user.Country,
		},
		"billing_card": gin.H{
			"holder": user.CardHolder,
			"number": user.MaskedCardNumber(),
			"expiry": user.CardExpiry,
		},
		"last_login_at": user.LastLoginAt,
		"created_at":    user.CreatedAt,
	}
}

// GetCurrentUser returns the signed-in member's profile. The card number
// comes back masked.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	user, err := h.UserAuthService.GetUserByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "Failed to load user", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "User not found", nil)
		return
	}

	response.Success(c, userProfileResponse(user))
}

// UserProfileUpdateRequest is a partial profile update.
type UserProfileUpdateRequest struct {
	Username *string `json:"username"`
	Contact  *string `json:"contact"`
}

// UpdateUserProfile updates username and contact.
func (h *Handler) UpdateUserProfile(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req UserProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	user, err := h.UserAuthService.UpdateProfile(id, req.Username, req.Contact)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileEmpty):
			respondError(c, response.CodeBadRequest, "No profile fields to update", nil)
		case errors.Is(err, service.ErrInvalidContact):
			respondError(c, response.CodeBadRequest, "Invalid contact number", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "User not found", nil)
		default:
			respondError(c, response.CodeInternal, "Profile update failed", err)
		}
		return
	}

	response.Success(c, userProfileResponse(user))
}

// ChangeUserPasswordRequest is a signed-in password change.
type ChangeUserPasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangeUserPassword changes the member password.
func (h *Handler) ChangeUserPassword(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req ChangeUserPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	if err := h.UserAuthService.ChangePassword(id, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassword):
			respondError(c, response.CodeBadRequest, "Current password is incorrect", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "User not found", nil)
		default:
			respondError(c, response.CodeInternal, "Password change failed", err)
		}
		return
	}

	response.Success(c, gin.H{"updated": true})
}

// UpdateAddressRequest replaces the shipping address.
type UpdateAddressRequest struct {
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

// UpdateAddress stores the member's shipping address.
func (h *Handler) UpdateAddress(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	user, err := h.UserAuthService.UpdateAddress(id, service.AddressInput{
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "User not found", nil)
		default:
			respondError(c, response.CodeInternal, "Address update failed", err)
		}
		return
	}

	response.Success(c, userProfileResponse(user))
}

// UpdateBillingCardRequest stores a card on file.
type UpdateBillingCardRequest struct {
	Holder string `json:"holder" binding:"required"`
	Number string `json:"number" binding:"required"`
	Expiry string `json:"expiry" binding:"required"`
	CVV    string `json:"cvv" binding:"required"`
}

// UpdateBillingCard validates and stores the member's card.
func (h *Handler) UpdateBillingCard(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req UpdateBillingCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	user, err := h.UserAuthService.UpdateBillingCard(id, service.BillingCardInput{
		Holder: req.Holder,
		Number: req.Number,
		Expiry: req.Expiry,
		CVV:    req.CVV,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCard):
			respondError(c, response.CodeBadRequest, "Invalid card details", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "User not found", nil)
		default:
			respondError(c, response.CodeInternal, "Billing card update failed", err)
		}
		return
	}

	response.Success(c, userProfileResponse(user))
}
