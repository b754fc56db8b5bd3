package public

import (
	"errors"

	"github.com/smartskincare/api/internal/http/response"
	"github.com/smartskincare/api/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest is the signup payload.
type UserRegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Contact  string `json:"contact"`
}

// UserRegister creates a member account and signs it in.
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Contact:  req.Contact,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "Invalid email address", nil)
		case errors.Is(err, service.ErrEmailExists):
			respondError(c, response.CodeBadRequest, "Email already registered", nil)
		case errors.Is(err, service.ErrInvalidContact):
			respondError(c, response.CodeBadRequest, "Invalid contact number", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "Registration failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user": gin.H{
			"id":                user.ID,
			"username":          user.Username,
			"email":             user.Email,
			"membership_status": user.MembershipStatus,
		},
		"token":      token,
		"expires_at": expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// UserLoginRequest is the login payload.
type UserLoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// UserLogin signs a member in. Inactive memberships are rejected.
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.LoginWithRememberMe(req.Email, req.Password, req.RememberMe)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "Invalid email address", nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "Invalid email or password", nil)
		case errors.Is(err, service.ErrMembershipInactive):
			respondError(c, response.CodeUnauthorized, "Membership is inactive", nil)
		default:
			respondError(c, response.CodeInternal, "Login failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user": gin.H{
			"id":                user.ID,
			"username":          user.Username,
			"email":             user.Email,
			"membership_status": user.MembershipStatus,
		},
		"token":      token,
		"expires_at": expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// UserForgotPasswordRequest asks for a reset email.
type UserForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// UserForgotPassword queues a password reset email. Unknown addresses
// get the same response as known ones.
func (h *Handler) UserForgotPassword(c *gin.Context) {
	var req UserForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	if err := h.UserAuthService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "Invalid email address", nil)
		case errors.Is(err, service.ErrResetTokenTooSoon):
			respondError(c, response.CodeTooManyRequests, "Reset email requested too frequently", nil)
		default:
			respondError(c, response.CodeInternal, "Password reset request failed", err)
		}
		return
	}

	response.Success(c, gin.H{"sent": true})
}

// UserResetPasswordRequest redeems a reset token.
type UserResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UserResetPassword sets a new password from a reset token.
func (h *Handler) UserResetPassword(c *gin.Context) {
	var req UserResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	if err := h.UserAuthService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrResetTokenInvalid):
			respondError(c, response.CodeBadRequest, "Reset token invalid or expired", nil)
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "User not found", nil)
		default:
			respondError(c, response.CodeInternal, "Password reset failed", err)
		}
		return
	}

	response.Success(c, gin.H{"reset": true})
}
