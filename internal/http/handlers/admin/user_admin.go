package admin

import (
	"errors"
	"strconv"

	"github.com/smartskincare/api/internal/http/response"
	"github.com/smartskincare/api/internal/logger"
	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/repository"
	"github.com/smartskincare/api/internal/service"

	"github.com/gin-gonic/gin"
)

func userIDParam(c *gin.Context) (uint, bool) {
	rawID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || rawID == 0 {
		respondError(c, response.CodeBadRequest, "Invalid user id", nil)
		return 0, false
	}
	return uint(rawID), true
}

func adminUserView(user *models.User) gin.H {
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
		"card_number":   user.MaskedCardNumber(),
		"last_login_at": user.LastLoginAt,
		"created_at":    user.CreatedAt,
	}
}

// GetAdminUsers lists member accounts.
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	users, total, err := h.UserAdminService.ListUsers(repository.UserListFilter{
		Page:             page,
		PageSize:         pageSize,
		Keyword:          c.Query("keyword"),
		MembershipStatus: c.Query("membership_status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "Failed to load users", err)
		return
	}

	items := make([]gin.H, 0, len(users))
	for i := range users {
		items = append(items, adminUserView(&users[i]))
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, items, pagination)
}

// GetAdminUser returns one member account. Card numbers come back masked.
func (h *Handler) GetAdminUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	user, err := h.UserAdminService.GetUser(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "User not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "Failed to load user", err)
		return
	}

	response.Success(c, adminUserView(user))
}

// SetMembershipStatusRequest flips a membership.
type SetMembershipStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetMembershipStatus activates or deactivates a membership. Inactive
// members cannot sign in.
func (h *Handler) SetMembershipStatus(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	var req SetMembershipStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Bad request", err)
		return
	}

	user, err := h.UserAdminService.SetMembershipStatus(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMembershipStatus):
			respondError(c, response.CodeBadRequest, "Invalid membership status", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "User not found", nil)
		default:
			respondError(c, response.CodeInternal, "Membership update failed", err)
		}
		return
	}

	logger.Infow("admin_membership_status_updated",
		"user_id", user.ID,
		"membership_status", user.MembershipStatus,
	)

	response.Success(c, adminUserView(user))
}

// DeleteAdminUser soft-deletes a member account.
func (h *Handler) DeleteAdminUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}

	if err := h.UserAdminService.DeleteUser(id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "User not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "User delete failed", err)
		return
	}

	response.Success(c, nil)
}
