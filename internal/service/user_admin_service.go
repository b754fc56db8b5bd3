package service

import (
	"context"
	"strings"

	"github.com/smartskincare/api/internal/cache"
	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/logger"
	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/repository"
)

// UserAdminService is the back-office view over members.
type UserAdminService struct {
	userRepo repository.UserRepository
}

// NewUserAdminService builds the member admin service.
func NewUserAdminService(userRepo repository.UserRepository) *UserAdminService {
	return &UserAdminService{userRepo: userRepo}
}

// ListUsers returns members matching the filter.
func (s *UserAdminService) ListUsers(filter repository.UserListFilter) ([]models.User, int64, error) {
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	return s.userRepo.List(filter)
}

// GetUser fetches one member.
func (s *UserAdminService) GetUser(id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// SetMembershipStatus flips the membership gate. Deactivation also
// invalidates the member's outstanding sessions.
func (s *UserAdminService) SetMembershipStatus(id uint, status string) (*models.User, error) {
	normalized, err := normalizeMembershipStatus(status)
	if err != nil {
		return nil, err
	}

	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}
	if user.MembershipStatus == normalized {
		return user, nil
	}

	if err := s.userRepo.UpdateMembershipStatus(id, normalized); err != nil {
		return nil, err
	}

	refreshed, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if refreshed != nil {
		user = refreshed
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))

	logger.Infow("membership_status_changed",
		"user_id", id,
		"status", normalized,
	)
	return user, nil
}

// DeleteUser removes a member account.
func (s *UserAdminService) DeleteUser(id uint) error {
	if _, err := s.GetUser(id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(id); err != nil {
		return err
	}
	_ = cache.DelUserAuthState(context.Background(), id)
	return nil
}

func normalizeMembershipStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case strings.ToLower(constants.MembershipStatusActive):
		return constants.MembershipStatusActive, nil
	case strings.ToLower(constants.MembershipStatusInactive):
		return constants.MembershipStatusInactive, nil
	default:
		return "", ErrInvalidMembershipStatus
	}
}
