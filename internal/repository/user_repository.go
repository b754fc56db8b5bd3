package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/models"

	"gorm.io/gorm"
)

// UserRepository is the member data access interface.
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	List(filter UserListFilter) ([]models.User, int64, error)
	UpdateMembershipStatus(userID uint, status string) error
	Delete(id uint) error
}

// GormUserRepository is the GORM implementation.
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a user repository.
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByEmail fetches a member by email. Returns (nil, nil) when missing.
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByID fetches a member by id.
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts a member.
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update saves a member.
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// List returns members matching the filter.
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})

	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("email LIKE ? OR username LIKE ?", like, like)
	}
	if filter.MembershipStatus != "" {
		query = query.Where("membership_status = ?", filter.MembershipStatus)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var users []models.User
	if err := query.Order("id DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateMembershipStatus flips the membership gate. Deactivating also
// invalidates outstanding tokens.
func (r *GormUserRepository) UpdateMembershipStatus(userID uint, status string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"membership_status": status,
		"updated_at":        now,
	}
	if strings.EqualFold(strings.TrimSpace(status), constants.MembershipStatusInactive) {
		updates["token_invalid_before"] = now
		updates["token_version"] = gorm.Expr("token_version + 1")
	}
	return r.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

// Delete soft-deletes a member.
func (r *GormUserRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.User{}, id).Error
}
