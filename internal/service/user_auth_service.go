package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/smartskincare/api/internal/cache"
	"github.com/smartskincare/api/internal/config"
	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/queue"
	"github.com/smartskincare/api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserAuthService handles member authentication and profile management.
type UserAuthService struct {
	cfg         *config.Config
	userRepo    repository.UserRepository
	queueClient *queue.Client
}

// NewUserAuthService builds the member auth service.
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository, queueClient *queue.Client) *UserAuthService {
	return &UserAuthService{
		cfg:         cfg,
		userRepo:    userRepo,
		queueClient: queueClient,
	}
}

// UserJWTClaims are the member token claims.
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateUserJWT issues a member token. Zero expireHours falls back to
// the configured default.
func (s *UserAuthService) GenerateUserJWT(user *models.User, expireHours int) (string, time.Time, error) {
	resolvedHours := expireHours
	if resolvedHours <= 0 {
		resolvedHours = resolveUserJWTExpireHours(s.cfg.UserJWT)
	}
	expiresAt := time.Now().Add(time.Duration(resolvedHours) * time.Hour)
	claims := UserJWTClaims{
		UserID:       user.ID,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseUserJWT validates and decodes a member token.
func (s *UserAuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// RegisterInput carries a signup request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Contact  string
}

// Register creates a member account and signs it in. New members start
// with an Active membership.
func (s *UserAuthService) Register(input RegisterInput) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, "", time.Time{}, err
	}
	contact := strings.TrimSpace(input.Contact)
	if contact != "" {
		if err := validateContact(contact); err != nil {
			return nil, "", time.Time{}, err
		}
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if exist != nil {
		return nil, "", time.Time{}, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	username := strings.TrimSpace(input.Username)
	if username == "" {
		username = resolveUsernameFromEmail(normalized)
	}
	user := &models.User{
		Username:         username,
		Email:            normalized,
		PasswordHash:     string(hashedPassword),
		Contact:          contact,
		MembershipStatus: constants.MembershipStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.GenerateUserJWT(user, 0)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))

	return user, token, expiresAt, nil
}

// Login authenticates a member.
func (s *UserAuthService) Login(email, password string) (*models.User, string, time.Time, error) {
	return s.LoginWithRememberMe(email, password, false)
}

// LoginWithRememberMe authenticates a member. Inactive memberships are
// refused before the password check result is revealed.
func (s *UserAuthService) LoginWithRememberMe(email, password string, rememberMe bool) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !strings.EqualFold(user.MembershipStatus, constants.MembershipStatusActive) {
		return nil, "", time.Time{}, ErrMembershipInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	expireHours := resolveUserJWTExpireHours(s.cfg.UserJWT)
	if rememberMe {
		expireHours = resolveRememberMeExpireHours(s.cfg.UserJWT)
	}
	token, expiresAt, err := s.GenerateUserJWT(user, expireHours)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))

	return user, token, expiresAt, nil
}

// RequestPasswordReset issues a reset token and queues the email. Always
// succeeds for unknown addresses so the endpoint does not leak accounts.
func (s *UserAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	throttled, err := s.resetRequestThrottled(ctx, user.ID)
	if err != nil {
		return err
	}
	if throttled {
		return ErrResetTokenTooSoon
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	state := &cache.PasswordResetState{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		CreatedAt: time.Now().Unix(),
	}
	ttl := time.Duration(resolveResetExpireMinutes(s.cfg.Email.ResetToken)) * time.Minute
	if err := cache.SetPasswordReset(ctx, state, ttl); err != nil {
		return err
	}
	if err := s.markResetRequested(ctx, user.ID); err != nil {
		return err
	}

	return s.queueClient.EnqueuePasswordResetEmail(queue.PasswordResetEmailPayload{
		UserID: user.ID,
		Email:  user.Email,
		Token:  token,
	})
}

// ResetPassword redeems a reset token. The token is burned and every
// outstanding session invalidated.
func (s *UserAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrResetTokenInvalid
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}

	state, hit, err := cache.GetPasswordReset(ctx, token)
	if err != nil {
		return err
	}
	if !hit || state == nil {
		return ErrResetTokenInvalid
	}

	user, err := s.userRepo.GetByID(state.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrResetTokenInvalid
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)
	now := time.Now()
	user.UpdatedAt = now
	user.TokenVersion++
	user.TokenInvalidBefore = &now
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	_ = cache.DelPasswordReset(ctx, token)
	_ = cache.SetUserAuthState(ctx, cache.BuildUserAuthState(user))
	return nil
}

// ChangePassword rotates a signed-in member's password.
func (s *UserAuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	if userID == 0 {
		return ErrNotFound
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidPassword
	}

	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashedPassword)
	now := time.Now()
	user.UpdatedAt = now
	user.TokenVersion++
	user.TokenInvalidBefore = &now
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return nil
}

// UpdateProfile updates the mutable profile fields. Nil pointers leave
// the field untouched.
func (s *UserAuthService) UpdateProfile(userID uint, username, contact *string) (*models.User, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	updated := false
	if username != nil {
		trimmed := strings.TrimSpace(*username)
		if trimmed != "" {
			user.Username = trimmed
			updated = true
		}
	}

	if contact != nil {
		trimmed := strings.TrimSpace(*contact)
		if trimmed != "" {
			if err := validateContact(trimmed); err != nil {
				return nil, err
			}
			user.Contact = trimmed
			updated = true
		}
	}

	if !updated {
		return nil, ErrProfileEmpty
	}

	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// AddressInput carries a shipping address update.
type AddressInput struct {
	Address    string
	City       string
	PostalCode string
	Country    string
}

// UpdateAddress replaces the member's shipping address.
func (s *UserAuthService) UpdateAddress(userID uint, input AddressInput) (*models.User, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	user.Address = strings.TrimSpace(input.Address)
	user.City = strings.TrimSpace(input.City)
	user.PostalCode = strings.TrimSpace(input.PostalCode)
	user.Country = strings.TrimSpace(input.Country)
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// BillingCardInput carries a card update. The stored number and CVV are
// never returned; reads go through MaskedCardNumber.
type BillingCardInput struct {
	Holder string
	Number string
	Expiry string
	CVV    string
}

// UpdateBillingCard validates and stores the card on file.
func (s *UserAuthService) UpdateBillingCard(userID uint, input BillingCardInput) (*models.User, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	if err := validateBillingCard(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	user.CardHolder = strings.TrimSpace(input.Holder)
	user.CardNumber = digitsOnly(input.Number)
	user.CardExpiry = strings.TrimSpace(input.Expiry)
	user.CardCVV = strings.TrimSpace(input.CVV)
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID fetches a member.
func (s *UserAuthService) GetUserByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	return s.userRepo.GetByID(id)
}

type resetThrottleState struct {
	RequestedAt int64 `json:"requested_at"`
}

func resetThrottleKey(userID uint) string {
	return fmt.Sprintf("auth:reset_throttle:%d", userID)
}

func (s *UserAuthService) resetRequestThrottled(ctx context.Context, userID uint) (bool, error) {
	var state resetThrottleState
	hit, err := cache.GetJSON(ctx, resetThrottleKey(userID), &state)
	if err != nil || !hit {
		return false, err
	}
	interval := time.Duration(resolveResetSendIntervalSeconds(s.cfg.Email.ResetToken)) * time.Second
	return time.Since(time.Unix(state.RequestedAt, 0)) < interval, nil
}

func (s *UserAuthService) markResetRequested(ctx context.Context, userID uint) error {
	interval := time.Duration(resolveResetSendIntervalSeconds(s.cfg.Email.ResetToken)) * time.Second
	return cache.SetJSON(ctx, resetThrottleKey(userID), resetThrottleState{RequestedAt: time.Now().Unix()}, interval)
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// NormalizeEmail exposes the canonical email form to handlers.
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}

// validateContact accepts 10 to 15 digits, optionally with a leading +.
func validateContact(contact string) error {
	trimmed := strings.TrimSpace(contact)
	trimmed = strings.TrimPrefix(trimmed, "+")
	if len(trimmed) < 10 || len(trimmed) > 15 {
		return ErrInvalidContact
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return ErrInvalidContact
		}
	}
	return nil
}

func validateBillingCard(input BillingCardInput) error {
	if strings.TrimSpace(input.Holder) == "" {
		return ErrInvalidCard
	}
	number := digitsOnly(input.Number)
	if len(number) != 16 {
		return ErrInvalidCard
	}
	cvv := strings.TrimSpace(input.CVV)
	if len(cvv) < 3 || len(cvv) > 4 {
		return ErrInvalidCard
	}
	for _, r := range cvv {
		if r < '0' || r > '9' {
			return ErrInvalidCard
		}
	}
	if !isValidCardExpiry(input.Expiry) {
		return ErrInvalidCard
	}
	return nil
}

// isValidCardExpiry accepts MM/YY or MM/YYYY.
func isValidCardExpiry(expiry string) bool {
	trimmed := strings.TrimSpace(expiry)
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 {
		return false
	}
	month := parts[0]
	year := parts[1]
	if len(month) != 2 || (len(year) != 2 && len(year) != 4) {
		return false
	}
	for _, r := range month + year {
		if r < '0' || r > '9' {
			return false
		}
	}
	return month >= "01" && month <= "12"
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func resolveUserJWTExpireHours(cfg config.JWTConfig) int {
	if cfg.ExpireHours <= 0 {
		return 24
	}
	return cfg.ExpireHours
}

func resolveRememberMeExpireHours(cfg config.JWTConfig) int {
	if cfg.RememberMeExpireHours <= 0 {
		return resolveUserJWTExpireHours(cfg)
	}
	return cfg.RememberMeExpireHours
}

func resolveUsernameFromEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) == 2 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0])
	}
	return email
}

func resolveResetExpireMinutes(cfg config.ResetTokenConfig) int {
	if cfg.ExpireMinutes <= 0 {
		return 30
	}
	return cfg.ExpireMinutes
}

func resolveResetSendIntervalSeconds(cfg config.ResetTokenConfig) int {
	if cfg.SendIntervalSeconds <= 0 {
		return 60
	}
	return cfg.SendIntervalSeconds
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
