package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/smartskincare/api/internal/config"
	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/queue"
	"github.com/smartskincare/api/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func testUserAuthConfig() *config.Config {
	return &config.Config{
		UserJWT: config.JWTConfig{
			SecretKey:             "test-secret",
			ExpireHours:           24,
			RememberMeExpireHours: 168,
		},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{
				MinLength:     8,
				RequireUpper:  true,
				RequireLower:  true,
				RequireNumber: true,
			},
		},
	}
}

func setupUserAuthServiceTest(t *testing.T) (*UserAuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:user_auth_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}
	return NewUserAuthService(testUserAuthConfig(), repository.NewUserRepository(db), queueClient), db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	user, token, _, err := svc.Register(RegisterInput{
		Username: "aina",
		Email:    "Aina@Example.com",
		Password: "Sunscreen123",
		Contact:  "0123456789",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "aina@example.com" {
		t.Errorf("email must be normalized, got %s", user.Email)
	}
	if user.MembershipStatus != constants.MembershipStatusActive {
		t.Errorf("new members start Active, got %s", user.MembershipStatus)
	}
	if token == "" {
		t.Error("register must sign the member in")
	}

	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("claims user id want %d got %d", user.ID, claims.UserID)
	}

	if _, _, _, err := svc.Login("aina@example.com", "Sunscreen123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, _, _, err := svc.Login("aina@example.com", "wrong-pass"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Register(RegisterInput{Email: "aina@example.com", Password: "Sunscreen123"}); err != ErrEmailExists {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestLoginMembershipGate(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	if _, _, _, err := svc.Register(RegisterInput{
		Email:    "mei@example.com",
		Password: "Sunscreen123",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := db.Model(&models.User{}).Where("email = ?", "mei@example.com").
		Update("membership_status", constants.MembershipStatusInactive).Error; err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	_, _, _, err := svc.Login("mei@example.com", "Sunscreen123")
	if err != ErrMembershipInactive {
		t.Fatalf("expected ErrMembershipInactive, got %v", err)
	}
}

func TestRegisterPasswordPolicy(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	_, _, _, err := svc.Register(RegisterInput{
		Email:    "weak@example.com",
		Password: "short",
	})
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestChangePasswordInvalidatesTokens(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	user, _, _, err := svc.Register(RegisterInput{
		Email:    "aina@example.com",
		Password: "Sunscreen123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	before := user.TokenVersion

	if err := svc.ChangePassword(user.ID, "wrong", "Moisturizer456"); err != ErrInvalidPassword {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "Sunscreen123", "Moisturizer456"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	refreshed, err := svc.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("get user failed: %v", err)
	}
	if refreshed.TokenVersion != before+1 {
		t.Errorf("token version must bump, want %d got %d", before+1, refreshed.TokenVersion)
	}
	if refreshed.TokenInvalidBefore == nil {
		t.Error("token invalid-before must be set")
	}

	if _, _, _, err := svc.Login("aina@example.com", "Moisturizer456"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestUpdateBillingCardValidation(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	user, _, _, err := svc.Register(RegisterInput{
		Email:    "aina@example.com",
		Password: "Sunscreen123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	bad := []BillingCardInput{
		{Holder: "", Number: "4111111111111111", Expiry: "12/27", CVV: "123"},
		{Holder: "Aina", Number: "1234", Expiry: "12/27", CVV: "123"},
		{Holder: "Aina", Number: "4111111111111111", Expiry: "13/27", CVV: "123"},
		{Holder: "Aina", Number: "4111111111111111", Expiry: "1227", CVV: "123"},
		{Holder: "Aina", Number: "4111111111111111", Expiry: "12/27", CVV: "12"},
		{Holder: "Aina", Number: "4111111111111111", Expiry: "12/27", CVV: "12345"},
	}
	for i, input := range bad {
		if _, err := svc.UpdateBillingCard(user.ID, input); err != ErrInvalidCard {
			t.Errorf("case %d: expected ErrInvalidCard, got %v", i, err)
		}
	}

	updated, err := svc.UpdateBillingCard(user.ID, BillingCardInput{
		Holder: "Aina Binti Ahmad",
		Number: "4111 1111 1111 1111",
		Expiry: "12/27",
		CVV:    "123",
	})
	if err != nil {
		t.Fatalf("valid card rejected: %v", err)
	}
	if updated.CardNumber != "4111111111111111" {
		t.Errorf("number must be stored digits-only, got %q", updated.CardNumber)
	}
	if got := updated.MaskedCardNumber(); got != "**** **** **** 1111" {
		t.Errorf("masked number want **** **** **** 1111 got %q", got)
	}
}

func TestValidateContact(t *testing.T) {
	valid := []string{"0123456789", "+60123456789", "601234567890123"}
	for _, v := range valid {
		if err := validateContact(v); err != nil {
			t.Errorf("contact %q should pass, got %v", v, err)
		}
	}

	invalid := []string{"12345", "abcdefghij", "0123-456-789", "12345678901234567"}
	for _, v := range invalid {
		if err := validateContact(v); err != ErrInvalidContact {
			t.Errorf("contact %q should fail, got %v", v, err)
		}
	}
}

func TestUpdateAddress(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	user, _, _, err := svc.Register(RegisterInput{
		Email:    "aina@example.com",
		Password: "Sunscreen123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	updated, err := svc.UpdateAddress(user.ID, AddressInput{
		Address:    "12 Jalan Melur",
		City:       "Kuala Lumpur",
		PostalCode: "50480",
		Country:    "Malaysia",
	})
	if err != nil {
		t.Fatalf("update address failed: %v", err)
	}
	if updated.City != "Kuala Lumpur" || updated.PostalCode != "50480" {
		t.Fatalf("address not stored: %+v", updated)
	}
}
