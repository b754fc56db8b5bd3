package cache

import (
	"context"
	"fmt"
	"time"
)

// CheckoutSummaryState is the server-side scratchpad between the cart
// review step and payment confirmation. One per member; rebuilding the
// summary replaces it.
type CheckoutSummaryState struct {
	Token       string              `json:"token"`
	UserID      uint                `json:"user_id"`
	Items       []CheckoutItemState `json:"items"`
	Subtotal    string              `json:"subtotal"`
	TaxAmount   string              `json:"tax_amount"`
	ShippingFee string              `json:"shipping_fee"`
	GrandTotal  string              `json:"grand_total"`
	CreatedAt   int64               `json:"created_at"`
}

// CheckoutItemState is one summarized cart line.
type CheckoutItemState struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	TotalPrice  string `json:"total_price"`
}

func checkoutSummaryKey(userID uint) string {
	return fmt.Sprintf("checkout:summary:%d", userID)
}

// GetCheckoutSummary reads the member's pending summary.
func GetCheckoutSummary(ctx context.Context, userID uint) (*CheckoutSummaryState, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	var state CheckoutSummaryState
	hit, err := GetJSON(ctx, checkoutSummaryKey(userID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetCheckoutSummary writes the member's pending summary.
func SetCheckoutSummary(ctx context.Context, state *CheckoutSummaryState, ttl time.Duration) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, checkoutSummaryKey(state.UserID), state, ttl)
}

// DelCheckoutSummary drops the member's pending summary.
func DelCheckoutSummary(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, checkoutSummaryKey(userID))
}

// PasswordResetState is an issued reset token pending redemption.
type PasswordResetState struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	CreatedAt int64  `json:"created_at"`
}

func passwordResetKey(token string) string {
	return fmt.Sprintf("auth:reset:%s", token)
}

// GetPasswordReset reads a pending reset token.
func GetPasswordReset(ctx context.Context, token string) (*PasswordResetState, bool, error) {
	if token == "" {
		return nil, false, nil
	}
	var state PasswordResetState
	hit, err := GetJSON(ctx, passwordResetKey(token), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetPasswordReset stores a reset token until it expires.
func SetPasswordReset(ctx context.Context, state *PasswordResetState, ttl time.Duration) error {
	if state == nil || state.Token == "" {
		return nil
	}
	return SetJSON(ctx, passwordResetKey(state.Token), state, ttl)
}

// DelPasswordReset burns a reset token after use.
func DelPasswordReset(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return Del(ctx, passwordResetKey(token))
}
