package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smartskincare/api/internal/cache"
	"github.com/smartskincare/api/internal/config"
	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/logger"
	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/queue"
	"github.com/smartskincare/api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckoutService runs the two-step checkout pipeline: a priced summary
// held server-side under a one-time token, then a payment confirmation
// that commits the order and clears the cart in one transaction. The
// token doubles as the idempotency key; a replayed confirmation returns
// the already-committed order instead of a twin.
type CheckoutService struct {
	cfg         *config.Config
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	queueClient *queue.Client
}

// NewCheckoutService builds the checkout service.
func NewCheckoutService(
	cfg *config.Config,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	queueClient *queue.Client,
) *CheckoutService {
	return &CheckoutService{
		cfg:         cfg,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		queueClient: queueClient,
	}
}

// CheckoutSummary is the priced cart handed back to the client for
// review before payment.
type CheckoutSummary struct {
	Token       string     `json:"token"`
	Items       []CartLine `json:"items"`
	Totals      CartTotals `json:"totals"`
	Currency    string     `json:"currency"`
	ExpiresInSc int        `json:"expires_in_seconds"`
}

// BuildSummary prices the member's cart and stores the result under a
// fresh token. Rebuilding replaces any previous summary.
func (s *CheckoutService) BuildSummary(ctx context.Context, userID uint) (*CheckoutSummary, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}

	lines, err := s.priceCart(userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}
	totals := computeCartTotals(s.cfg.Checkout, lines)

	token := uuid.NewString()
	state := &cache.CheckoutSummaryState{
		Token:       token,
		UserID:      userID,
		Items:       toItemStates(lines),
		Subtotal:    totals.Subtotal.String(),
		TaxAmount:   totals.TaxAmount.String(),
		ShippingFee: totals.ShippingFee.String(),
		GrandTotal:  totals.GrandTotal.String(),
		CreatedAt:   time.Now().Unix(),
	}
	ttl := s.summaryTTL()
	if err := cache.SetCheckoutSummary(ctx, state, ttl); err != nil {
		return nil, err
	}

	return &CheckoutSummary{
		Token:       token,
		Items:       lines,
		Totals:      totals,
		Currency:    constants.SiteCurrency,
		ExpiresInSc: int(ttl.Seconds()),
	}, nil
}

// ConfirmPaymentInput carries the payment step. Card fields are optional
// when the member already has a card on file.
type ConfirmPaymentInput struct {
	UserID     uint
	Token      string
	CardHolder string
	CardNumber string
	CardExpiry string
	CardCVV    string
}

// ConfirmPayment commits the checkout: the order is created as Paid and
// the cart cleared atomically. Replays with a used token return the
// original order.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrNotFound
	}
	token := strings.TrimSpace(input.Token)
	if token == "" {
		return nil, ErrCheckoutSummaryMissing
	}

	// Fast path for replays: the token may already be committed.
	if existing, err := s.orderRepo.GetByCheckoutToken(token); err != nil {
		return nil, err
	} else if existing != nil {
		if existing.UserID != input.UserID {
			return nil, ErrNotFound
		}
		return existing, nil
	}

	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if err := s.verifyPaymentCard(user, input); err != nil {
		return nil, err
	}

	state, err := s.loadSummary(ctx, input.UserID, token)
	if err != nil {
		return nil, err
	}

	order, items, err := s.buildOrder(user, token, state)
	if err != nil {
		return nil, err
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(order, items); err != nil {
			return err
		}
		return s.cartRepo.WithTx(tx).ClearByUser(input.UserID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateCheckoutToken) {
			committed, lookupErr := s.orderRepo.GetByCheckoutToken(token)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if committed != nil && committed.UserID == input.UserID {
				return committed, nil
			}
		}
		return nil, err
	}

	_ = cache.DelCheckoutSummary(ctx, input.UserID)

	if err := s.queueClient.EnqueueOrderReceiptEmail(queue.OrderReceiptEmailPayload{OrderID: order.ID}); err != nil {
		logger.Warnw("order_receipt_email_enqueue_failed",
			"order_no", order.OrderNo,
			"error", err,
		)
	}

	logger.Infow("checkout_committed",
		"order_no", order.OrderNo,
		"user_id", input.UserID,
		"total", order.TotalAmount.String(),
	)
	return order, nil
}

// GetConfirmation fetches the member's committed order for the
// confirmation page.
func (s *CheckoutService) GetConfirmation(userID uint, orderNo string) (*models.Order, error) {
	if userID == 0 || strings.TrimSpace(orderNo) == "" {
		return nil, ErrNotFound
	}
	order, err := s.orderRepo.GetByOrderNoAndUser(orderNo, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return order, nil
}

// loadSummary reads the stored summary for the token. With the cache
// offline the summary is recomputed from the live cart; the unique
// token column still guards against double commits.
func (s *CheckoutService) loadSummary(ctx context.Context, userID uint, token string) (*cache.CheckoutSummaryState, error) {
	state, hit, err := cache.GetCheckoutSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	if hit && state != nil {
		if state.Token != token {
			return nil, ErrCheckoutTokenMismatch
		}
		return state, nil
	}
	if cache.Enabled() {
		return nil, ErrCheckoutSummaryMissing
	}

	lines, err := s.priceCart(userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}
	totals := computeCartTotals(s.cfg.Checkout, lines)
	return &cache.CheckoutSummaryState{
		Token:       token,
		UserID:      userID,
		Items:       toItemStates(lines),
		Subtotal:    totals.Subtotal.String(),
		TaxAmount:   totals.TaxAmount.String(),
		ShippingFee: totals.ShippingFee.String(),
		GrandTotal:  totals.GrandTotal.String(),
		CreatedAt:   time.Now().Unix(),
	}, nil
}

func (s *CheckoutService) buildOrder(user *models.User, token string, state *cache.CheckoutSummaryState) (*models.Order, []models.OrderItem, error) {
	if len(state.Items) == 0 {
		return nil, nil, ErrCartEmpty
	}

	items := make([]models.OrderItem, 0, len(state.Items))
	for _, it := range state.Items {
		unit, err := decimal.NewFromString(it.UnitPrice)
		if err != nil {
			return nil, nil, err
		}
		lineTotal, err := decimal.NewFromString(it.TotalPrice)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, models.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   models.NewMoneyFromDecimal(unit),
			Quantity:    it.Quantity,
			TotalPrice:  models.NewMoneyFromDecimal(lineTotal),
		})
	}

	subtotal, err := decimal.NewFromString(state.Subtotal)
	if err != nil {
		return nil, nil, err
	}
	tax, err := decimal.NewFromString(state.TaxAmount)
	if err != nil {
		return nil, nil, err
	}
	shipping, err := decimal.NewFromString(state.ShippingFee)
	if err != nil {
		return nil, nil, err
	}
	total, err := decimal.NewFromString(state.GrandTotal)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	order := &models.Order{
		OrderNo:        generateOrderNo(),
		CheckoutToken:  token,
		UserID:         user.ID,
		Status:         constants.OrderStatusPaid,
		Currency:       constants.SiteCurrency,
		Subtotal:       models.NewMoneyFromDecimal(subtotal),
		TaxAmount:      models.NewMoneyFromDecimal(tax),
		ShippingFee:    models.NewMoneyFromDecimal(shipping),
		TotalAmount:    models.NewMoneyFromDecimal(total),
		ShipAddress:    user.Address,
		ShipCity:       user.City,
		ShipPostalCode: user.PostalCode,
		ShipCountry:    user.Country,
		PaidAt:         &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return order, items, nil
}

// verifyPaymentCard accepts either freshly supplied card details or the
// card on file.
func (s *CheckoutService) verifyPaymentCard(user *models.User, input ConfirmPaymentInput) error {
	supplied := strings.TrimSpace(input.CardNumber) != ""
	if supplied {
		return validateBillingCard(BillingCardInput{
			Holder: input.CardHolder,
			Number: input.CardNumber,
			Expiry: input.CardExpiry,
			CVV:    input.CardCVV,
		})
	}
	if user.CardNumber == "" {
		return ErrInvalidCard
	}
	return nil
}

func (s *CheckoutService) priceCart(userID uint) ([]CartLine, error) {
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		product := item.Product
		if product == nil {
			fetched, err := s.productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, err
			}
			product = fetched
		}
		if product == nil || !product.IsActive {
			return nil, ErrProductNotAvailable
		}
		total := models.NewMoneyFromDecimal(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		lines = append(lines, CartLine{
			ProductID:   item.ProductID,
			ProductName: product.Name,
			ProductCode: product.Code,
			ImageURL:    product.ImageURL,
			UnitPrice:   product.Price,
			Quantity:    item.Quantity,
			TotalPrice:  total,
		})
	}
	return lines, nil
}

func (s *CheckoutService) summaryTTL() time.Duration {
	minutes := s.cfg.Checkout.SummaryExpireMinutes
	if minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

func toItemStates(lines []CartLine) []cache.CheckoutItemState {
	states := make([]cache.CheckoutItemState, 0, len(lines))
	for _, line := range lines {
		states = append(states, cache.CheckoutItemState{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice.String(),
			Quantity:    line.Quantity,
			TotalPrice:  line.TotalPrice.String(),
		})
	}
	return states
}
