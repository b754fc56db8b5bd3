package service

import (
	"time"

	"github.com/smartskincare/api/internal/config"
	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/repository"

	"github.com/shopspring/decimal"
)

// CartService manages member carts. One line per product; adding an
// already-carted product bumps its quantity instead of creating a twin.
type CartService struct {
	cfg         *config.Config
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService builds the cart service.
func NewCartService(cfg *config.Config, cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cfg:         cfg,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// CartLine is one cart row with its extended price.
type CartLine struct {
	ProductID   uint         `json:"product_id"`
	ProductName string       `json:"product_name"`
	ProductCode string       `json:"product_code"`
	ImageURL    string       `json:"image_url"`
	UnitPrice   models.Money `json:"unit_price"`
	Quantity    int          `json:"quantity"`
	TotalPrice  models.Money `json:"total_price"`
}

// CartTotals is the priced-out cart.
type CartTotals struct {
	Subtotal    models.Money `json:"subtotal"`
	TaxAmount   models.Money `json:"tax_amount"`
	ShippingFee models.Money `json:"shipping_fee"`
	GrandTotal  models.Money `json:"grand_total"`
}

// CartView is the cart plus its totals.
type CartView struct {
	Items  []CartLine `json:"items"`
	Totals CartTotals `json:"totals"`
}

// AddItem puts a product in the cart. A line that already exists has the
// quantity added onto it.
func (s *CartService) AddItem(userID, productID uint, quantity int) error {
	if userID == 0 || productID == 0 || quantity <= 0 {
		return ErrInvalidCartItem
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil || !product.IsActive {
		return ErrProductNotAvailable
	}

	existing, err := s.cartRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return err
	}

	now := time.Now()
	if existing != nil {
		quantity += existing.Quantity
	}
	line := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		UpdatedAt: now,
	}
	return s.cartRepo.Upsert(line)
}

// IncrementItem bumps a line by one.
func (s *CartService) IncrementItem(userID, productID uint) error {
	line, err := s.requireLine(userID, productID)
	if err != nil {
		return err
	}
	return s.cartRepo.UpdateQuantity(userID, productID, line.Quantity+1)
}

// DecrementItem drops a line by one. The quantity floor is 1; a decrement
// at the floor changes nothing. Removal is an explicit action.
func (s *CartService) DecrementItem(userID, productID uint) error {
	line, err := s.requireLine(userID, productID)
	if err != nil {
		return err
	}
	if line.Quantity <= 1 {
		return nil
	}
	return s.cartRepo.UpdateQuantity(userID, productID, line.Quantity-1)
}

// SetQuantity sets a line to an exact quantity, still floored at 1.
func (s *CartService) SetQuantity(userID, productID uint, quantity int) error {
	if quantity < 1 {
		return ErrInvalidCartItem
	}
	if _, err := s.requireLine(userID, productID); err != nil {
		return err
	}
	return s.cartRepo.UpdateQuantity(userID, productID, quantity)
}

// RemoveItem deletes a line outright.
func (s *CartService) RemoveItem(userID, productID uint) error {
	if userID == 0 || productID == 0 {
		return ErrInvalidCartItem
	}
	return s.cartRepo.DeleteByUserAndProduct(userID, productID)
}

// Clear empties the member's cart.
func (s *CartService) Clear(userID uint) error {
	if userID == 0 {
		return ErrInvalidCartItem
	}
	return s.cartRepo.ClearByUser(userID)
}

// GetCart prices out the member's cart.
func (s *CartService) GetCart(userID uint) (*CartView, error) {
	if userID == 0 {
		return nil, ErrInvalidCartItem
	}
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		unit := item.Product.Price
		total := models.NewMoneyFromDecimal(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
		lines = append(lines, CartLine{
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			ProductCode: item.Product.Code,
			ImageURL:    item.Product.ImageURL,
			UnitPrice:   unit,
			Quantity:    item.Quantity,
			TotalPrice:  total,
		})
	}

	return &CartView{
		Items:  lines,
		Totals: computeCartTotals(s.cfg.Checkout, lines),
	}, nil
}

func (s *CartService) requireLine(userID, productID uint) (*models.CartItem, error) {
	if userID == 0 || productID == 0 {
		return nil, ErrInvalidCartItem
	}
	line, err := s.cartRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, ErrNotFound
	}
	return line, nil
}

// computeCartTotals prices a set of lines: subtotal, tax on the subtotal,
// and a flat shipping fee waived once subtotal plus tax reaches the free
// shipping minimum.
func computeCartTotals(cfg config.CheckoutConfig, lines []CartLine) CartTotals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.TotalPrice.Decimal)
	}

	taxRate := resolveDecimal(cfg.TaxRatePercent, "6").Div(decimal.NewFromInt(100))
	tax := subtotal.Mul(taxRate).Round(2)

	shipping := decimal.Zero
	if subtotal.GreaterThan(decimal.Zero) {
		freeMinimum := resolveDecimal(cfg.FreeShippingMinimum, "50.00")
		if subtotal.Add(tax).LessThan(freeMinimum) {
			shipping = resolveDecimal(cfg.ShippingFee, "5.90")
		}
	}

	return CartTotals{
		Subtotal:    models.NewMoneyFromDecimal(subtotal),
		TaxAmount:   models.NewMoneyFromDecimal(tax),
		ShippingFee: models.NewMoneyFromDecimal(shipping),
		GrandTotal:  models.NewMoneyFromDecimal(subtotal.Add(tax).Add(shipping)),
	}
}

func resolveDecimal(raw, fallback string) decimal.Decimal {
	if d, err := decimal.NewFromString(raw); err == nil {
		return d
	}
	return decimal.RequireFromString(fallback)
}
