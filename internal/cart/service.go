package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/embervale/backend-vapor/internal/catalog"
	"github.com/embervale/backend-vapor/internal/pricing"
)

// ErrNotFound indicates the requested cart could not be located or expired.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// ErrOutOfStock is returned when adding a product that is not purchasable.
var ErrOutOfStock = errors.New("product out of stock")

// Item is one line of a cart snapshot. The unit price is resolved from the
// catalog when the line is created and frozen until checkout.
type Item struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int64           `json:"quantity"`
}

// Cart is a customer's working cart. Carts live in Redis under a TTL and are
// destroyed at checkout.
type Cart struct {
	ID         uuid.UUID `json:"id"`
	Items      []Item    `json:"items"`
	CouponCode string    `json:"couponCode,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Lines converts the cart snapshot into pricing engine input.
func (c Cart) Lines() []pricing.LineItem {
	lines := make([]pricing.LineItem, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, pricing.LineItem{UnitPrice: it.UnitPrice, Quantity: it.Quantity})
	}
	return lines
}

// Subtotal sums unit price times quantity over lines with positive quantity.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		if it.Quantity <= 0 {
			continue
		}
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)))
	}
	return total
}

// Products resolves product data for cart additions.
type Products interface {
	ByID(ctx context.Context, id uuid.UUID) (catalog.Product, error)
}

// Service encapsulates cart domain operations on the Redis store.
type Service struct {
	R        *redis.Client
	Products Products
	TTL      time.Duration
	Now      func() time.Time
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func cartKey(id uuid.UUID) string {
	return "cart:" + id.String()
}

// Create initialises an empty cart with a fresh TTL.
func (s *Service) Create(ctx context.Context) (Cart, error) {
	if s == nil || s.R == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	now := s.now()
	cart := Cart{ID: uuid.New(), Items: []Item{}, CreatedAt: now, UpdatedAt: now}
	if err := s.save(ctx, cart); err != nil {
		return Cart{}, err
	}
	return cart, nil
}

// Get loads a cart and refreshes its TTL.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Cart, error) {
	if s == nil || s.R == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	raw, err := s.R.Get(ctx, cartKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, ErrNotFound
	}
	if err != nil {
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	var cart Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	_ = s.R.Expire(ctx, cartKey(id), s.ttl()).Err()
	return cart, nil
}

// AddItem resolves the product price and inserts or increments a line.
func (s *Service) AddItem(ctx context.Context, id, productID uuid.UUID, qty int64) (Cart, error) {
	if qty <= 0 {
		return Cart{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	cart, err := s.Get(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += qty
			return cart, s.save(ctx, s.touch(cart))
		}
	}
	if s.Products == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	product, err := s.Products.ByID(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	if !product.InStock {
		return Cart{}, ErrOutOfStock
	}
	unitPrice := product.UnitPrice
	if unitPrice.IsNegative() {
		unitPrice = decimal.Zero
	}
	cart.Items = append(cart.Items, Item{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: unitPrice,
		Quantity:  qty,
	})
	return cart, s.save(ctx, s.touch(cart))
}

// UpdateItem replaces the quantity of an existing line.
func (s *Service) UpdateItem(ctx context.Context, id, productID uuid.UUID, qty int64) (Cart, error) {
	if qty <= 0 {
		return Cart{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	cart, err := s.Get(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = qty
			return cart, s.save(ctx, s.touch(cart))
		}
	}
	return Cart{}, ErrNotFound
}

// RemoveItem deletes a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, id, productID uuid.UUID) (Cart, error) {
	cart, err := s.Get(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	kept := cart.Items[:0]
	found := false
	for _, it := range cart.Items {
		if it.ProductID == productID {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		return Cart{}, ErrNotFound
	}
	cart.Items = kept
	return cart, s.save(ctx, s.touch(cart))
}

// SetCoupon stores a resolved coupon code on the cart. Validation happens at
// the boundary; the cart only remembers the code.
func (s *Service) SetCoupon(ctx context.Context, id uuid.UUID, code string) (Cart, error) {
	cart, err := s.Get(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	cart.CouponCode = code
	return cart, s.save(ctx, s.touch(cart))
}

// ClearCoupon removes any applied coupon code.
func (s *Service) ClearCoupon(ctx context.Context, id uuid.UUID) (Cart, error) {
	return s.SetCoupon(ctx, id, "")
}

// Delete destroys a cart, typically after a successful checkout.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.R == nil {
		return errors.New("cart service not configured")
	}
	return s.R.Del(ctx, cartKey(id)).Err()
}

func (s *Service) touch(cart Cart) Cart {
	cart.UpdatedAt = s.now()
	return cart
}

func (s *Service) save(ctx context.Context, cart Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.R.Set(ctx, cartKey(cart.ID), raw, s.ttl()).Err(); err != nil {
		return fmt.Errorf("store cart: %w", err)
	}
	return nil
}
