package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/embervale/backend-vapor/internal/cart"
	"github.com/embervale/backend-vapor/internal/coupon"
	"github.com/embervale/backend-vapor/internal/notify"
	"github.com/embervale/backend-vapor/internal/obs"
	"github.com/embervale/backend-vapor/internal/pricing"
)

var (
	// ErrEmptyCart is returned when the cart has no purchasable lines.
	ErrEmptyCart = errors.New("cart has no items")
)

// Carts is the slice of the cart service checkout needs.
type Carts interface {
	Get(ctx context.Context, id uuid.UUID) (cart.Cart, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Coupons resolves an applied code into a flat discount amount.
type Coupons interface {
	Resolve(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error)
}

// Store persists a placed order, filling in ID and CreatedAt.
type Store interface {
	Persist(ctx context.Context, o *Order) error
}

// Order is the write model handed to the store in one transaction.
type Order struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Status     string
	CouponCode string
	Items      []OrderItem
	Totals     pricing.Totals
	CreatedAt  time.Time
}

// OrderItem is a priced line captured at checkout time.
type OrderItem struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
	Subtotal  decimal.Decimal
}

// Input is the checkout request payload.
type Input struct {
	CartID string `json:"cartId" validate:"required,uuid4"`
}

// Output is what the client receives for a placed order.
type Output struct {
	OrderID   uuid.UUID      `json:"orderId"`
	Status    string         `json:"status"`
	Totals    pricing.Totals `json:"totals"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Service orchestrates checkout: price the cart, persist the order,
// destroy the cart and queue the confirmation.
type Service struct {
	Carts   Carts
	Coupons Coupons
	Store   Store
	Engine  pricing.Engine
	TaxRate decimal.Decimal
	Queue   *asynq.Client
	Log     zerolog.Logger
}

// Create places an order from the given cart on behalf of the customer.
func (s *Service) Create(ctx context.Context, customerID uuid.UUID, in Input) (Output, error) {
	if s == nil || s.Carts == nil || s.Store == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	cartID, err := uuid.Parse(in.CartID)
	if err != nil {
		return Output{}, fmt.Errorf("invalid cart id: %w", err)
	}

	snapshot, err := s.Carts.Get(ctx, cartID)
	if err != nil {
		countCheckout("cart_missing")
		return Output{}, err
	}

	items := make([]OrderItem, 0, len(snapshot.Items))
	for _, it := range snapshot.Items {
		if it.Quantity <= 0 {
			continue
		}
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)),
		})
	}
	if len(items) == 0 {
		countCheckout("empty_cart")
		return Output{}, ErrEmptyCart
	}

	var discount decimal.Decimal
	if snapshot.CouponCode != "" && s.Coupons != nil {
		discount, err = s.Coupons.Resolve(ctx, snapshot.CouponCode, snapshot.Subtotal())
		if err != nil {
			if coupon.IsRejection(err) {
				countCheckout("coupon_rejected")
			} else {
				countCheckout("failed")
			}
			return Output{}, err
		}
	}

	totals := s.Engine.Compute(snapshot.Lines(), pricing.Options{
		DiscountAmount: discount,
		TaxRate:        s.TaxRate,
	})

	order := &Order{
		CustomerID: customerID,
		Status:     "PLACED",
		CouponCode: snapshot.CouponCode,
		Items:      items,
		Totals:     totals,
	}
	if err := s.Store.Persist(ctx, order); err != nil {
		countCheckout("failed")
		return Output{}, err
	}

	// The order is committed. Cart cleanup and notification failures are
	// logged but never surfaced to the client.
	if err := s.Carts.Delete(ctx, cartID); err != nil {
		s.Log.Warn().Err(err).Stringer("cart_id", cartID).Msg("cart cleanup after checkout failed")
	}
	s.enqueueConfirmation(ctx, order)

	countCheckout("ok")
	if totals.PromotionDiscount.IsPositive() && obs.PromotionAppliedTotal != nil {
		obs.PromotionAppliedTotal.Inc()
	}
	return Output{
		OrderID:   order.ID,
		Status:    order.Status,
		Totals:    totals,
		CreatedAt: order.CreatedAt,
	}, nil
}

func (s *Service) enqueueConfirmation(ctx context.Context, o *Order) {
	if s.Queue == nil {
		return
	}
	count := 0
	for _, it := range o.Items {
		count += int(it.Quantity)
	}
	task, err := notify.NewOrderConfirmationTask(notify.OrderConfirmationPayload{
		OrderID:    o.ID.String(),
		CustomerID: o.CustomerID.String(),
		Total:      o.Totals.Total.String(),
		ItemCount:  count,
	})
	if err != nil {
		s.Log.Error().Err(err).Stringer("order_id", o.ID).Msg("build confirmation task failed")
		return
	}
	if _, err := s.Queue.EnqueueContext(ctx, task); err != nil {
		s.Log.Error().Err(err).Stringer("order_id", o.ID).Msg("enqueue confirmation failed")
	}
}

func countCheckout(result string) {
	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues(result).Inc()
	}
}
