package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the order does not exist or belongs to another customer.
var ErrNotFound = errors.New("order not found")

// Order is the read model of a placed order, totals itemized as priced.
type Order struct {
	ID                     uuid.UUID       `json:"id"`
	CustomerID             uuid.UUID       `json:"customerId"`
	Status                 string          `json:"status"`
	CouponCode             *string         `json:"couponCode,omitempty"`
	Subtotal               decimal.Decimal `json:"subtotal"`
	PromotionDiscount      decimal.Decimal `json:"promotionDiscount"`
	CouponDiscount         decimal.Decimal `json:"couponDiscount"`
	SubtotalAfterDiscounts decimal.Decimal `json:"subtotalAfterDiscounts"`
	ShippingFee            decimal.Decimal `json:"shippingFee"`
	Tax                    decimal.Decimal `json:"tax"`
	Total                  decimal.Decimal `json:"total"`
	CreatedAt              time.Time       `json:"createdAt"`
	Items                  []Item          `json:"items,omitempty"`
}

// Item is a priced order line.
type Item struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Service provides customer-scoped order history lookups.
type Service struct {
	Pool *pgxpool.Pool
}

const orderColumns = `id, customer_id, status, coupon_code, subtotal, promotion_discount,
	coupon_discount, subtotal_after_discounts, shipping_fee, tax, total, created_at`

// List returns the customer's orders, newest first.
func (s *Service) List(ctx context.Context, customerID uuid.UUID, page, perPage int) ([]Order, int64, error) {
	if s == nil || s.Pool == nil {
		return nil, 0, errors.New("order service not configured")
	}
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	var total int64
	if err := s.Pool.QueryRow(ctx,
		"SELECT count(*) FROM orders WHERE customer_id = $1", customerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := s.Pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM orders WHERE customer_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, orderColumns),
		customerID, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0, perPage)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

// ByID fetches one of the customer's orders with its line items.
func (s *Service) ByID(ctx context.Context, customerID, orderID uuid.UUID) (Order, error) {
	if s == nil || s.Pool == nil {
		return Order{}, errors.New("order service not configured")
	}
	row := s.Pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM orders WHERE id = $1 AND customer_id = $2", orderColumns),
		orderID, customerID)

	o, err := scanOrder(row)
	if err != nil {
		return Order{}, err
	}

	rows, err := s.Pool.Query(ctx,
		`SELECT product_id, name, unit_price, quantity, subtotal
		 FROM order_items WHERE order_id = $1 ORDER BY name`, orderID)
	if err != nil {
		return Order{}, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity, &it.Subtotal); err != nil {
			return Order{}, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.Status, &o.CouponCode,
		&o.Subtotal, &o.PromotionDiscount, &o.CouponDiscount, &o.SubtotalAfterDiscounts,
		&o.ShippingFee, &o.Tax, &o.Total, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("scan order: %w", err)
	}
	return o, nil
}
