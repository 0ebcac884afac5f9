package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/embervale/backend-vapor/internal/coupon"
)

// PGStore persists orders in Postgres. The order row, its items and the
// coupon usage bump commit in a single transaction.
type PGStore struct {
	Pool    *pgxpool.Pool
	Coupons *coupon.Service
}

// Persist writes the order and its items, marking the coupon used when one
// was applied. On success the order's ID and CreatedAt are populated.
func (st *PGStore) Persist(ctx context.Context, o *Order) error {
	if st == nil || st.Pool == nil {
		return errors.New("checkout store not configured")
	}
	tx, err := st.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin checkout tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var couponCode *string
	if o.CouponCode != "" {
		couponCode = &o.CouponCode
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (customer_id, status, coupon_code, subtotal, promotion_discount,
		                     coupon_discount, subtotal_after_discounts, shipping_fee, tax, total)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		o.CustomerID, o.Status, couponCode,
		o.Totals.Subtotal, o.Totals.PromotionDiscount, o.Totals.CouponDiscount,
		o.Totals.SubtotalAfterDiscounts, o.Totals.ShippingFee, o.Totals.Tax, o.Totals.Total,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (order_id, product_id, name, unit_price, quantity, subtotal)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			o.ID, it.ProductID, it.Name, it.UnitPrice, it.Quantity, it.Subtotal)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if o.CouponCode != "" && st.Coupons != nil {
		if err := st.Coupons.MarkUsed(ctx, tx, o.CouponCode); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit checkout tx: %w", err)
	}
	return nil
}
