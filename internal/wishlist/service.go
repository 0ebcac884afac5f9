package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the product is not on the customer's wishlist.
var ErrNotFound = errors.New("wishlist entry not found")

// Entry joins a saved product with when it was saved.
type Entry struct {
	ProductID uuid.UUID       `json:"productId"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	InStock   bool            `json:"inStock"`
	AddedAt   time.Time       `json:"addedAt"`
}

// Service manages per-customer saved products.
type Service struct {
	Pool *pgxpool.Pool
}

// List returns the customer's wishlist, most recently added first.
func (s *Service) List(ctx context.Context, customerID uuid.UUID) ([]Entry, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("wishlist service not configured")
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT w.product_id, p.slug, p.name, p.unit_price, p.in_stock, w.created_at
		 FROM wishlist_items w
		 JOIN products p ON p.id = w.product_id
		 WHERE w.customer_id = $1
		 ORDER BY w.created_at DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ProductID, &e.Slug, &e.Name, &e.UnitPrice, &e.InStock, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Add saves a product. Saving an already saved product is a no-op.
func (s *Service) Add(ctx context.Context, customerID, productID uuid.UUID) error {
	if s == nil || s.Pool == nil {
		return errors.New("wishlist service not configured")
	}
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO wishlist_items (customer_id, product_id)
		 VALUES ($1, $2)
		 ON CONFLICT (customer_id, product_id) DO NOTHING`, customerID, productID)
	if err != nil {
		return fmt.Errorf("add wishlist entry: %w", err)
	}
	return nil
}

// Remove deletes a saved product.
func (s *Service) Remove(ctx context.Context, customerID, productID uuid.UUID) error {
	if s == nil || s.Pool == nil {
		return errors.New("wishlist service not configured")
	}
	tag, err := s.Pool.Exec(ctx,
		"DELETE FROM wishlist_items WHERE customer_id = $1 AND product_id = $2",
		customerID, productID)
	if err != nil {
		return fmt.Errorf("remove wishlist entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
