package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the requested product could not be located.
var ErrNotFound = errors.New("product not found")

// Product is a storefront catalog entry. Prices here are the authoritative
// unit prices carts resolve against.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	InStock     bool            `json:"inStock"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Service provides read-only catalog lookups. Catalog mutation happens
// upstream (POS sync), never through this API.
type Service struct {
	Pool     *pgxpool.Pool
	MaxLimit int
}

const productColumns = "id, slug, name, description, category, unit_price, in_stock, created_at"

// List returns a page of products, optionally filtered by category.
func (s *Service) List(ctx context.Context, category string, page, perPage int) ([]Product, int64, error) {
	if s == nil || s.Pool == nil {
		return nil, 0, errors.New("catalog service not configured")
	}
	if page <= 0 {
		page = 1
	}
	maxLimit := s.MaxLimit
	if maxLimit <= 0 {
		maxLimit = 100
	}
	if perPage <= 0 || perPage > maxLimit {
		perPage = maxLimit
	}
	offset := (page - 1) * perPage

	where := ""
	args := []any{}
	if c := strings.TrimSpace(category); c != "" {
		where = "WHERE category = $1"
		args = append(args, c)
	}

	var total int64
	if err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM products "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM products %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		productColumns, where, len(args)+1, len(args)+2)
	args = append(args, perPage, offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0, perPage)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// BySlug fetches a single product by its URL slug.
func (s *Service) BySlug(ctx context.Context, slug string) (Product, error) {
	row := s.Pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM products WHERE slug = $1", productColumns), slug)
	return scanOne(row)
}

// ByID fetches a single product by id. Cart adds resolve prices through it.
func (s *Service) ByID(ctx context.Context, id uuid.UUID) (Product, error) {
	row := s.Pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns), id)
	return scanOne(row)
}

func scanOne(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.Category, &p.UnitPrice, &p.InStock, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}

func scanProduct(rows pgx.Rows) (Product, error) {
	var p Product
	if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.Category, &p.UnitPrice, &p.InStock, &p.CreatedAt); err != nil {
		return Product{}, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}
