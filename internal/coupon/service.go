package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Service resolves discount codes against the coupon store.
type Service struct {
	Pool *pgxpool.Pool
	Now  func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Resolve validates the code for the given cart subtotal and returns the
// flat discount amount to feed the pricing engine.
func (s *Service) Resolve(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	rule, err := s.byCode(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	if err := rule.Validate(s.now(), subtotal); err != nil {
		return decimal.Zero, err
	}
	return Compute(subtotal, rule), nil
}

// MarkUsed increments the usage counter after a successful checkout.
func (s *Service) MarkUsed(ctx context.Context, tx pgx.Tx, code string) error {
	normalized := normalize(code)
	if normalized == "" {
		return nil
	}
	tag, err := tx.Exec(ctx, "UPDATE coupons SET used_count = used_count + 1 WHERE code = $1", normalized)
	if err != nil {
		return fmt.Errorf("mark coupon used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) byCode(ctx context.Context, code string) (Rule, error) {
	if s == nil || s.Pool == nil {
		return Rule{}, errors.New("coupon service not configured")
	}
	normalized := normalize(code)
	if normalized == "" {
		return Rule{}, ErrNotFound
	}
	row := s.Pool.QueryRow(ctx,
		`SELECT code, kind, value, percent_bps, min_spend, usage_limit, used_count, valid_from, valid_to
		 FROM coupons WHERE code = $1`, normalized)

	var rule Rule
	err := row.Scan(&rule.Code, &rule.Kind, &rule.Value, &rule.PercentBps,
		&rule.MinSpend, &rule.UsageLimit, &rule.UsedCount, &rule.ValidFrom, &rule.ValidTo)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rule{}, ErrNotFound
	}
	if err != nil {
		return Rule{}, fmt.Errorf("load coupon: %w", err)
	}
	return rule, nil
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
