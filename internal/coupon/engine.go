package coupon

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no coupon exists for the given code.
	ErrNotFound = errors.New("coupon not found")
	// ErrInactive is returned when attempting to use a coupon before its window opens.
	ErrInactive = errors.New("coupon not active")
	// ErrExpired is returned when the coupon window has already closed.
	ErrExpired = errors.New("coupon expired")
	// ErrMinimumSpendUnmet indicates the cart subtotal did not meet the coupon requirement.
	ErrMinimumSpendUnmet = errors.New("coupon minimum spend not met")
	// ErrUsageLimitReached indicates the coupon has exhausted its usage quota.
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
)

// IsRejection reports whether the error is a business rejection of the code,
// as opposed to an infrastructure failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInactive) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrMinimumSpendUnmet) ||
		errors.Is(err, ErrUsageLimitReached)
}

// Rule captures the runtime constraints of a discount code.
type Rule struct {
	Code       string
	Kind       string
	Value      decimal.Decimal
	PercentBps *int32
	MinSpend   decimal.Decimal
	UsageLimit *int32
	UsedCount  int32
	ValidFrom  *time.Time
	ValidTo    *time.Time
}

// Validate ensures the rule can be applied at the provided instant and cart subtotal.
func (r Rule) Validate(now time.Time, cartSubtotal decimal.Decimal) error {
	if cartSubtotal.LessThan(r.MinSpend) {
		return ErrMinimumSpendUnmet
	}
	if r.ValidFrom != nil && now.Before(*r.ValidFrom) {
		return ErrInactive
	}
	if r.ValidTo != nil && now.After(*r.ValidTo) {
		return ErrExpired
	}
	if r.UsageLimit != nil && *r.UsageLimit >= 0 && r.UsedCount >= *r.UsageLimit {
		return ErrUsageLimitReached
	}
	return nil
}

// Compute determines the flat discount amount for the rule against the raw
// cart subtotal. Percent codes translate here; the pricing engine only ever
// sees the resulting flat amount.
func Compute(subtotal decimal.Decimal, r Rule) decimal.Decimal {
	if subtotal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	discount := r.Value
	if strings.EqualFold(r.Kind, "percent") {
		if r.PercentBps == nil || *r.PercentBps <= 0 {
			return decimal.Zero
		}
		discount = subtotal.Mul(decimal.NewFromInt32(*r.PercentBps)).Div(decimal.NewFromInt(10000))
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}
