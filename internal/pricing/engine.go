package pricing

import "github.com/shopspring/decimal"

// BulkPromotionMinQty is the total unit count at which the cart earns its
// cheapest unit free. The promotion fires once per cart, never per multiple.
const BulkPromotionMinQty = 5

var (
	// DefaultDeliveryFee is the fallback shipping charge applied when the
	// caller supplies no delivery fee. Deployments override it through
	// Engine.FallbackDeliveryFee (PRICING_DELIVERY_FEE).
	DefaultDeliveryFee = decimal.NewFromInt(10)

	// FreeShippingThreshold is the promotion-adjusted subtotal above which
	// shipping is waived. Strictly greater than: 125.00 still pays shipping.
	FreeShippingThreshold = decimal.NewFromInt(125)
)

// LineItem is one priced unit group of a cart at computation time.
type LineItem struct {
	UnitPrice decimal.Decimal
	Quantity  int64
}

// Options carries the optional pricing context for one computation. A nil
// DeliveryFee falls back to the engine's configured fee. TaxRate is a fraction
// in [0, 1) applied to the post-discount subtotal.
type Options struct {
	DiscountAmount decimal.Decimal
	DeliveryFee    *decimal.Decimal
	TaxRate        decimal.Decimal
}

// Totals is the itemized result of a pricing computation. Every monetary
// field is non-negative.
type Totals struct {
	Subtotal               decimal.Decimal `json:"subtotal"`
	PromotionDiscount      decimal.Decimal `json:"promotionDiscount"`
	CouponDiscount         decimal.Decimal `json:"couponDiscount"`
	SubtotalAfterDiscounts decimal.Decimal `json:"subtotalAfterDiscounts"`
	ShippingFee            decimal.Decimal `json:"shippingFee"`
	Tax                    decimal.Decimal `json:"tax"`
	Total                  decimal.Decimal `json:"total"`
}

// Engine computes order totals. It is stateless; the only configuration is
// the delivery fee used when a quote arrives without one. The zero value
// falls back to DefaultDeliveryFee.
type Engine struct {
	FallbackDeliveryFee decimal.Decimal
}

// Compute derives a fully itemized total from the cart lines and options.
//
// The steps apply in a fixed order: accumulate lines with positive quantity,
// deduct the bulk promotion, deduct the coupon from the promotion-adjusted
// subtotal, decide the shipping fee against the promotion-adjusted subtotal
// (before the coupon), then tax the post-discount pre-shipping amount.
// Shipping is never taxed.
//
// Compute is total: it never fails. Negative amounts are treated as zero and
// lines with non-positive quantity are skipped.
func (e Engine) Compute(items []LineItem, opts Options) Totals {
	subtotal := decimal.Zero
	var totalQty int64
	var minPrice decimal.Decimal
	haveMin := false

	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		price := clampAmount(it.UnitPrice)
		totalQty += it.Quantity
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(it.Quantity)))
		if !haveMin || price.LessThan(minPrice) {
			minPrice = price
			haveMin = true
		}
	}

	promo := decimal.Zero
	if totalQty >= BulkPromotionMinQty && haveMin {
		promo = minPrice
	}

	afterPromo := floorZero(subtotal.Sub(promo))

	coupon := clampAmount(opts.DiscountAmount)
	afterDiscounts := floorZero(afterPromo.Sub(coupon))

	shipping := e.fallbackFee()
	if opts.DeliveryFee != nil {
		shipping = clampAmount(*opts.DeliveryFee)
	}
	// Free shipping keys on the value of goods after the promotion, not on
	// what the customer pays after coupons.
	if afterPromo.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := afterDiscounts.Mul(clampAmount(opts.TaxRate))
	total := afterDiscounts.Add(shipping).Add(tax)

	return Totals{
		Subtotal:               subtotal,
		PromotionDiscount:      promo,
		CouponDiscount:         coupon,
		SubtotalAfterDiscounts: afterDiscounts,
		ShippingFee:            shipping,
		Tax:                    tax,
		Total:                  total,
	}
}

func (e Engine) fallbackFee() decimal.Decimal {
	if e.FallbackDeliveryFee.IsZero() {
		return DefaultDeliveryFee
	}
	return clampAmount(e.FallbackDeliveryFee)
}

func clampAmount(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
