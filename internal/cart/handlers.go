package cart

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/embervale/backend-vapor/internal/catalog"
	"github.com/embervale/backend-vapor/internal/common"
	"github.com/embervale/backend-vapor/internal/coupon"
	"github.com/embervale/backend-vapor/internal/obs"
	"github.com/embervale/backend-vapor/internal/pricing"
)

// CouponResolver turns an applied code into the flat discount amount the
// pricing engine consumes.
type CouponResolver interface {
	Resolve(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error)
}

// Handler exposes the cart endpoints.
type Handler struct {
	Svc     *Service
	Coupons CouponResolver
	Engine  pricing.Engine
	TaxRate decimal.Decimal
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int64 `json:"quantity"`
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

// quoteRequest is deliberately lenient: numeric fields tolerate strings,
// nulls, and garbage, coercing to zero instead of failing the request.
type quoteRequest struct {
	Items          []quoteItem     `json:"items"`
	DiscountAmount *pricing.Amount `json:"discountAmount"`
	DeliveryFee    *pricing.Amount `json:"deliveryFee"`
	TaxRate        *pricing.Amount `json:"taxRate"`
}

type quoteItem struct {
	UnitPrice pricing.Amount `json:"unitPrice"`
	Quantity  pricing.Count  `json:"quantity"`
}

// Create provisions an empty cart.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Svc.Create(r.Context())
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, cart, nil)
}

// Get returns the cart snapshot.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := cartID(r)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	cart, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		renderCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cart, nil)
}

// AddItem inserts or increments a cart line.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := cartID(r)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	var req addItemRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RenderError(w, err)
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		common.RenderError(w, common.BadRequest("invalid product id"))
		return
	}
	cart, err := h.Svc.AddItem(r.Context(), id, productID, req.Quantity)
	if err != nil {
		renderCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cart, nil)
}

// UpdateItem replaces a line's quantity.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := cartID(r)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		common.RenderError(w, common.BadRequest("invalid product id"))
		return
	}
	var req updateItemRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RenderError(w, err)
		return
	}
	cart, err := h.Svc.UpdateItem(r.Context(), id, productID, req.Quantity)
	if err != nil {
		renderCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cart, nil)
}

// RemoveItem deletes a line.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := cartID(r)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		common.RenderError(w, common.BadRequest("invalid product id"))
		return
	}
	cart, err := h.Svc.RemoveItem(r.Context(), id, productID)
	if err != nil {
		renderCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cart, nil)
}

// ApplyCoupon validates the code against the current subtotal and stores it.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := cartID(r)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	var req applyCouponRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RenderError(w, err)
		return
	}
	if req.Code == "" {
		common.RenderError(w, common.BadRequest("code is required"))
		return
	}
	cart, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		renderCartError(w, err)
		return
	}
	if h.Coupons != nil {
		if _, err := h.Coupons.Resolve(r.Context(), req.Code, cart.Subtotal()); err != nil {
			countCouponResolve("rejected")
			renderCouponError(w, err)
			return
		}
		countCouponResolve("applied")
	}
	cart, err = h.Svc.SetCoupon(r.Context(), id, req.Code)
	if err != nil {
		renderCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cart, nil)
}

// RemoveCoupon clears any applied code.
func (h *Handler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := cartID(r)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	cart, err := h.Svc.ClearCoupon(r.Context(), id)
	if err != nil {
		renderCartError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cart, nil)
}

// Quote prices the cart. The optional body can override line items and
// pricing options; numeric garbage in it coerces to zero rather than erroring,
// so a quote always succeeds for an existing cart.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	id, err := cartID(r)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	cart, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		renderCartError(w, err)
		return
	}

	var req quoteRequest
	// An absent or malformed body quotes the stored snapshot as-is.
	_ = common.DecodeJSON(r, &req)

	items := cart.Lines()
	if len(req.Items) > 0 {
		items = make([]pricing.LineItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, pricing.LineItem{
				UnitPrice: it.UnitPrice.Decimal(),
				Quantity:  int64(it.Quantity),
			})
		}
	}

	opts := pricing.Options{TaxRate: h.TaxRate}
	if req.TaxRate != nil {
		opts.TaxRate = req.TaxRate.Decimal()
	}
	if req.DeliveryFee != nil {
		fee := req.DeliveryFee.Decimal()
		opts.DeliveryFee = &fee
	}
	switch {
	case req.DiscountAmount != nil:
		opts.DiscountAmount = req.DiscountAmount.Decimal()
	case cart.CouponCode != "" && h.Coupons != nil:
		discount, err := h.Coupons.Resolve(r.Context(), cart.CouponCode, cart.Subtotal())
		if err == nil {
			opts.DiscountAmount = discount
		}
	}

	totals := h.Engine.Compute(items, opts)
	if totals.PromotionDiscount.IsPositive() && obs.PromotionAppliedTotal != nil {
		obs.PromotionAppliedTotal.Inc()
	}
	if obs.QuoteTotal != nil {
		obs.QuoteTotal.WithLabelValues("ok").Inc()
	}
	common.JSONData(w, http.StatusOK, totals, nil)
}

func countCouponResolve(result string) {
	if obs.CouponResolveTotal != nil {
		obs.CouponResolveTotal.WithLabelValues(result).Inc()
	}
}

func cartID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, common.BadRequest("invalid cart id")
	}
	return id, nil
}

func renderCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		common.RenderError(w, common.NotFound(err.Error()))
	case errors.Is(err, ErrInvalidInput):
		common.RenderError(w, common.BadRequest(err.Error()))
	case errors.Is(err, ErrOutOfStock):
		common.RenderError(w, common.Conflict(err.Error()))
	default:
		common.RenderError(w, err)
	}
}

func renderCouponError(w http.ResponseWriter, err error) {
	if coupon.IsRejection(err) {
		common.RenderError(w, common.NewAppError("COUPON_REJECTED", err.Error(), http.StatusUnprocessableEntity, err))
		return
	}
	common.RenderError(w, err)
}
