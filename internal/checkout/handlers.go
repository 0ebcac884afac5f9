package checkout

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/embervale/backend-vapor/internal/cart"
	"github.com/embervale/backend-vapor/internal/common"
	"github.com/embervale/backend-vapor/internal/coupon"
)

// Handler exposes the checkout endpoint.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// Checkout places an order from the customer's cart.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	customerID, ok := common.CustomerID(r.Context())
	if !ok {
		common.RenderError(w, common.NewAppError("UNAUTHORIZED", "customer identity required", http.StatusUnauthorized, nil))
		return
	}
	var in Input
	if err := common.DecodeJSON(r, &in); err != nil {
		common.RenderError(w, err)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(in); err != nil {
			common.RenderError(w, common.BadRequest("cartId must be a valid uuid"))
			return
		}
	}
	out, err := h.Svc.Create(r.Context(), customerID, in)
	if err != nil {
		renderCheckoutError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, out, nil)
}

func renderCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrNotFound):
		common.RenderError(w, common.NotFound("cart not found"))
	case errors.Is(err, ErrEmptyCart):
		common.RenderError(w, common.NewAppError("EMPTY_CART", err.Error(), http.StatusUnprocessableEntity, err))
	case coupon.IsRejection(err):
		common.RenderError(w, common.NewAppError("COUPON_REJECTED", err.Error(), http.StatusUnprocessableEntity, err))
	default:
		common.RenderError(w, err)
	}
}
