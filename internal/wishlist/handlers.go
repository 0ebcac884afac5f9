package wishlist

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/embervale/backend-vapor/internal/common"
)

// Handler exposes the wishlist endpoints.
type Handler struct {
	Svc *Service
}

type addRequest struct {
	ProductID string `json:"productId"`
}

// List returns the customer's saved products.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	customerID, ok := common.CustomerID(r.Context())
	if !ok {
		common.RenderError(w, common.NewAppError("UNAUTHORIZED", "customer identity required", http.StatusUnauthorized, nil))
		return
	}
	entries, err := h.Svc.List(r.Context(), customerID)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, entries, nil)
}

// Add saves a product to the wishlist.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	customerID, ok := common.CustomerID(r.Context())
	if !ok {
		common.RenderError(w, common.NewAppError("UNAUTHORIZED", "customer identity required", http.StatusUnauthorized, nil))
		return
	}
	var req addRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RenderError(w, err)
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		common.RenderError(w, common.BadRequest("invalid product id"))
		return
	}
	if err := h.Svc.Add(r.Context(), customerID, productID); err != nil {
		// The product FK catches saves of products that do not exist.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			common.RenderError(w, common.NotFound("product not found"))
			return
		}
		common.RenderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Remove deletes a product from the wishlist.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	customerID, ok := common.CustomerID(r.Context())
	if !ok {
		common.RenderError(w, common.NewAppError("UNAUTHORIZED", "customer identity required", http.StatusUnauthorized, nil))
		return
	}
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		common.RenderError(w, common.BadRequest("invalid product id"))
		return
	}
	if err := h.Svc.Remove(r.Context(), customerID, productID); err != nil {
		if errors.Is(err, ErrNotFound) {
			common.RenderError(w, common.NotFound("wishlist entry not found"))
			return
		}
		common.RenderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
