package order

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/embervale/backend-vapor/internal/common"
)

// Handler exposes the customer's order history.
type Handler struct {
	Svc *Service
}

// List returns the authenticated customer's orders, paginated.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	customerID, ok := common.CustomerID(r.Context())
	if !ok {
		common.RenderError(w, common.NewAppError("UNAUTHORIZED", "customer identity required", http.StatusUnauthorized, nil))
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	orders, total, err := h.Svc.List(r.Context(), customerID, page, perPage)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, orders, &common.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
	})
}

// Get returns a single order with its items.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	customerID, ok := common.CustomerID(r.Context())
	if !ok {
		common.RenderError(w, common.NewAppError("UNAUTHORIZED", "customer identity required", http.StatusUnauthorized, nil))
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.RenderError(w, common.BadRequest("invalid order id"))
		return
	}
	o, err := h.Svc.ByID(r.Context(), customerID, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.RenderError(w, common.NotFound("order not found"))
			return
		}
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, o, nil)
}
