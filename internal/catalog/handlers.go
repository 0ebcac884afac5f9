package catalog

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/embervale/backend-vapor/internal/common"
)

// Handler exposes the read-only catalog endpoints.
type Handler struct {
	Svc *Service
}

// Products lists products with pagination and an optional category filter.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 20)
	category := r.URL.Query().Get("category")

	products, total, err := h.Svc.List(r.Context(), category, page, perPage)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, products, &common.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
	})
}

// ProductDetail returns a single product by slug.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		common.RenderError(w, common.BadRequest("slug is required"))
		return
	}
	product, err := h.Svc.BySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.RenderError(w, common.NotFound("product not found"))
			return
		}
		common.RenderError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, product, nil)
}
