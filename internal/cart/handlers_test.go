package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/embervale/backend-vapor/internal/pricing"
)

func newQuoteRouter(t *testing.T) (*chi.Mux, *Service, fakeProducts) {
	t.Helper()
	svc, _, products := newTestService(t)
	h := &Handler{Svc: svc, Engine: pricing.Engine{}, TaxRate: decimal.Zero}

	r := chi.NewRouter()
	r.Post("/carts/{id}/quote", h.Quote)
	return r, svc, products
}

func postQuote(t *testing.T, router http.Handler, cartID uuid.UUID, body string) (*httptest.ResponseRecorder, pricing.Totals) {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(http.MethodPost, "/carts/"+cartID.String()+"/quote", reader)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var envelope struct {
		Data pricing.Totals `json:"data"`
	}
	if rr.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	}
	return rr, envelope.Data
}

func TestQuoteStoredSnapshot(t *testing.T) {
	router, svc, products := newQuoteRouter(t)
	ctx := context.Background()
	productID := addProduct(products, "8", true)

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, created.ID, productID, 5)
	require.NoError(t, err)

	rr, totals := postQuote(t, router, created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, totals.Subtotal.Equal(decimal.RequireFromString("40")))
	require.True(t, totals.PromotionDiscount.Equal(decimal.RequireFromString("8")))
	require.True(t, totals.Total.Equal(decimal.RequireFromString("42")))
}

func TestQuoteBodyOverridesSnapshot(t *testing.T) {
	router, svc, _ := newQuoteRouter(t)
	created, err := svc.Create(context.Background())
	require.NoError(t, err)

	body := `{"items":[{"unitPrice":50,"quantity":3}],"deliveryFee":5,"taxRate":"0.1"}`
	rr, totals := postQuote(t, router, created.ID, body)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, totals.Subtotal.Equal(decimal.RequireFromString("150")))
	require.True(t, totals.ShippingFee.IsZero())
	require.True(t, totals.Tax.Equal(decimal.RequireFromString("15")))
	require.True(t, totals.Total.Equal(decimal.RequireFromString("165")))
}

func TestQuoteToleratesGarbageNumerics(t *testing.T) {
	router, svc, _ := newQuoteRouter(t)
	created, err := svc.Create(context.Background())
	require.NoError(t, err)

	body := `{"items":[{"unitPrice":"oops","quantity":"2"},{"unitPrice":15,"quantity":null}],"discountAmount":true}`
	rr, totals := postQuote(t, router, created.ID, body)
	require.Equal(t, http.StatusOK, rr.Code)
	// Garbage price and null quantity coerce to zero; nothing accrues.
	require.True(t, totals.Subtotal.IsZero())
	require.True(t, totals.ShippingFee.Equal(decimal.RequireFromString("10")))
	require.True(t, totals.Total.Equal(decimal.RequireFromString("10")))
}

func TestQuoteMalformedBodyFallsBackToSnapshot(t *testing.T) {
	router, svc, products := newQuoteRouter(t)
	ctx := context.Background()
	productID := addProduct(products, "12", true)

	created, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, created.ID, productID, 1)
	require.NoError(t, err)

	rr, totals := postQuote(t, router, created.ID, `{"items": [truncated`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, totals.Subtotal.Equal(decimal.RequireFromString("12")))
}

func TestQuoteMissingCart(t *testing.T) {
	router, _, _ := newQuoteRouter(t)
	rr, _ := postQuote(t, router, uuid.New(), "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}
