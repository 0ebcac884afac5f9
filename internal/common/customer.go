package common

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type ctxKey string

const customerIDKey ctxKey = "customer-id"

// CustomerIDHeader names the header carrying the caller's customer id. The
// session layer that mints it is out of scope; handlers only need a stable
// identifier.
const CustomerIDHeader = "X-Customer-Id"

// WithCustomerID stores the customer identifier on the provided context.
func WithCustomerID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, customerIDKey, id)
}

// CustomerID extracts the customer identifier from the context if present.
func CustomerID(ctx context.Context) (uuid.UUID, bool) {
	v := ctx.Value(customerIDKey)
	if v == nil {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// RequireCustomer rejects requests without a parseable customer id header.
func RequireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(CustomerIDHeader))
		if raw == "" {
			JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing customer id", nil)
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid customer id", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCustomerID(r.Context(), id)))
	})
}
