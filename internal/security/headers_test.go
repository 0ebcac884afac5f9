package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeadersAlwaysSet(t *testing.T) {
	handler := Headers(HeaderConfig{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	require.Equal(t, "no-referrer", rr.Header().Get("Referrer-Policy"))
	require.Empty(t, rr.Header().Get("Strict-Transport-Security"))
}

func TestHSTSOnlyOverTLS(t *testing.T) {
	handler := Headers(HeaderConfig{EnableHSTS: true, HSTSMaxAge: 60, HSTSIncludeSubdomains: true})(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, plain)
	require.Empty(t, rr.Header().Get("Strict-Transport-Security"))

	secure := httptest.NewRequest(http.MethodGet, "https://shop.example/", nil)
	secure.TLS = &tls.ConnectionState{}
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, secure)
	require.Equal(t, "max-age=60; includeSubDomains", rr.Header().Get("Strict-Transport-Security"))
}
