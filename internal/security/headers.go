package security

import (
	"net/http"
	"strconv"
)

// HeaderConfig tunes the security headers middleware.
type HeaderConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
}

// Headers attaches standard security headers to every response. The API
// serves JSON only, so framing and sniffing are denied outright.
func Headers(cfg HeaderConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Permissions-Policy", "geolocation=(), microphone=()")
			if cfg.EnableHSTS && r.TLS != nil {
				maxAge := cfg.HSTSMaxAge
				if maxAge <= 0 {
					maxAge = 31536000
				}
				value := "max-age=" + strconv.Itoa(maxAge)
				if cfg.HSTSIncludeSubdomains {
					value += "; includeSubDomains"
				}
				h.Set("Strict-Transport-Security", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
