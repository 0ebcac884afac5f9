package common

import (
	"encoding/json"
	"net/http"
)

// ErrorBody represents a consistent error payload returned by the API.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes the provided value to the response writer as JSON.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONData wraps the payload in a data envelope, optionally attaching
// pagination metadata.
func JSONData(w http.ResponseWriter, status int, v any, p *Pagination) {
	body := map[string]any{"data": v}
	if p != nil {
		body["pagination"] = p
	}
	JSON(w, status, body)
}

// JSONError renders an error response using the canonical error shape.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// DecodeJSON decodes a request body into dst, rejecting unknown size abuse
// via the body-limit middleware upstream. A decode failure maps to a
// BAD_REQUEST AppError.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return BadRequest("empty request body")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return NewAppError("BAD_REQUEST", "malformed JSON body", http.StatusBadRequest, err)
	}
	return nil
}
