// Package handlers implements the HTTP request handlers for the appeal API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/careloop/appealgen/pkg/errors"
)

// ErrorResponse is the standard error body.  Code carries the typed error
// code, not the HTTP status text, so clients can branch without parsing
// messages.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError maps an error onto its HTTP status via the error-code table.
// Non-AppError values are masked as COMMON_001 so internals never leak.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)

	resp := ErrorResponse{
		Code:      code.String(),
		Message:   errors.DefaultMessageForCode(code),
		RequestID: chimw.GetReqID(r.Context()),
	}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	}

	writeJSON(w, errors.HTTPStatusForCode(code), resp)
}

// parseLimit reads a positive integer query parameter, falling back to def.
func parseLimit(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
