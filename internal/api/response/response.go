// Package response writes the JSON envelope shared by the dashboard API and
// the stock backend: {"success": true, "data": ...} or
// {"success": false, "error": ..., "code": ...}.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/newthinker/tasi/internal/core"
)

// Meta contains response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
}

// SuccessResponse is the standard success response format.
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Meta    Meta `json:"meta"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Cause   string `json:"cause,omitempty"`
}

// JSON writes a success response with data.
func JSON(w http.ResponseWriter, status int, data any) {
	resp := SuccessResponse{
		Success: true,
		Data:    data,
		Meta:    Meta{Timestamp: time.Now().UTC()},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Error writes an error response.
func Error(w http.ResponseWriter, status int, err error) {
	resp := ErrorResponse{
		Error: "an internal error occurred",
		Code:  "INTERNAL_ERROR",
	}

	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		resp.Code = coreErr.Code
		resp.Error = coreErr.Message
		if coreErr.Cause != nil {
			resp.Cause = coreErr.Cause.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// StatusFor maps an error to the HTTP status it is reported with.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, core.ErrUnknownSection),
		errors.Is(err, core.ErrUnknownRegion),
		errors.Is(err, core.ErrNoChart),
		errors.Is(err, core.ErrSymbolNotFound),
		errors.Is(err, core.ErrJobNotFound),
		errors.Is(err, core.ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, core.ErrStockRequired):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrConfigMissing), errors.Is(err, core.ErrConfigInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrNetwork),
		errors.Is(err, core.ErrEnvelope),
		errors.Is(err, core.ErrParse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
