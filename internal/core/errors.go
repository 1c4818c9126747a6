// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Backend load failures. All three collapse into the fallback path for reads.
	ErrNetwork  = &Error{Code: "NETWORK_FAILURE", Message: "backend unreachable"}
	ErrEnvelope = &Error{Code: "ENVELOPE_FAILURE", Message: "backend reported failure"}
	ErrParse    = &Error{Code: "PARSE_FAILURE", Message: "backend payload malformed"}

	// Data errors
	ErrSymbolNotFound = &Error{Code: "SYMBOL_NOT_FOUND", Message: "symbol not found"}
	ErrNoData         = &Error{Code: "NO_DATA", Message: "no data available"}

	// Dashboard errors
	ErrUnknownSection = &Error{Code: "UNKNOWN_SECTION", Message: "unknown section"}
	ErrUnknownRegion  = &Error{Code: "UNKNOWN_REGION", Message: "unknown region"}
	ErrNoChart        = &Error{Code: "NO_CHART", Message: "no live chart on canvas"}
	ErrStockRequired  = &Error{Code: "STOCK_REQUIRED", Message: "a stock must be selected"}
	ErrJobNotFound    = &Error{Code: "JOB_NOT_FOUND", Message: "job not found"}
	ErrNoSession      = &Error{Code: "NO_SESSION", Message: "session expired or missing"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
