package api

import "github.com/labstack/echo/v4"

// Error codes surfaced to the widget.
const (
	CodeSheetNotFound = "SHEET_NOT_FOUND"
	CodeInvalidDate   = "INVALID_DATE"
	CodeMissingName   = "MISSING_NAME"
	CodeRosterFailure = "ROSTER_FAILURE"
	CodeTierNotFound  = "TIER_NOT_FOUND"
	CodeInvalidLimit  = "INVALID_LIMIT"
	CodeInternal      = "INTERNAL_ERROR"
)

// ErrorPayload is the standard error response shape. Request-level errors
// are always converted to this, never surfaced as an unhandled fault.
type ErrorPayload struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func respondError(c echo.Context, status int, code, message, details string) error {
	return c.JSON(status, ErrorPayload{
		Error:   true,
		Message: message,
		Code:    code,
		Details: details,
	})
}
