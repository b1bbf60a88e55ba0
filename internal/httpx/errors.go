package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error is an API error carrying the HTTP status it serializes to. Services
// and middlewares return *Error values; WriteError is the single place that
// turns them into the error envelope.
type Error struct {
	StatusCode int
	Message    string
	Errs       []string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds an Error with an arbitrary status code.
func NewError(statusCode int, message string, errs ...string) *Error {
	return &Error{StatusCode: statusCode, Message: message, Errs: errs}
}

// ValidationError reports missing or malformed input.
func ValidationError(message string, errs ...string) *Error {
	return NewError(http.StatusBadRequest, message, errs...)
}

// ConflictError reports a duplicate username or email.
func ConflictError(message string) *Error {
	return NewError(http.StatusConflict, message)
}

// AuthenticationError reports bad credentials.
func AuthenticationError(message string) *Error {
	return NewError(http.StatusUnauthorized, message)
}

// UnauthorizedError reports a missing, invalid, or expired token, or a token
// whose user no longer exists.
func UnauthorizedError(message string) *Error {
	return NewError(http.StatusUnauthorized, message)
}

// NotFoundError reports that no matching user exists.
func NotFoundError(message string) *Error {
	return NewError(http.StatusNotFound, message)
}

// UploadError reports a failed required media upload.
func UploadError(message string) *Error {
	return NewError(http.StatusBadRequest, message)
}

// InternalError reports a store or token-generation failure not attributable
// to caller input.
func InternalError(message string) *Error {
	return NewError(http.StatusInternalServerError, message)
}

// ErrorBody is the envelope for failed requests.
// swagger:model ErrorBody
type ErrorBody struct {
	// HTTP status code
	// example: 400
	StatusCode int `json:"statusCode"`

	// Error message
	// example: all fields are required
	Message string `json:"message"`

	// Always null on errors
	Data interface{} `json:"data"`

	// Always false on errors
	// example: false
	Success bool `json:"success"`

	// Additional error details
	Errors []string `json:"errors"`
}

// WriteError serializes err into the error envelope. Errors that are not
// *Error values are reported as a generic internal error so that raw driver
// messages never reach clients.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = InternalError("Internal server error")
	}

	errs := apiErr.Errs
	if errs == nil {
		errs = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode)
	json.NewEncoder(w).Encode(ErrorBody{
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Message,
		Data:       nil,
		Success:    false,
		Errors:     errs,
	})
}
