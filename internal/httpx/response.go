package httpx

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope returned by every successful endpoint.
// swagger:model Response
type Response struct {
	// HTTP status code
	// example: 200
	StatusCode int `json:"statusCode"`

	// Response payload
	Data interface{} `json:"data"`

	// Human-readable message
	// example: Success
	Message string `json:"message"`

	// True when StatusCode < 400
	// example: true
	Success bool `json:"success"`
}

// JSON writes data wrapped in the response envelope.
func JSON(w http.ResponseWriter, statusCode int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(Response{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < 400,
	})
}
