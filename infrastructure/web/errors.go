package web

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the fallback error body used by the framework itself.
type ErrorResponse struct {
	Error  string `json:"error"`
	status int
}

func NewError(msg string) ErrorResponse {
	return ErrorResponse{Error: msg, status: http.StatusInternalServerError}
}

// NewErrorWithStatus builds an error body rendered with the given status.
func NewErrorWithStatus(status int, msg string) ErrorResponse {
	return ErrorResponse{Error: msg, status: status}
}

func (e ErrorResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

func (e ErrorResponse) HTTPStatus() int {
	if e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}
