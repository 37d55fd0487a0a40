// Package dto defines the request and response shapes of the HTTP API.
package dto

// APIResponse is the envelope every endpoint responds with. Data carries the
// operation-specific payload on success, Error an ErrorDetail on failure.
type APIResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Application received."`
	Data    any    `json:"data,omitempty" validate:"omitempty"`
	Error   any    `json:"error,omitempty" validate:"omitempty"`
}

// ErrorDetail identifies a failure by a stable machine-readable code
type ErrorDetail struct {
	Code    string `json:"code" example:"INVALID_CAPTCHA"`
	Details any    `json:"details,omitempty" validate:"omitempty"`
}
