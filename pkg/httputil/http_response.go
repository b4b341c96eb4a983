package httputil

import (
	"net/http"

	"github.com/bytedance/sonic"
)

// Stable reasons of care action rejections.
const (
	ReasonAlreadySatiated = "already_satiated"
	ReasonAlreadyClean    = "already_clean"
	ReasonAlreadyJoyful   = "already_joyful"
	ReasonDeceased        = "deceased"
	ReasonUnknownAction   = "unknown_action"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the single error body of the API. Reason is a stable
// machine-readable token set for care action rejections.
type ErrorResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Reason  string       `json:"reason,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	Details string       `json:"details,omitempty"`
}

// ListEnvelope wraps every list response.
type ListEnvelope[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func NewListEnvelope[T any](data []T, total, page, limit int) ListEnvelope[T] {
	if data == nil {
		data = []T{}
	}
	return ListEnvelope[T]{Data: data, Total: total, Page: page, Limit: limit}
}

func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string, details error) {
	resp := ErrorResponse{
		Code:    statusCode,
		Message: message,
	}
	if details != nil {
		resp.Details = details.Error()
	}
	writeError(w, resp)
}

func WriteRejection(w http.ResponseWriter, statusCode int, reason, message string) {
	writeError(w, ErrorResponse{
		Code:    statusCode,
		Message: message,
		Reason:  reason,
	})
}

func WriteValidationError(w http.ResponseWriter, message string, fields []FieldError) {
	writeError(w, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
		Errors:  fields,
	})
}

func writeError(w http.ResponseWriter, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Code)
	sonic.ConfigFastest.NewEncoder(w).Encode(resp)
}

func WriteJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if body != nil {
		sonic.ConfigDefault.NewEncoder(w).Encode(body)
	}
}
