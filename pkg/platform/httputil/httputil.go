// Package httputil translates domain errors into HTTP responses and provides
// JSON helpers shared by all handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "member-gateway/pkg/domain-errors"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	// The response body may be incomplete, but headers are already sent.
	_ = json.NewEncoder(w).Encode(response)
}

// ErrorResponse is the JSON error envelope. MemberNumber is populated on
// duplicate rejections so the caller can point the person at their existing
// membership.
type ErrorResponse struct {
	Error        string `json:"error"`
	Description  string `json:"error_description,omitempty"`
	MemberNumber string `json:"member_number,omitempty"`
}

// WriteError centralizes domain error translation to HTTP responses.
// It translates transport-agnostic domain errors into HTTP status codes and
// error envelopes; transport never inspects error strings.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: string(dErrors.CodeInternal),
		})
		return
	}

	response := ErrorResponse{
		Error:       string(domainErr.Code),
		Description: domainErr.Message,
	}
	switch domainErr.Code {
	case dErrors.CodeDuplicateEmail, dErrors.CodeDuplicateIdentity:
		response.MemberNumber = domainErr.Hint
	}
	WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), response)
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
// Retryable codes surface only after the workflow has exhausted its attempts,
// so they map to gateway-side statuses the caller may retry later.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeDuplicateEmail, dErrors.CodeDuplicateIdentity:
		return http.StatusConflict
	case dErrors.CodeValidation, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeUserNotFound:
		return http.StatusServiceUnavailable
	case dErrors.CodeNetwork, dErrors.CodeRPC:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
