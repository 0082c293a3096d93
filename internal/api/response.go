package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/compose-network/rollup-configurator/internal/build"
	"github.com/compose-network/rollup-configurator/internal/inspect"
	"github.com/compose-network/rollup-configurator/internal/l1"
	"github.com/compose-network/rollup-configurator/internal/schema"
)

const (
	CodeBadRequest           = "bad_request"
	CodeNotFound             = "not_found"
	CodeInvalidConfiguration = "invalid_configuration"
	CodeL1NotSupported       = "l1_not_supported"
	CodeUnsupportedFile      = "unsupported_file"
	CodeUpstreamFailed       = "upstream_failed"
	CodeInternal             = "internal_error"
)

type (
	// Response is the envelope of every JSON response.
	Response struct {
		Data  any       `json:"data,omitempty"`
		Error *APIError `json:"error,omitempty"`
	}

	APIError struct {
		Code          string                                `json:"code"`
		Message       string                                `json:"message"`
		Fields        map[string]*schema.FieldError         `json:"fields,omitempty"`
		Configuration map[string]*schema.ConfigurationError `json:"configuration,omitempty"`
		StatusCode    int                                   `json:"-"`
	}
)

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, `{"error":{"code":"internal_error","message":"Failed to encode response"}}`, http.StatusInternalServerError)
	}
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Data: data})
}

func fail(w http.ResponseWriter, err error) {
	apiErr := asAPIError(err)
	writeJSON(w, apiErr.StatusCode, Response{Error: apiErr})
}

// asAPIError maps domain errors onto HTTP statuses.
func asAPIError(err error) *APIError {
	var (
		apiErr        *APIError
		validationErr *schema.Errors
		transportErr  *build.TransportError
		inspectionErr *inspect.InspectionError
	)

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &validationErr):
		return &APIError{
			Code:          CodeInvalidConfiguration,
			Message:       validationErr.Error(),
			Fields:        validationErr.Fields,
			Configuration: validationErr.Configuration,
			StatusCode:    http.StatusUnprocessableEntity,
		}
	case errors.Is(err, l1.ErrNotSupported):
		return &APIError{Code: CodeL1NotSupported, Message: err.Error(), StatusCode: http.StatusBadRequest}
	case errors.Is(err, inspect.ErrUnsupportedFile):
		return &APIError{Code: CodeUnsupportedFile, Message: err.Error(), StatusCode: http.StatusBadRequest}
	case errors.Is(err, inspect.ErrUnknownKind):
		return &APIError{Code: CodeNotFound, Message: err.Error(), StatusCode: http.StatusNotFound}
	case errors.As(err, &transportErr), errors.As(err, &inspectionErr):
		return &APIError{Code: CodeUpstreamFailed, Message: err.Error(), StatusCode: http.StatusBadGateway}
	default:
		return &APIError{Code: CodeInternal, Message: err.Error(), StatusCode: http.StatusInternalServerError}
	}
}

func badRequest(msg string) *APIError {
	return &APIError{Code: CodeBadRequest, Message: msg, StatusCode: http.StatusBadRequest}
}

func notFound(msg string) *APIError {
	return &APIError{Code: CodeNotFound, Message: msg, StatusCode: http.StatusNotFound}
}
