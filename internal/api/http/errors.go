package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"locationapp-backend/internal/domain"
	"locationapp-backend/internal/logger"
)

const (
	codeValidation     = "validation_error"
	codeNotFound       = "not_found"
	codeMissingIndex   = "missing_index"
	codeInvalidCursor  = "invalid_cursor"
	codeUnauthenticate = "unauthenticated"
	codeUnavailable    = "unavailable"
	codeRateLimited    = "rate_limited"
	codeInternal       = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
	Hint  string `json:"hint,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response", "error", err)
	}
}

// writeError maps err onto a status code and JSON body. Missing-index errors
// carry the store's index hint so an operator can provision it.
func writeError(w http.ResponseWriter, err error) {
	status, body := classify(err)
	if status >= 500 {
		logger.Error("Request failed", "status", status, "error", err)
	}
	writeJSON(w, status, body)
}

func classify(err error) (int, errorResponse) {
	var verr *domain.ValidationError
	var mierr *domain.MissingIndexError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorResponse{Error: verr.Message, Code: codeValidation, Field: verr.Field}
	case errors.As(err, &mierr):
		return http.StatusConflict, errorResponse{
			Error: "this filter combination needs a composite index that has not been created yet",
			Code:  codeMissingIndex,
			Hint:  mierr.Hint,
		}
	case errors.Is(err, domain.ErrMissingIndex):
		return http.StatusConflict, errorResponse{Error: err.Error(), Code: codeMissingIndex}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: codeValidation}
	case errors.Is(err, domain.ErrInvalidCursor):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: codeInvalidCursor}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "not found", Code: codeNotFound}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "authentication required", Code: codeUnauthenticate}
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable, errorResponse{Error: "service temporarily unavailable, please retry", Code: codeUnavailable}
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal error", Code: codeInternal}
}
