package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type reasonDetails struct {
	Reason string `json:"reason"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

// RespondDocument writes a rendered document. attachment names the file when
// the client should download it instead of displaying it.
func RespondDocument(w http.ResponseWriter, contentType, attachment string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	if attachment != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+attachment+`"`)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write document", "error", err)
	}
}

func RespondDomainError(w http.ResponseWriter, err error) {
	RespondAppError(w, appErrorFor(err), detailsFor(err))
}

func appErrorFor(err error) *AppError {
	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		return ErrClientNotFound
	case errors.Is(err, domain.ErrAccountNotFound):
		return ErrAccountNotFound
	case errors.Is(err, domain.ErrNotFound):
		return ErrResourceNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return ErrInsufficientFunds
	case errors.Is(err, domain.ErrAccountInactive):
		return ErrAccountInactive
	case errors.Is(err, domain.ErrInvalidMovement):
		return ErrInvalidMovement
	case errors.Is(err, domain.ErrInvalidOperation):
		return ErrInvalidOperation
	case errors.Is(err, domain.ErrInvalidRequest):
		return ErrInvalidRequest
	case errors.Is(err, domain.ErrDuplicate):
		return ErrDuplicate
	case errors.Is(err, domain.ErrVersionConflict):
		return ErrVersionConflict
	case errors.Is(err, domain.ErrGenerationExhausted):
		return ErrGenerationExhausted
	case errors.Is(err, domain.ErrRenderFailed):
		slog.Error("document rendering failed", "error", err)
		return ErrRenderFailed
	default:
		slog.Error("unhandled domain error", "error", err)
		return ErrInternalError
	}
}

func detailsFor(err error) any {
	if reason := domain.Reason(err); reason != "" {
		return reasonDetails{Reason: reason}
	}
	return nil
}
