package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken     = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken     = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrClientNotFound      = &AppError{http.StatusNotFound, "CLIENT_NOT_FOUND", "Client not found"}
	ErrAccountNotFound     = &AppError{http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Account not found"}
	ErrAccountInactive     = &AppError{http.StatusUnprocessableEntity, "ACCOUNT_INACTIVE", "Account is inactive"}
	ErrInvalidMovement     = &AppError{http.StatusUnprocessableEntity, "INVALID_MOVEMENT", "Movement rejected"}
	ErrInsufficientFunds   = &AppError{http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", "Insufficient funds"}
	ErrInvalidOperation    = &AppError{http.StatusUnprocessableEntity, "INVALID_OPERATION", "Operation not allowed"}
	ErrDuplicate           = &AppError{http.StatusConflict, "DUPLICATE_RESOURCE", "Resource already exists"}
	ErrVersionConflict     = &AppError{http.StatusConflict, "VERSION_CONFLICT", "Resource was modified concurrently, please retry"}
	ErrGenerationExhausted = &AppError{http.StatusServiceUnavailable, "IDENTIFIER_GENERATION_EXHAUSTED", "Could not allocate an identifier, please retry"}
	ErrRenderFailed        = &AppError{http.StatusInternalServerError, "DOCUMENT_RENDER_FAILED", "Could not render the document"}
	ErrIdempotencyConflict = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
	ErrRequestInProgress   = &AppError{http.StatusConflict, "REQUEST_IN_PROGRESS", "A request with this idempotency key is still being processed"}
)
