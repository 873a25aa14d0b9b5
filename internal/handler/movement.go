package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
	"github.com/josh-kwaku/bank-ledger/internal/logging"
	"github.com/josh-kwaku/bank-ledger/internal/service/ledger"
)

type movementService interface {
	ApplyMovement(ctx context.Context, req ledger.ApplyMovementRequest) (*domain.Movement, error)
	UpdateMovement(ctx context.Context, id uuid.UUID) error
	DeleteMovement(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Movement, error)
	FindAll(ctx context.Context) ([]domain.Movement, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Movement, error)
	FindByAccountAndDateRange(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]domain.Movement, error)
}

type MovementHandler struct {
	movements movementService
}

func NewMovementHandler(movements movementService) *MovementHandler {
	return &MovementHandler{movements: movements}
}

// Business rules on type and value are enforced by the ledger so that
// rejections carry their reason. Only the shape is checked here.
type createMovementRequest struct {
	AccountID *uuid.UUID       `json:"account_id"`
	Type      string           `json:"type"`
	Value     *decimal.Decimal `json:"value" validate:"omitempty,cents"`
	Date      *time.Time       `json:"date"`
}

type movementDTO struct {
	ID           uuid.UUID `json:"id"`
	AccountID    uuid.UUID `json:"account_id"`
	Date         time.Time `json:"date"`
	Type         string    `json:"type"`
	Description  string    `json:"description"`
	Value        string    `json:"value"`
	BalanceAfter string    `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

func toMovementDTO(m *domain.Movement) movementDTO {
	return movementDTO{
		ID:           m.ID,
		AccountID:    m.AccountID,
		Date:         m.Date,
		Type:         string(m.Type),
		Description:  m.Type.Description(),
		Value:        m.Value.StringFixed(2),
		BalanceAfter: m.BalanceAfter.StringFixed(2),
		CreatedAt:    m.CreatedAt,
	}
}

func toMovementDTOs(ms []domain.Movement) []movementDTO {
	dtos := make([]movementDTO, len(ms))
	for i := range ms {
		dtos[i] = toMovementDTO(&ms[i])
	}
	return dtos
}

func (h *MovementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMovementRequest
	fields, appErr := decodeAndValidate(r, &req)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	m, err := h.movements.ApplyMovement(r.Context(), ledger.ApplyMovementRequest{
		AccountID: req.AccountID,
		Type:      domain.MovementType(req.Type),
		Value:     req.Value,
		Date:      req.Date,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("movement rejected", "account_id", req.AccountID, "type", req.Type, "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/movements/%s", m.ID))
	RespondSuccess(w, http.StatusCreated, toMovementDTO(m))
}

func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	ms, err := h.movements.FindAll(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toMovementDTOs(ms))
}

func (h *MovementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	m, err := h.movements.FindByID(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toMovementDTO(m))
}

// ListByAccount returns the account's movements newest first, optionally
// restricted to start_date..end_date.
func (h *MovementHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := uuidParam(r, "id")
	if !ok {
		RespondAppError(w, ErrAccountNotFound, nil)
		return
	}

	start, end, ranged, fields := dateRangeQuery(r)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	var (
		ms  []domain.Movement
		err error
	)
	if ranged {
		ms, err = h.movements.FindByAccountAndDateRange(r.Context(), accountID, start, end)
	} else {
		ms, err = h.movements.FindByAccount(r.Context(), accountID)
	}
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toMovementDTOs(ms))
}

func (h *MovementHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := uuidParam(r, "id")
	RespondDomainError(w, h.movements.UpdateMovement(r.Context(), id))
}

func (h *MovementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := uuidParam(r, "id")
	RespondDomainError(w, h.movements.DeleteMovement(r.Context(), id))
}
