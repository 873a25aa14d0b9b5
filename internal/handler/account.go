package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
	"github.com/josh-kwaku/bank-ledger/internal/logging"
	"github.com/josh-kwaku/bank-ledger/internal/service"
)

type accountService interface {
	CreateAccount(ctx context.Context, req service.CreateAccountRequest) (*domain.Account, error)
	UpdateAccount(ctx context.Context, id uuid.UUID, req service.UpdateAccountRequest) (*domain.Account, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	ListClientAccounts(ctx context.Context, clientID uuid.UUID) ([]domain.Account, error)
	AccountNumberExists(ctx context.Context, number string) (bool, error)
}

type AccountHandler struct {
	accounts accountService
}

func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type createAccountRequest struct {
	ClientID       *uuid.UUID       `json:"client_id" validate:"required"`
	Type           string           `json:"type" validate:"required,oneof=SAVINGS CHECKING"`
	InitialBalance *decimal.Decimal `json:"initial_balance" validate:"required,cents,nonnegative"`
	Active         *bool            `json:"active"`
}

type updateAccountRequest struct {
	Type   *string `json:"type" validate:"omitempty,oneof=SAVINGS CHECKING"`
	Active *bool   `json:"active"`
}

type accountDTO struct {
	ID             uuid.UUID `json:"id"`
	ClientID       uuid.UUID `json:"client_id"`
	AccountNumber  string    `json:"account_number"`
	Type           string    `json:"type"`
	InitialBalance string    `json:"initial_balance"`
	CurrentBalance string    `json:"current_balance"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		ID:             a.ID,
		ClientID:       a.ClientID,
		AccountNumber:  a.AccountNumber,
		Type:           string(a.Type),
		InitialBalance: a.InitialBalance.StringFixed(2),
		CurrentBalance: a.CurrentBalance.StringFixed(2),
		Active:         a.Active,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func toAccountDTOs(accounts []domain.Account) []accountDTO {
	dtos := make([]accountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}
	return dtos
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	fields, appErr := decodeAndValidate(r, &req)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	a, err := h.accounts.CreateAccount(r.Context(), service.CreateAccountRequest{
		ClientID:       *req.ClientID,
		Type:           domain.AccountType(req.Type),
		InitialBalance: *req.InitialBalance,
		Active:         req.Active,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("account creation failed", "client_id", req.ClientID, "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/accounts/%s", a.ID))
	RespondSuccess(w, http.StatusCreated, toAccountDTO(a))
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAccounts(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTOs(accounts))
}

func (h *AccountHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := uuidParam(r, "id")
	if !ok {
		RespondAppError(w, ErrClientNotFound, nil)
		return
	}

	accounts, err := h.accounts.ListClientAccounts(r.Context(), clientID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTOs(accounts))
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		RespondAppError(w, ErrAccountNotFound, nil)
		return
	}

	a, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(a))
}

func (h *AccountHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	a, err := h.accounts.GetAccountByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(a))
}

func (h *AccountHandler) NumberExists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.accounts.AccountNumberExists(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, existsDTO{Exists: exists})
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		RespondAppError(w, ErrAccountNotFound, nil)
		return
	}

	var req updateAccountRequest
	fields, appErr := decodeAndValidate(r, &req)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	patch := service.UpdateAccountRequest{Active: req.Active}
	if req.Type != nil {
		t := domain.AccountType(*req.Type)
		patch.Type = &t
	}

	a, err := h.accounts.UpdateAccount(r.Context(), id, patch)
	if err != nil {
		logging.FromContext(r.Context()).Warn("account update failed", "account_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(a))
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		RespondAppError(w, ErrAccountNotFound, nil)
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), id); err != nil {
		logging.FromContext(r.Context()).Warn("account deletion failed", "account_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
