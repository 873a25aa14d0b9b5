package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
	"github.com/josh-kwaku/bank-ledger/internal/logging"
	"github.com/josh-kwaku/bank-ledger/internal/service"
)

type clientService interface {
	CreateClient(ctx context.Context, req service.CreateClientRequest) (*domain.Client, error)
	UpdateClient(ctx context.Context, id uuid.UUID, req service.UpdateClientRequest) (*domain.Client, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
	GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	GetClientByClientID(ctx context.Context, clientID string) (*domain.Client, error)
	ListClients(ctx context.Context) ([]domain.Client, error)
	ClientIDExists(ctx context.Context, clientID string) (bool, error)
	IdentificationExists(ctx context.Context, identification string) (bool, error)
}

type ClientHandler struct {
	clients clientService
}

func NewClientHandler(clients clientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

type createClientRequest struct {
	ClientID       string  `json:"client_id" validate:"omitempty,numeric,len=8"`
	Name           string  `json:"name" validate:"required,max=100"`
	Gender         *string `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	Age            *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Identification string  `json:"identification" validate:"required,max=20"`
	Phone          *string `json:"phone" validate:"omitempty,max=20"`
	Address        *string `json:"address" validate:"omitempty,max=200"`
	Password       string  `json:"password" validate:"required,min=4,max=72"`
	Active         *bool   `json:"active"`
}

type updateClientRequest struct {
	Name           *string `json:"name" validate:"omitnil,min=1,max=100"`
	Gender         *string `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	Age            *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Identification *string `json:"identification" validate:"omitnil,min=1,max=20"`
	Phone          *string `json:"phone" validate:"omitempty,max=20"`
	Address        *string `json:"address" validate:"omitempty,max=200"`
	Password       *string `json:"password" validate:"omitempty,min=4,max=72"`
	Active         *bool   `json:"active"`
}

type clientDTO struct {
	ID             uuid.UUID `json:"id"`
	ClientID       string    `json:"client_id"`
	Name           string    `json:"name"`
	Gender         *string   `json:"gender"`
	Age            *int      `json:"age"`
	Identification string    `json:"identification"`
	Phone          *string   `json:"phone"`
	Address        *string   `json:"address"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toClientDTO(c *domain.Client) clientDTO {
	dto := clientDTO{
		ID:             c.ID,
		ClientID:       c.ClientID,
		Name:           c.Name,
		Age:            c.Age,
		Identification: c.Identification,
		Phone:          c.Phone,
		Address:        c.Address,
		Active:         c.Active,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if c.Gender != nil {
		g := string(*c.Gender)
		dto.Gender = &g
	}
	return dto
}

func genderPtr(s *string) *domain.Gender {
	if s == nil {
		return nil
	}
	g := domain.Gender(*s)
	return &g
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	fields, appErr := decodeAndValidate(r, &req)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	c, err := h.clients.CreateClient(r.Context(), service.CreateClientRequest{
		ClientID:       req.ClientID,
		Name:           req.Name,
		Gender:         genderPtr(req.Gender),
		Age:            req.Age,
		Identification: req.Identification,
		Phone:          req.Phone,
		Address:        req.Address,
		Password:       req.Password,
		Active:         req.Active,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("client creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/clients/%s", c.ID))
	RespondSuccess(w, http.StatusCreated, toClientDTO(c))
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.ListClients(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]clientDTO, len(clients))
	for i := range clients {
		dtos[i] = toClientDTO(&clients[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		RespondAppError(w, ErrClientNotFound, nil)
		return
	}

	c, err := h.clients.GetClient(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toClientDTO(c))
}

func (h *ClientHandler) GetByClientID(w http.ResponseWriter, r *http.Request) {
	c, err := h.clients.GetClientByClientID(r.Context(), chi.URLParam(r, "clientId"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toClientDTO(c))
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		RespondAppError(w, ErrClientNotFound, nil)
		return
	}

	var req updateClientRequest
	fields, appErr := decodeAndValidate(r, &req)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	c, err := h.clients.UpdateClient(r.Context(), id, service.UpdateClientRequest{
		Name:           req.Name,
		Gender:         genderPtr(req.Gender),
		Age:            req.Age,
		Identification: req.Identification,
		Phone:          req.Phone,
		Address:        req.Address,
		Password:       req.Password,
		Active:         req.Active,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("client update failed", "client_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toClientDTO(c))
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		RespondAppError(w, ErrClientNotFound, nil)
		return
	}

	if err := h.clients.DeleteClient(r.Context(), id); err != nil {
		logging.FromContext(r.Context()).Warn("client deletion failed", "client_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ClientHandler) ClientIDExists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.clients.ClientIDExists(r.Context(), chi.URLParam(r, "clientId"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, existsDTO{Exists: exists})
}

func (h *ClientHandler) IdentificationExists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.clients.IdentificationExists(r.Context(), chi.URLParam(r, "identification"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, existsDTO{Exists: exists})
}

type existsDTO struct {
	Exists bool `json:"exists"`
}
