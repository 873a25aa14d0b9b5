package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
	"github.com/josh-kwaku/bank-ledger/internal/idgen"
	"github.com/josh-kwaku/bank-ledger/internal/logging"
)

type accountCounter interface {
	CountByClient(ctx context.Context, clientID uuid.UUID) (int, error)
}

type ClientService struct {
	clients     clientRepository
	accounts    accountCounter
	ids         clientIDGenerator
	maxAttempts int
	bcryptCost  int
}

func NewClientService(clients clientRepository, accounts accountCounter, ids clientIDGenerator, maxAttempts int) *ClientService {
	return &ClientService{
		clients:     clients,
		accounts:    accounts,
		ids:         ids,
		maxAttempts: maxAttempts,
		bcryptCost:  bcrypt.DefaultCost,
	}
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func (s *ClientService) WithBcryptCost(cost int) *ClientService {
	s.bcryptCost = cost
	return s
}

type CreateClientRequest struct {
	ClientID       string
	Name           string
	Gender         *domain.Gender
	Age            *int
	Identification string
	Phone          *string
	Address        *string
	Password       string
	Active         *bool
}

type UpdateClientRequest struct {
	Name           *string
	Gender         *domain.Gender
	Age            *int
	Identification *string
	Phone          *string
	Address        *string
	Password       *string
	Active         *bool
}

var (
	errIdentificationTaken = domain.NewRuleError(domain.ErrDuplicate, "identification already registered")
	errClientIDTaken       = domain.NewRuleError(domain.ErrDuplicate, "client id already registered")
	errClientOwnsAccounts  = domain.NewRuleError(domain.ErrInvalidOperation, "client still owns accounts")
)

func (s *ClientService) CreateClient(ctx context.Context, req CreateClientRequest) (*domain.Client, error) {
	taken, err := s.clients.ExistsByIdentification(ctx, req.Identification)
	if err != nil {
		return nil, fmt.Errorf("CreateClient: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("CreateClient: %w", errIdentificationTaken)
	}

	clientID := req.ClientID
	if clientID == "" {
		clientID, err = idgen.Unique(ctx, s.maxAttempts, s.ids.NextClientID, s.clients.ExistsByClientID)
		if err != nil {
			return nil, fmt.Errorf("CreateClient: client id: %w", err)
		}
	} else {
		taken, err := s.clients.ExistsByClientID(ctx, clientID)
		if err != nil {
			return nil, fmt.Errorf("CreateClient: %w", err)
		}
		if taken {
			return nil, fmt.Errorf("CreateClient: %w", errClientIDTaken)
		}
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("CreateClient: %w", err)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	c := &domain.Client{
		ID:             uuid.New(),
		ClientID:       clientID,
		Name:           req.Name,
		Gender:         req.Gender,
		Age:            req.Age,
		Identification: req.Identification,
		Phone:          req.Phone,
		Address:        req.Address,
		PasswordHash:   hash,
		Active:         active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.clients.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("CreateClient: %w", err)
	}

	logging.FromContext(ctx).Info("client created", "id", c.ID, "client_id", c.ClientID)
	return c, nil
}

func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*domain.Client, error) {
	c, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("UpdateClient: %w", err)
	}

	if req.Identification != nil && *req.Identification != c.Identification {
		taken, err := s.clients.ExistsByIdentification(ctx, *req.Identification)
		if err != nil {
			return nil, fmt.Errorf("UpdateClient: %w", err)
		}
		if taken {
			return nil, fmt.Errorf("UpdateClient: %w", errIdentificationTaken)
		}
		c.Identification = *req.Identification
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Gender != nil {
		c.Gender = req.Gender
	}
	if req.Age != nil {
		c.Age = req.Age
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}
	if req.Address != nil {
		c.Address = req.Address
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	if req.Password != nil {
		hash, err := s.hashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("UpdateClient: %w", err)
		}
		c.PasswordHash = hash
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.clients.Update(ctx, c); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("UpdateClient: %w", domain.ErrClientNotFound)
		}
		return nil, fmt.Errorf("UpdateClient: %w", err)
	}

	logging.FromContext(ctx).Info("client updated", "id", c.ID, "active", c.Active)
	return c, nil
}

// DeleteClient refuses while the client still owns accounts.
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetClient(ctx, id); err != nil {
		return fmt.Errorf("DeleteClient: %w", err)
	}

	n, err := s.accounts.CountByClient(ctx, id)
	if err != nil {
		return fmt.Errorf("DeleteClient: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("DeleteClient: %w", errClientOwnsAccounts)
	}

	if err := s.clients.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("DeleteClient: %w", domain.ErrClientNotFound)
		}
		return fmt.Errorf("DeleteClient: %w", err)
	}

	logging.FromContext(ctx).Info("client deleted", "id", id)
	return nil
}

func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("GetClient: %w", domain.ErrClientNotFound)
		}
		return nil, fmt.Errorf("GetClient: %w", err)
	}
	return c, nil
}

func (s *ClientService) GetClientByClientID(ctx context.Context, clientID string) (*domain.Client, error) {
	c, err := s.clients.GetByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("GetClientByClientID: %w", domain.ErrClientNotFound)
		}
		return nil, fmt.Errorf("GetClientByClientID: %w", err)
	}
	return c, nil
}

func (s *ClientService) ListClients(ctx context.Context) ([]domain.Client, error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListClients: %w", err)
	}
	return clients, nil
}

func (s *ClientService) ClientIDExists(ctx context.Context, clientID string) (bool, error) {
	exists, err := s.clients.ExistsByClientID(ctx, clientID)
	if err != nil {
		return false, fmt.Errorf("ClientIDExists: %w", err)
	}
	return exists, nil
}

func (s *ClientService) IdentificationExists(ctx context.Context, identification string) (bool, error) {
	exists, err := s.clients.ExistsByIdentification(ctx, identification)
	if err != nil {
		return false, fmt.Errorf("IdentificationExists: %w", err)
	}
	return exists, nil
}

func (s *ClientService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashPassword: %w", err)
	}
	return string(hash), nil
}
