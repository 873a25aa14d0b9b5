package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
)

type accountRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	List(ctx context.Context) ([]domain.Account, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Account, error)
	CountByClient(ctx context.Context, clientID uuid.UUID) (int, error)
	Create(ctx context.Context, account *domain.Account) error
	UpdateDetails(ctx context.Context, account *domain.Account) error
	DeleteIfZeroBalance(ctx context.Context, id uuid.UUID) (bool, error)
}

type clientRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	GetByClientID(ctx context.Context, clientID string) (*domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
	ExistsByClientID(ctx context.Context, clientID string) (bool, error)
	ExistsByIdentification(ctx context.Context, identification string) (bool, error)
	Create(ctx context.Context, c *domain.Client) error
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type accountNumberGenerator interface {
	NextAccountNumber() (string, error)
}

type clientIDGenerator interface {
	NextClientID() (string, error)
}
