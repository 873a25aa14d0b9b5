package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
	"github.com/josh-kwaku/bank-ledger/internal/idgen"
	"github.com/josh-kwaku/bank-ledger/internal/logging"
)

type clientChecker interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
}

// AccountService guards the account lifecycle: opening requires an active
// client, closing requires a zero balance. It never changes balances.
type AccountService struct {
	accounts    accountRepository
	clients     clientChecker
	numbers     accountNumberGenerator
	maxAttempts int
}

func NewAccountService(accounts accountRepository, clients clientChecker, numbers accountNumberGenerator, maxAttempts int) *AccountService {
	return &AccountService{
		accounts:    accounts,
		clients:     clients,
		numbers:     numbers,
		maxAttempts: maxAttempts,
	}
}

type CreateAccountRequest struct {
	ClientID       uuid.UUID
	Type           domain.AccountType
	InitialBalance decimal.Decimal
	Active         *bool
}

type UpdateAccountRequest struct {
	Type   *domain.AccountType
	Active *bool
}

func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	client, err := s.clients.GetByID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("CreateAccount: %w", domain.ErrClientNotFound)
		}
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}
	if !client.Active {
		return nil, fmt.Errorf("CreateAccount: %w",
			domain.NewRuleError(domain.ErrInvalidOperation, "cannot open account for inactive client"))
	}

	if !req.Type.IsValid() {
		return nil, fmt.Errorf("CreateAccount: %w",
			domain.NewRuleError(domain.ErrInvalidRequest, fmt.Sprintf("unknown account type %q", req.Type)))
	}
	if req.InitialBalance.IsNegative() {
		return nil, fmt.Errorf("CreateAccount: %w",
			domain.NewRuleError(domain.ErrInvalidRequest, "initial balance cannot be negative"))
	}

	number, err := idgen.Unique(ctx, s.maxAttempts, s.numbers.NextAccountNumber, s.accounts.ExistsByNumber)
	if err != nil {
		return nil, fmt.Errorf("CreateAccount: account number: %w", err)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:             uuid.New(),
		ClientID:       client.ID,
		AccountNumber:  number,
		Type:           req.Type,
		InitialBalance: req.InitialBalance,
		CurrentBalance: req.InitialBalance,
		Active:         active,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Another request took the number between the check and the insert.
			return nil, fmt.Errorf("CreateAccount: number %s taken concurrently: %w", number, domain.ErrGenerationExhausted)
		}
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	log.Info("account created",
		"account_id", account.ID,
		"client_id", client.ID,
		"account_number", account.AccountNumber,
		"account_type", account.Type,
	)

	return account, nil
}

// UpdateAccount changes only the account type and active flag.
func (s *AccountService) UpdateAccount(ctx context.Context, id uuid.UUID, req UpdateAccountRequest) (*domain.Account, error) {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("UpdateAccount: %w", err)
	}

	if req.Type != nil {
		if !req.Type.IsValid() {
			return nil, fmt.Errorf("UpdateAccount: %w",
				domain.NewRuleError(domain.ErrInvalidRequest, fmt.Sprintf("unknown account type %q", *req.Type)))
		}
		account.Type = *req.Type
	}
	if req.Active != nil {
		account.Active = *req.Active
	}
	account.UpdatedAt = time.Now().UTC()

	if err := s.accounts.UpdateDetails(ctx, account); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("UpdateAccount: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("UpdateAccount: %w", err)
	}
	account.Version++

	logging.FromContext(ctx).Info("account updated",
		"account_id", account.ID,
		"account_type", account.Type,
		"active", account.Active,
	)

	return account, nil
}

// DeleteAccount removes a zero-balance account. Its movements are kept.
func (s *AccountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return fmt.Errorf("DeleteAccount: %w", err)
	}
	if !account.CurrentBalance.IsZero() {
		return fmt.Errorf("DeleteAccount: %w", errNonzeroBalance)
	}

	deleted, err := s.accounts.DeleteIfZeroBalance(ctx, id)
	if err != nil {
		return fmt.Errorf("DeleteAccount: %w", err)
	}
	if !deleted {
		// A movement landed after the check above, or the account is gone.
		if _, err := s.GetAccount(ctx, id); err != nil {
			return fmt.Errorf("DeleteAccount: %w", err)
		}
		return fmt.Errorf("DeleteAccount: %w", errNonzeroBalance)
	}

	logging.FromContext(ctx).Info("account deleted",
		"account_id", id,
		"account_number", account.AccountNumber,
	)
	return nil
}

var errNonzeroBalance = domain.NewRuleError(domain.ErrInvalidOperation, "cannot delete account with nonzero balance")

func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("GetAccount: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return account, nil
}

func (s *AccountService) GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	account, err := s.accounts.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("GetAccountByNumber: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetAccountByNumber: %w", err)
	}
	return account, nil
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) ListClientAccounts(ctx context.Context, clientID uuid.UUID) ([]domain.Account, error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("ListClientAccounts: %w", domain.ErrClientNotFound)
		}
		return nil, fmt.Errorf("ListClientAccounts: %w", err)
	}

	accounts, err := s.accounts.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("ListClientAccounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) AccountNumberExists(ctx context.Context, number string) (bool, error) {
	exists, err := s.accounts.ExistsByNumber(ctx, number)
	if err != nil {
		return false, fmt.Errorf("AccountNumberExists: %w", err)
	}
	return exists, nil
}
