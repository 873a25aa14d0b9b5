// Package ledger applies balance-changing movements to accounts.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
	"github.com/josh-kwaku/bank-ledger/internal/logging"
)

type accountStore interface {
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance decimal.Decimal, newVersion int64) error
}

type movementStore interface {
	Create(ctx context.Context, tx *sql.Tx, m *domain.Movement) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Movement, error)
	List(ctx context.Context) ([]domain.Movement, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Movement, error)
	ListByAccountAndRange(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.Movement, error)
}

type eventStore interface {
	Create(ctx context.Context, tx *sql.Tx, event *domain.MovementEvent) error
}

type Service struct {
	db         *sql.DB
	accounts   accountStore
	movements  movementStore
	events     eventStore
	maxRetries uint64
	retryDelay time.Duration
	now        func() time.Time
}

func NewService(db *sql.DB, accounts accountStore, movements movementStore, events eventStore, maxRetries uint64) *Service {
	return &Service{
		db:         db,
		accounts:   accounts,
		movements:  movements,
		events:     events,
		maxRetries: maxRetries,
		retryDelay: 20 * time.Millisecond,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ApplyMovementRequest leaves every field optional so missing input is
// reported by ApplyMovement in its fixed validation order.
type ApplyMovementRequest struct {
	AccountID *uuid.UUID
	Type      domain.MovementType
	Value     *decimal.Decimal
	Date      *time.Time
}

// ApplyMovement validates the request against the locked account, moves the
// balance and appends the movement and its outbox event in one transaction.
// An optimistic version conflict re-runs the whole unit.
func (s *Service) ApplyMovement(ctx context.Context, req ApplyMovementRequest) (*domain.Movement, error) {
	log := logging.FromContext(ctx)

	if req.AccountID == nil || *req.AccountID == uuid.Nil {
		return nil, fmt.Errorf("ApplyMovement: %w", domain.NewRuleError(domain.ErrInvalidMovement, "account id required"))
	}

	var movement *domain.Movement
	operation := func() error {
		m, err := s.applyOnce(ctx, *req.AccountID, req)
		if err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				return err
			}
			return backoff.Permanent(err)
		}
		movement = m
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retryDelay), s.maxRetries),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		log.Warn("movement version conflict, retrying",
			"account_id", *req.AccountID,
			"wait_ms", wait.Milliseconds(),
			"error", err,
		)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, fmt.Errorf("ApplyMovement: %w", err)
	}

	log.Info("movement applied",
		"movement_id", movement.ID,
		"account_id", movement.AccountID,
		"movement_type", movement.Type,
		"value", movement.Value.StringFixed(2),
		"balance_after", movement.BalanceAfter.StringFixed(2),
	)

	return movement, nil
}

func (s *Service) applyOnce(ctx context.Context, accountID uuid.UUID, req ApplyMovementRequest) (*domain.Movement, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("applyOnce: begin tx: %w", err)
	}
	defer tx.Rollback()

	account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("applyOnce: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("applyOnce: %w", err)
	}

	amount, err := validate(account, req)
	if err != nil {
		return nil, fmt.Errorf("applyOnce: %w", err)
	}

	signed, newBalance := Post(req.Type, amount, account.CurrentBalance)
	if newBalance.IsNegative() {
		return nil, fmt.Errorf("applyOnce: %w", domain.ErrInsufficientFunds)
	}

	now := s.now()
	date := now
	if req.Date != nil {
		date = req.Date.UTC()
	}

	movement := &domain.Movement{
		ID:           uuid.New(),
		AccountID:    account.ID,
		Date:         date,
		Type:         req.Type,
		Value:        signed,
		BalanceAfter: newBalance,
		CreatedAt:    now,
	}

	if err := s.movements.Create(ctx, tx, movement); err != nil {
		return nil, fmt.Errorf("applyOnce: create movement: %w", err)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, account.ID, newBalance, account.Version+1); err != nil {
		return nil, fmt.Errorf("applyOnce: %w", err)
	}

	event, err := newMovementEvent(account, movement)
	if err != nil {
		return nil, fmt.Errorf("applyOnce: %w", err)
	}
	if err := s.events.Create(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("applyOnce: create event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("applyOnce: commit: %w", err)
	}

	return movement, nil
}

// validate runs the checks that follow the account lookup and returns the
// absolute amount to post.
func validate(account *domain.Account, req ApplyMovementRequest) (decimal.Decimal, error) {
	if !account.Active {
		return decimal.Zero, domain.ErrAccountInactive
	}
	if req.Type == "" {
		return decimal.Zero, domain.NewRuleError(domain.ErrInvalidMovement, "movement type required")
	}
	if !req.Type.IsValid() {
		return decimal.Zero, domain.NewRuleError(domain.ErrInvalidMovement, fmt.Sprintf("unknown movement type %q", req.Type))
	}
	if req.Value == nil || req.Value.IsZero() {
		return decimal.Zero, domain.NewRuleError(domain.ErrInvalidMovement, "value must be nonzero")
	}
	return req.Value.Abs(), nil
}

// Post returns the signed value to store for a movement of the given type
// and the resulting balance. The sign of the caller's amount is ignored.
func Post(t domain.MovementType, amount, balance decimal.Decimal) (signed, newBalance decimal.Decimal) {
	amount = amount.Abs()
	if t.IsDebit() {
		return amount.Neg(), balance.Sub(amount)
	}
	return amount, balance.Add(amount)
}

func newMovementEvent(account *domain.Account, m *domain.Movement) (*domain.MovementEvent, error) {
	payload, err := json.Marshal(domain.MovementEventPayload{
		MovementID:    m.ID,
		AccountID:     account.ID,
		AccountNumber: account.AccountNumber,
		MovementType:  m.Type,
		Value:         m.Value.StringFixed(2),
		BalanceAfter:  m.BalanceAfter.StringFixed(2),
		Date:          m.Date,
	})
	if err != nil {
		return nil, fmt.Errorf("newMovementEvent: %w", err)
	}

	return &domain.MovementEvent{
		ID:         uuid.New(),
		MovementID: m.ID,
		AccountID:  account.ID,
		EventType:  domain.EventTypeMovementCreated,
		Payload:    payload,
		Status:     domain.EventStatusPending,
		CreatedAt:  m.CreatedAt,
	}, nil
}

func (s *Service) UpdateMovement(ctx context.Context, id uuid.UUID) error {
	logging.FromContext(ctx).Warn("movement update rejected", "movement_id", id)
	return fmt.Errorf("UpdateMovement: %w", domain.NewRuleError(domain.ErrInvalidMovement, "modification/deletion not permitted"))
}

func (s *Service) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	logging.FromContext(ctx).Warn("movement deletion rejected", "movement_id", id)
	return fmt.Errorf("DeleteMovement: %w", domain.NewRuleError(domain.ErrInvalidMovement, "modification/deletion not permitted"))
}

func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*domain.Movement, error) {
	m, err := s.movements.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("FindByID: %w", err)
	}
	return m, nil
}

func (s *Service) FindAll(ctx context.Context) ([]domain.Movement, error) {
	ms, err := s.movements.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindAll: %w", err)
	}
	return ms, nil
}

func (s *Service) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Movement, error) {
	ms, err := s.movements.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("FindByAccount: %w", err)
	}
	return ms, nil
}

// FindByAccountAndDateRange returns movements dated on any calendar day from
// start to end inclusive, newest first.
func (s *Service) FindByAccountAndDateRange(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]domain.Movement, error) {
	if end.Before(domain.StartOfDay(start)) {
		return nil, fmt.Errorf("FindByAccountAndDateRange: %w", domain.NewRuleError(domain.ErrInvalidRequest, "start date is after end date"))
	}
	from, to := domain.DayRange(start, end)
	ms, err := s.movements.ListByAccountAndRange(ctx, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("FindByAccountAndDateRange: %w", err)
	}
	return ms, nil
}
