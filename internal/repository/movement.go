package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
)

const movementColumns = `id, account_id, date, movement_type, value, balance_after, created_at`

// MovementRepository has no update or delete: movements are append-only.
type MovementRepository struct {
	db *sql.DB
}

func NewMovementRepository(db *sql.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

func (r *MovementRepository) Create(ctx context.Context, tx *sql.Tx, m *domain.Movement) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO movements (
			id, account_id, date, movement_type, value, balance_after, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.AccountID, m.Date, m.Type, m.Value, m.BalanceAfter, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *MovementRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Movement, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+movementColumns+` FROM movements WHERE id = $1`, id,
	)
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return m, nil
}

func (r *MovementRepository) List(ctx context.Context) ([]domain.Movement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+movementColumns+` FROM movements ORDER BY date DESC, created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return collectMovements(rows, "List")
}

// ListByAccount returns the account's movements newest first.
func (r *MovementRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Movement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+movementColumns+` FROM movements
		WHERE account_id = $1 ORDER BY date DESC, created_at DESC`, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByAccount: %w", err)
	}
	return collectMovements(rows, "ListByAccount")
}

// ListByAccountAndRange returns movements with from <= date < to, newest first.
func (r *MovementRepository) ListByAccountAndRange(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.Movement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+movementColumns+` FROM movements
		WHERE account_id = $1 AND date >= $2 AND date < $3
		ORDER BY date DESC, created_at DESC`,
		accountID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByAccountAndRange: %w", err)
	}
	return collectMovements(rows, "ListByAccountAndRange")
}

func collectMovements(rows *sql.Rows, op string) ([]domain.Movement, error) {
	defer rows.Close()

	movements := []domain.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		movements = append(movements, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return movements, nil
}

func scanMovement(s scanner) (*domain.Movement, error) {
	var m domain.Movement
	err := s.Scan(
		&m.ID, &m.AccountID, &m.Date, &m.Type,
		&m.Value, &m.BalanceAfter, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
