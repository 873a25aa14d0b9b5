package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
)

const eventColumns = `id, movement_id, account_id, event_type, payload, status,
	attempts, last_attempt, created_at`

type OutboxRepository struct {
	db *sql.DB
}

func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) Create(ctx context.Context, tx *sql.Tx, event *domain.MovementEvent) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO movement_events (
			id, movement_id, account_id, event_type, payload, status, attempts, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.MovementID, event.AccountID, event.EventType,
		[]byte(event.Payload), event.Status, event.Attempts, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// ClaimPending locks up to limit pending events for the life of tx.
// SKIP LOCKED lets several dispatchers share the table.
func (r *OutboxRepository) ClaimPending(ctx context.Context, tx *sql.Tx, limit int) ([]domain.MovementEvent, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM movement_events
		WHERE status = $1 ORDER BY created_at LIMIT $2 FOR UPDATE SKIP LOCKED`,
		domain.EventStatusPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ClaimPending: %w", err)
	}
	defer rows.Close()

	var events []domain.MovementEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("ClaimPending: scan: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ClaimPending: rows: %w", err)
	}
	return events, nil
}

func (r *OutboxRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.EventStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE movement_events SET status = $1, attempts = attempts + 1, last_attempt = now()
		WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	return requireOneRow(res, "UpdateStatus")
}

func scanEvent(s scanner) (*domain.MovementEvent, error) {
	var e domain.MovementEvent
	var payload []byte
	err := s.Scan(
		&e.ID, &e.MovementID, &e.AccountID, &e.EventType, &payload,
		&e.Status, &e.Attempts, &e.LastAttempt, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Payload = payload
	return &e, nil
}
