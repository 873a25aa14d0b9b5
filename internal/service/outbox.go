package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
	"github.com/josh-kwaku/bank-ledger/internal/repository"
)

type outboxStore interface {
	ClaimPending(ctx context.Context, tx *sql.Tx, limit int) ([]domain.MovementEvent, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.EventStatus) error
}

// Publisher delivers one movement event to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event domain.MovementEvent) error
}

// OutboxDispatcher drains the movement event outbox on a fixed interval.
type OutboxDispatcher struct {
	db          *sql.DB
	events      outboxStore
	publisher   Publisher
	logger      *slog.Logger
	interval    time.Duration
	batchSize   int
	maxAttempts int
}

func NewOutboxDispatcher(
	db *sql.DB,
	events outboxStore,
	publisher Publisher,
	logger *slog.Logger,
	interval time.Duration,
	batchSize int,
	maxAttempts int,
) *OutboxDispatcher {
	return &OutboxDispatcher{
		db:          db,
		events:      events,
		publisher:   publisher,
		logger:      logger,
		interval:    interval,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
	}
}

func (d *OutboxDispatcher) Start(ctx context.Context) {
	d.logger.Info("outbox dispatcher started", "interval", d.interval, "batch_size", d.batchSize)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox dispatcher stopped")
			return
		case <-ticker.C:
			if _, err := d.DispatchBatch(ctx); err != nil {
				d.logger.Error("outbox dispatch failed", "error", err)
			}
		}
	}
}

// DispatchBatch claims up to batchSize pending events, publishes each and
// records the outcome in the same transaction. It returns how many events
// were published.
func (d *OutboxDispatcher) DispatchBatch(ctx context.Context) (int, error) {
	published := 0
	err := repository.InTx(ctx, d.db, nil, func(tx *sql.Tx) error {
		events, err := d.events.ClaimPending(ctx, tx, d.batchSize)
		if err != nil {
			return err
		}

		for _, event := range events {
			status := d.deliver(ctx, event)
			if status == domain.EventStatusDispatched {
				published++
			}
			if err := d.events.UpdateStatus(ctx, tx, event.ID, status); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("DispatchBatch: %w", err)
	}
	return published, nil
}

func (d *OutboxDispatcher) deliver(ctx context.Context, event domain.MovementEvent) domain.EventStatus {
	err := d.publisher.Publish(ctx, event)
	if err == nil {
		return domain.EventStatusDispatched
	}

	attempts := event.Attempts + 1
	if attempts >= d.maxAttempts {
		d.logger.Error("movement event abandoned",
			"event_id", event.ID,
			"movement_id", event.MovementID,
			"attempts", attempts,
			"error", err,
		)
		return domain.EventStatusFailed
	}

	d.logger.Warn("movement event publish failed, will retry",
		"event_id", event.ID,
		"movement_id", event.MovementID,
		"attempts", attempts,
		"error", err,
	)
	return domain.EventStatusPending
}
