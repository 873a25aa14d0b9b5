package events

import (
	"context"
	"log/slog"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
)

// LogPublisher records events in the service log. Used when no broker is
// configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "log-publisher")}
}

func (p *LogPublisher) Publish(_ context.Context, event domain.MovementEvent) error {
	p.logger.Info("movement event",
		"event_id", event.ID,
		"event_type", event.EventType,
		"movement_id", event.MovementID,
		"account_id", event.AccountID,
		"payload", string(event.Payload),
	)
	return nil
}
