// Package events publishes movement outbox events to downstream consumers.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
)

// Envelope is the wire form of a published movement event.
type Envelope struct {
	ID         uuid.UUID        `json:"id"`
	Type       domain.EventType `json:"type"`
	MovementID uuid.UUID        `json:"movement_id"`
	AccountID  uuid.UUID        `json:"account_id"`
	OccurredAt time.Time        `json:"occurred_at"`
	Payload    json.RawMessage  `json:"payload"`
}

func newEnvelope(event domain.MovementEvent) Envelope {
	return Envelope{
		ID:         event.ID,
		Type:       event.EventType,
		MovementID: event.MovementID,
		AccountID:  event.AccountID,
		OccurredAt: event.CreatedAt,
		Payload:    event.Payload,
	}
}

func encode(event domain.MovementEvent) ([]byte, error) {
	b, err := json.Marshal(newEnvelope(event))
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return b, nil
}
