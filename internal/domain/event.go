package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventStatusPending    EventStatus = "pending"
	EventStatusDispatched EventStatus = "dispatched"
	EventStatusFailed     EventStatus = "failed"
)

type EventType string

const (
	EventTypeMovementCreated EventType = "movement.created"
)

// MovementEvent is an outbox row written in the same transaction as the
// movement it describes.
type MovementEvent struct {
	ID          uuid.UUID
	MovementID  uuid.UUID
	AccountID   uuid.UUID
	EventType   EventType
	Payload     json.RawMessage
	Status      EventStatus
	Attempts    int
	LastAttempt *time.Time
	CreatedAt   time.Time
}

// MovementEventPayload is the JSON body published for movement.created.
type MovementEventPayload struct {
	MovementID    uuid.UUID    `json:"movement_id"`
	AccountID     uuid.UUID    `json:"account_id"`
	AccountNumber string       `json:"account_number"`
	MovementType  MovementType `json:"movement_type"`
	Value         string       `json:"value"`
	BalanceAfter  string       `json:"balance_after"`
	Date          time.Time    `json:"date"`
}
