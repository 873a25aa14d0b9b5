package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementTypeDeposit     MovementType = "DEPOSIT"
	MovementTypeWithdrawal  MovementType = "WITHDRAWAL"
	MovementTypeTransferIn  MovementType = "TRANSFER_IN"
	MovementTypeTransferOut MovementType = "TRANSFER_OUT"
)

type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

var movementDirections = map[MovementType]Direction{
	MovementTypeDeposit:     DirectionCredit,
	MovementTypeTransferIn:  DirectionCredit,
	MovementTypeWithdrawal:  DirectionDebit,
	MovementTypeTransferOut: DirectionDebit,
}

var movementDescriptions = map[MovementType]string{
	MovementTypeDeposit:     "Deposit",
	MovementTypeWithdrawal:  "Withdrawal",
	MovementTypeTransferIn:  "Incoming transfer",
	MovementTypeTransferOut: "Outgoing transfer",
}

func (t MovementType) IsValid() bool {
	_, ok := movementDirections[t]
	return ok
}

func (t MovementType) Direction() Direction {
	return movementDirections[t]
}

func (t MovementType) IsDebit() bool {
	return movementDirections[t] == DirectionDebit
}

func (t MovementType) Description() string {
	if d, ok := movementDescriptions[t]; ok {
		return d
	}
	return string(t)
}

// Movement is an append-only balance change on one account. Value is signed:
// positive for credits, negative for debits. BalanceAfter is the account
// balance right after this movement was applied.
type Movement struct {
	ID           uuid.UUID
	AccountID    uuid.UUID
	Date         time.Time
	Type         MovementType
	Value        decimal.Decimal
	BalanceAfter decimal.Decimal
	CreatedAt    time.Time
}
