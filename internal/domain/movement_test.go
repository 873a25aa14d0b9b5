package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovementType_Classification(t *testing.T) {
	tests := []struct {
		movementType MovementType
		valid        bool
		debit        bool
		direction    Direction
		description  string
	}{
		{MovementTypeDeposit, true, false, DirectionCredit, "Deposit"},
		{MovementTypeTransferIn, true, false, DirectionCredit, "Incoming transfer"},
		{MovementTypeWithdrawal, true, true, DirectionDebit, "Withdrawal"},
		{MovementTypeTransferOut, true, true, DirectionDebit, "Outgoing transfer"},
		{MovementType("REFUND"), false, false, "", "REFUND"},
		{MovementType(""), false, false, "", ""},
	}

	for _, tc := range tests {
		t.Run(string(tc.movementType), func(t *testing.T) {
			assert.Equal(t, tc.valid, tc.movementType.IsValid())
			assert.Equal(t, tc.debit, tc.movementType.IsDebit())
			assert.Equal(t, tc.direction, tc.movementType.Direction())
			assert.Equal(t, tc.description, tc.movementType.Description())
		})
	}
}

func TestAccountType_IsValid(t *testing.T) {
	assert.True(t, AccountTypeSavings.IsValid())
	assert.True(t, AccountTypeChecking.IsValid())
	assert.False(t, AccountType("BROKERAGE").IsValid())
}

func TestRuleError(t *testing.T) {
	err := fmt.Errorf("ApplyMovement: %w", NewRuleError(ErrInvalidMovement, "value must be nonzero"))

	assert.True(t, errors.Is(err, ErrInvalidMovement))
	assert.False(t, errors.Is(err, ErrInvalidOperation))
	assert.Equal(t, "value must be nonzero", Reason(err))
	assert.Equal(t, "ApplyMovement: invalid movement: value must be nonzero", err.Error())
	assert.Equal(t, "", Reason(ErrAccountNotFound))
}
