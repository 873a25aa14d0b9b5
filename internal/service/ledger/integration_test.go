package ledger_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
	"github.com/josh-kwaku/bank-ledger/internal/repository"
	"github.com/josh-kwaku/bank-ledger/internal/service/ledger"
	"github.com/josh-kwaku/bank-ledger/internal/testutil"
)

func setupLedger(t *testing.T, db *sql.DB) *ledger.Service {
	t.Helper()
	return ledger.NewService(db,
		repository.NewAccountRepository(db),
		repository.NewMovementRepository(db),
		repository.NewOutboxRepository(db),
		3,
	)
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestApplyMovement_Deposit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db)
	ctx := context.Background()

	client := testutil.SeedClient(t, db, "10000001", "Jose Lema", "1700000001", true)
	acct := testutil.SeedAccount(t, db, client.ID, "478758", "50.00", true)

	m, err := svc.ApplyMovement(ctx, ledger.ApplyMovementRequest{
		AccountID: &acct.ID,
		Type:      domain.MovementTypeDeposit,
		Value:     amount("30.00"),
	})
	require.NoError(t, err)

	assertDecimal(t, "30.00", m.Value)
	assertDecimal(t, "80.00", m.BalanceAfter)
	assertDecimal(t, "80.00", testutil.GetAccountBalance(t, db, acct.ID))
	assert.Equal(t, 1, testutil.CountMovements(t, db, acct.ID))

	stored, err := svc.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assertDecimal(t, "30.00", stored.Value)
	assert.Equal(t, domain.MovementTypeDeposit, stored.Type)

	events := testutil.MovementEvents(t, db, m.ID)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeMovementCreated, events[0].EventType)
	assert.Equal(t, domain.EventStatusPending, events[0].Status)
}

func TestApplyMovement_Withdrawal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db)

	client := testutil.SeedClient(t, db, "10000002", "Marianela Montalvo", "1700000002", true)
	acct := testutil.SeedAccount(t, db, client.ID, "225487", "100.00", true)

	m, err := svc.ApplyMovement(context.Background(), ledger.ApplyMovementRequest{
		AccountID: &acct.ID,
		Type:      domain.MovementTypeWithdrawal,
		Value:     amount("30.00"),
	})
	require.NoError(t, err)

	assertDecimal(t, "-30.00", m.Value)
	assertDecimal(t, "70.00", m.BalanceAfter)
	assertDecimal(t, "70.00", testutil.GetAccountBalance(t, db, acct.ID))
}

func TestApplyMovement_InsufficientFundsLeavesNoTrace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db)

	client := testutil.SeedClient(t, db, "10000003", "Juan Osorio", "1700000003", true)
	acct := testutil.SeedAccount(t, db, client.ID, "495878", "10.00", true)

	_, err := svc.ApplyMovement(context.Background(), ledger.ApplyMovementRequest{
		AccountID: &acct.ID,
		Type:      domain.MovementTypeWithdrawal,
		Value:     amount("20.00"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assertDecimal(t, "10.00", testutil.GetAccountBalance(t, db, acct.ID))
	assert.Equal(t, 0, testutil.CountMovements(t, db, acct.ID))
	assert.Equal(t, 0, testutil.CountPendingEvents(t, db))
}

func TestApplyMovement_InactiveAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db)

	client := testutil.SeedClient(t, db, "10000004", "Jose Lema", "1700000004", true)
	acct := testutil.SeedAccount(t, db, client.ID, "585545", "10.00", false)

	_, err := svc.ApplyMovement(context.Background(), ledger.ApplyMovementRequest{
		AccountID: &acct.ID,
		Type:      domain.MovementTypeDeposit,
		Value:     amount("5.00"),
	})
	require.ErrorIs(t, err, domain.ErrAccountInactive)
	assert.Equal(t, 0, testutil.CountMovements(t, db, acct.ID))
}

func TestApplyMovement_MissingAccountID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db)

	_, err := svc.ApplyMovement(context.Background(), ledger.ApplyMovementRequest{
		Type:  domain.MovementTypeDeposit,
		Value: amount("5.00"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidMovement)
	assert.Contains(t, err.Error(), "account id required")
}

func TestApplyMovement_BalanceInvariant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db)
	ctx := context.Background()

	client := testutil.SeedClient(t, db, "10000005", "Ana Torres", "1700000005", true)
	acct := testutil.SeedAccount(t, db, client.ID, "111222", "500.00", true)

	requests := []struct {
		movement domain.MovementType
		value    string
	}{
		{domain.MovementTypeDeposit, "-25.10"},
		{domain.MovementTypeWithdrawal, "100"},
		{domain.MovementTypeTransferIn, "12.34"},
		{domain.MovementTypeTransferOut, "-0.01"},
		{domain.MovementTypeWithdrawal, "-37.33"},
	}
	for _, r := range requests {
		_, err := svc.ApplyMovement(ctx, ledger.ApplyMovementRequest{
			AccountID: &acct.ID,
			Type:      r.movement,
			Value:     amount(r.value),
		})
		require.NoError(t, err)
	}

	balance := testutil.GetAccountBalance(t, db, acct.ID)
	assertDecimal(t, "400.10", balance)
	assertDecimal(t, balance.String(), acct.InitialBalance.Add(testutil.SumMovements(t, db, acct.ID)))

	first, err := svc.FindByAccount(ctx, acct.ID)
	require.NoError(t, err)
	second, err := svc.FindByAccount(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, first, len(requests))
	require.Len(t, second, len(requests))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assertDecimal(t, first[i].BalanceAfter.String(), second[i].BalanceAfter)
	}
}

func TestApplyMovement_ConcurrentWithdrawalsCannotOverdraw(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db)
	ctx := context.Background()

	client := testutil.SeedClient(t, db, "10000006", "Luis Paz", "1700000006", true)
	acct := testutil.SeedAccount(t, db, client.ID, "333444", "100.00", true)

	const workers = 10
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApplyMovement(ctx, ledger.ApplyMovementRequest{
				AccountID: &acct.ID,
				Type:      domain.MovementTypeWithdrawal,
				Value:     amount("30.00"),
			})
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	var succeeded, insufficient int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientFunds):
			insufficient++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, workers-3, insufficient)
	assertDecimal(t, "10.00", testutil.GetAccountBalance(t, db, acct.ID))
	assert.Equal(t, 3, testutil.CountMovements(t, db, acct.ID))
}

func TestFindByAccountAndDateRange_InclusiveDays(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db)
	ctx := context.Background()

	client := testutil.SeedClient(t, db, "10000007", "Eva Ruiz", "1700000007", true)
	acct := testutil.SeedAccount(t, db, client.ID, "555666", "0.00", true)

	dates := []time.Time{
		time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		_, err := svc.ApplyMovement(ctx, ledger.ApplyMovementRequest{
			AccountID: &acct.ID,
			Type:      domain.MovementTypeDeposit,
			Value:     amount("1.00"),
			Date:      &d,
		})
		require.NoError(t, err)
	}

	got, err := svc.FindByAccountAndDateRange(ctx, acct.ID,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Date.After(got[1].Date))

	none, err := svc.FindByAccountAndDateRange(ctx, uuid.New(),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMovementReads_RepeatableOverUnchangedData(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db)
	ctx := context.Background()

	client := testutil.SeedClient(t, db, "10000003", "Juan Osorio", "1700000003", true)
	acct := testutil.SeedAccount(t, db, client.ID, "585545", "100.00", true)

	deposit, err := svc.ApplyMovement(ctx, ledger.ApplyMovementRequest{
		AccountID: &acct.ID, Type: domain.MovementTypeDeposit, Value: amount("40.00"),
	})
	require.NoError(t, err)
	_, err = svc.ApplyMovement(ctx, ledger.ApplyMovementRequest{
		AccountID: &acct.ID, Type: domain.MovementTypeWithdrawal, Value: amount("15.50"),
	})
	require.NoError(t, err)

	firstByID, err := svc.FindByID(ctx, deposit.ID)
	require.NoError(t, err)
	secondByID, err := svc.FindByID(ctx, deposit.ID)
	require.NoError(t, err)
	assert.Equal(t, firstByID, secondByID)

	firstList, err := svc.FindByAccount(ctx, acct.ID)
	require.NoError(t, err)
	secondList, err := svc.FindByAccount(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, firstList, 2)
	assert.Equal(t, firstList, secondList)

	today := time.Now().UTC()
	firstRange, err := svc.FindByAccountAndDateRange(ctx, acct.ID, today, today)
	require.NoError(t, err)
	secondRange, err := svc.FindByAccountAndDateRange(ctx, acct.ID, today, today)
	require.NoError(t, err)
	assert.Equal(t, firstRange, secondRange)

	assertDecimal(t, "124.50", testutil.GetAccountBalance(t, db, acct.ID))
	assert.Equal(t, 2, testutil.CountMovements(t, db, acct.ID))
	assert.Len(t, testutil.MovementEvents(t, db, deposit.ID), 1)
}
