package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
)

func SeedClient(t *testing.T, db *sql.DB, clientID, name, identification string, active bool) *domain.Client {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	c := &domain.Client{
		ID:             uuid.New(),
		ClientID:       clientID,
		Name:           name,
		Identification: identification,
		PasswordHash:   string(hash),
		Active:         active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err = db.Exec(
		`INSERT INTO clients (id, client_id, name, identification, password_hash, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.ClientID, c.Name, c.Identification, c.PasswordHash, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed client %s: %v", clientID, err)
	}
	return c
}

func SeedAccount(t *testing.T, db *sql.DB, clientID uuid.UUID, number string, balance string, active bool) *domain.Account {
	t.Helper()

	now := time.Now().UTC()
	b := decimal.RequireFromString(balance)
	a := &domain.Account{
		ID:             uuid.New(),
		ClientID:       clientID,
		AccountNumber:  number,
		Type:           domain.AccountTypeSavings,
		InitialBalance: b,
		CurrentBalance: b,
		Active:         active,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := db.Exec(
		`INSERT INTO accounts (id, client_id, account_number, account_type, initial_balance, current_balance,
			active, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.ClientID, a.AccountNumber, a.Type, a.InitialBalance, a.CurrentBalance,
		a.Active, a.Version, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed account %s: %v", number, err)
	}
	return a
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT current_balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %s: %v", accountID, err)
	}
	return balance
}

func SumMovements(t *testing.T, db *sql.DB, accountID uuid.UUID) decimal.Decimal {
	t.Helper()

	var sum decimal.Decimal
	err := db.QueryRow(`SELECT COALESCE(SUM(value), 0) FROM movements WHERE account_id = $1`, accountID).Scan(&sum)
	if err != nil {
		t.Fatalf("sum movements for account %s: %v", accountID, err)
	}
	return sum
}

func CountMovements(t *testing.T, db *sql.DB, accountID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM movements WHERE account_id = $1`, accountID).Scan(&count)
	if err != nil {
		t.Fatalf("count movements for account %s: %v", accountID, err)
	}
	return count
}

func CountPendingEvents(t *testing.T, db *sql.DB) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM movement_events WHERE status = 'pending'`).Scan(&count)
	if err != nil {
		t.Fatalf("count pending events: %v", err)
	}
	return count
}

// MovementEvents returns the outbox rows written for a movement, oldest first.
func MovementEvents(t *testing.T, db *sql.DB, movementID uuid.UUID) []domain.MovementEvent {
	t.Helper()

	rows, err := db.Query(
		`SELECT id, movement_id, account_id, event_type, status, attempts FROM movement_events
		WHERE movement_id = $1 ORDER BY created_at`, movementID,
	)
	if err != nil {
		t.Fatalf("list events for movement %s: %v", movementID, err)
	}
	defer rows.Close()

	var events []domain.MovementEvent
	for rows.Next() {
		var e domain.MovementEvent
		if err := rows.Scan(&e.ID, &e.MovementID, &e.AccountID, &e.EventType, &e.Status, &e.Attempts); err != nil {
			t.Fatalf("scan event for movement %s: %v", movementID, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("list events for movement %s: %v", movementID, err)
	}
	return events
}
