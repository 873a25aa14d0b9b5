package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
)

const clientColumns = `id, client_id, name, gender, age, identification, phone, address,
	password_hash, active, created_at, updated_at`

type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id,
	)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

func (r *ClientRepository) GetByClientID(ctx context.Context, clientID string) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE client_id = $1`, clientID,
	)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByClientID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByClientID: %w", err)
	}
	return c, nil
}

func (r *ClientRepository) List(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY name, client_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	clients := []domain.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		clients = append(clients, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return clients, nil
}

func (r *ClientRepository) ExistsByClientID(ctx context.Context, clientID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM clients WHERE client_id = $1)`, clientID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsByClientID: %w", err)
	}
	return exists, nil
}

func (r *ClientRepository) ExistsByIdentification(ctx context.Context, identification string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM clients WHERE identification = $1)`, identification,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsByIdentification: %w", err)
	}
	return exists, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (
			id, client_id, name, gender, age, identification, phone, address,
			password_hash, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.ClientID, c.Name, c.Gender, c.Age, c.Identification, c.Phone, c.Address,
		c.PasswordHash, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE clients SET
			name = $1, gender = $2, age = $3, identification = $4, phone = $5,
			address = $6, password_hash = $7, active = $8, updated_at = $9
		WHERE id = $10`,
		c.Name, c.Gender, c.Age, c.Identification, c.Phone,
		c.Address, c.PasswordHash, c.Active, c.UpdatedAt, c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Update: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("Update: %w", err)
	}
	return requireOneRow(res, "Update")
}

func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("Delete: %w", domain.NewRuleError(domain.ErrInvalidOperation, "client still owns accounts"))
		}
		return fmt.Errorf("Delete: %w", err)
	}
	return requireOneRow(res, "Delete")
}

func scanClient(s scanner) (*domain.Client, error) {
	var c domain.Client
	err := s.Scan(
		&c.ID, &c.ClientID, &c.Name, &c.Gender, &c.Age, &c.Identification,
		&c.Phone, &c.Address, &c.PasswordHash, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
