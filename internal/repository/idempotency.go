package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
)

// StoredResponse is a successful response kept for replay under an
// (Idempotency-Key, operator) pair until ExpiresAt. A zero StatusCode marks
// a claim whose request is still running.
type StoredResponse struct {
	Key         string
	OperatorID  uuid.UUID
	RequestHash string
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// InFlight reports whether the owning request has not produced a response yet.
func (s *StoredResponse) InFlight() bool {
	return s.StatusCode == 0
}

const storedResponseColumns = `idempotency_key, operator_id, request_hash, status_code, content_type, response_body, created_at, expires_at`

type IdempotencyRepository struct {
	db *sql.DB
}

func NewIdempotencyRepository(db *sql.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// Get returns the live entry for key, or domain.ErrNotFound.
func (r *IdempotencyRepository) Get(ctx context.Context, key string, operatorID uuid.UUID) (*StoredResponse, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+storedResponseColumns+` FROM idempotency_cache
		WHERE idempotency_key = $1 AND operator_id = $2 AND expires_at > now()`,
		key, operatorID,
	)
	resp, err := scanStoredResponse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("Get: %w", err)
	}
	return resp, nil
}

// Claim inserts an in-flight entry for the key before the request runs. It
// reports whether this caller owns the key; an expired leftover is taken over.
func (r *IdempotencyRepository) Claim(ctx context.Context, resp *StoredResponse) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO idempotency_cache (`+storedResponseColumns+`)
		VALUES ($1, $2, $3, 0, '', ''::bytea, $4, $5)
		ON CONFLICT (idempotency_key, operator_id) DO UPDATE SET
			request_hash = EXCLUDED.request_hash,
			status_code = 0,
			content_type = '',
			response_body = EXCLUDED.response_body,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
		WHERE idempotency_cache.expires_at <= now()`,
		resp.Key, resp.OperatorID, resp.RequestHash, resp.CreatedAt, resp.ExpiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("Claim: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Claim: rows affected: %w", err)
	}
	return n == 1, nil
}

// Complete fills a claimed entry with the response to replay.
func (r *IdempotencyRepository) Complete(ctx context.Context, resp *StoredResponse) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE idempotency_cache
		SET status_code = $3, content_type = $4, response_body = $5, expires_at = $6
		WHERE idempotency_key = $1 AND operator_id = $2 AND status_code = 0`,
		resp.Key, resp.OperatorID, resp.StatusCode, resp.ContentType, resp.Body, resp.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("Complete: %w", err)
	}
	return requireOneRow(res, "Complete")
}

// Release drops an in-flight claim so the key can be retried.
func (r *IdempotencyRepository) Release(ctx context.Context, key string, operatorID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM idempotency_cache WHERE idempotency_key = $1 AND operator_id = $2 AND status_code = 0`,
		key, operatorID,
	)
	if err != nil {
		return fmt.Errorf("Release: %w", err)
	}
	return nil
}

// CleanExpired deletes entries that expired before cutoff.
func (r *IdempotencyRepository) CleanExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM idempotency_cache WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("CleanExpired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("CleanExpired: rows affected: %w", err)
	}
	return n, nil
}

func scanStoredResponse(s scanner) (*StoredResponse, error) {
	var resp StoredResponse
	err := s.Scan(
		&resp.Key, &resp.OperatorID, &resp.RequestHash, &resp.StatusCode,
		&resp.ContentType, &resp.Body, &resp.CreatedAt, &resp.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
