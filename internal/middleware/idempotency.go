package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/bank-ledger/internal/auth"
	"github.com/josh-kwaku/bank-ledger/internal/domain"
	"github.com/josh-kwaku/bank-ledger/internal/handler"
	"github.com/josh-kwaku/bank-ledger/internal/logging"
	"github.com/josh-kwaku/bank-ledger/internal/repository"
)

type responseCache interface {
	Get(ctx context.Context, key string, operatorID uuid.UUID) (*repository.StoredResponse, error)
	Claim(ctx context.Context, resp *repository.StoredResponse) (bool, error)
	Complete(ctx context.Context, resp *repository.StoredResponse) error
	Release(ctx context.Context, key string, operatorID uuid.UUID) error
}

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "X-Idempotent-Replayed"
	idempotencyTTL    = 24 * time.Hour
	claimLease        = 2 * time.Minute
	maxKeyLen         = 255
)

// Idempotency replays the stored response when an operator repeats a request
// with the same Idempotency-Key. Requests without the header pass through.
// The key is claimed before the handler runs, so a duplicate arriving while
// the first request is in flight gets 409 instead of running twice. Only 2xx
// responses are stored so a rejected movement can be retried.
func Idempotency(cache responseCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxKeyLen {
				handler.RespondValidationError(w, []handler.FieldError{
					{Field: idempotencyHeader, Message: "must be at most 255 characters"},
				})
				return
			}

			operatorID, ok := auth.OperatorIDFromContext(r.Context())
			if !ok {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidRequest, nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			log := logging.FromContext(r.Context()).With("idempotency_key", key)
			hash := requestHash(r.Method, r.URL.Path, body)

			stored, err := cache.Get(r.Context(), key, operatorID)
			switch {
			case err == nil:
				respondStored(w, stored, hash, log)
				return
			case !errors.Is(err, domain.ErrNotFound):
				log.Error("idempotency cache lookup failed", "error", err)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
				return
			}

			now := time.Now().UTC()
			owned, err := cache.Claim(r.Context(), &repository.StoredResponse{
				Key:         key,
				OperatorID:  operatorID,
				RequestHash: hash,
				CreatedAt:   now,
				ExpiresAt:   now.Add(claimLease),
			})
			if err != nil {
				log.Error("idempotency key claim failed", "error", err)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
				return
			}
			if !owned {
				stored, err := cache.Get(r.Context(), key, operatorID)
				if err != nil {
					// the holder released its claim between our reads
					handler.RespondAppError(w, handler.ErrRequestInProgress, nil)
					return
				}
				respondStored(w, stored, hash, log)
				return
			}

			settled := false
			defer func() {
				if settled {
					return
				}
				if err := cache.Release(context.WithoutCancel(r.Context()), key, operatorID); err != nil {
					log.Error("idempotency claim release failed", "error", err)
				}
			}()

			rec := &bufferingRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status < 200 || rec.status >= 300 {
				return
			}
			// a 2xx keeps the claim even if storing the body fails
			settled = true

			err = cache.Complete(r.Context(), &repository.StoredResponse{
				Key:         key,
				OperatorID:  operatorID,
				StatusCode:  rec.status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
				ExpiresAt:   time.Now().UTC().Add(idempotencyTTL),
			})
			if err != nil {
				log.Error("idempotency cache store failed", "error", err)
			}
		})
	}
}

func respondStored(w http.ResponseWriter, stored *repository.StoredResponse, hash string, log *slog.Logger) {
	switch {
	case stored.RequestHash != hash:
		handler.RespondAppError(w, handler.ErrIdempotencyConflict, nil)
	case stored.InFlight():
		handler.RespondAppError(w, handler.ErrRequestInProgress, nil)
	default:
		replay(w, stored, log)
	}
}

func replay(w http.ResponseWriter, stored *repository.StoredResponse, log *slog.Logger) {
	contentType := stored.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(stored.StatusCode)
	if _, err := w.Write(stored.Body); err != nil {
		log.Error("failed to write idempotent replay", "error", err)
	}
}

func requestHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type bufferingRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *bufferingRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *bufferingRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
