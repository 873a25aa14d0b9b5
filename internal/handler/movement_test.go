package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
	"github.com/josh-kwaku/bank-ledger/internal/service/ledger"
)

var errImmutable = domain.NewRuleError(domain.ErrInvalidMovement, "modification/deletion not permitted")

type fakeMovements struct {
	applied    *ledger.ApplyMovementRequest
	applyErr   error
	movement   *domain.Movement
	rangeCalls int
	rangeStart time.Time
	rangeEnd   time.Time
	listCalls  int
}

func (f *fakeMovements) ApplyMovement(_ context.Context, req ledger.ApplyMovementRequest) (*domain.Movement, error) {
	f.applied = &req
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	return f.movement, nil
}

func (f *fakeMovements) UpdateMovement(_ context.Context, _ uuid.UUID) error {
	return fmt.Errorf("UpdateMovement: %w", errImmutable)
}

func (f *fakeMovements) DeleteMovement(_ context.Context, _ uuid.UUID) error {
	return fmt.Errorf("DeleteMovement: %w", errImmutable)
}

func (f *fakeMovements) FindByID(_ context.Context, id uuid.UUID) (*domain.Movement, error) {
	if f.movement == nil || f.movement.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.movement, nil
}

func (f *fakeMovements) FindAll(_ context.Context) ([]domain.Movement, error) {
	return []domain.Movement{*f.movement}, nil
}

func (f *fakeMovements) FindByAccount(_ context.Context, _ uuid.UUID) ([]domain.Movement, error) {
	f.listCalls++
	return []domain.Movement{*f.movement}, nil
}

func (f *fakeMovements) FindByAccountAndDateRange(_ context.Context, _ uuid.UUID, start, end time.Time) ([]domain.Movement, error) {
	f.rangeCalls++
	f.rangeStart, f.rangeEnd = start, end
	return []domain.Movement{*f.movement}, nil
}

func sampleMovement() *domain.Movement {
	return &domain.Movement{
		ID:           uuid.New(),
		AccountID:    uuid.New(),
		Date:         time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
		Type:         domain.MovementTypeWithdrawal,
		Value:        decimal.RequireFromString("-30"),
		BalanceAfter: decimal.RequireFromString("70"),
		CreatedAt:    time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestMovementCreate(t *testing.T) {
	accountID := uuid.New()

	tests := []struct {
		name       string
		body       string
		applyErr   error
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name:       "applied",
			body:       fmt.Sprintf(`{"account_id":%q,"type":"WITHDRAWAL","value":"30.00"}`, accountID),
			wantStatus: http.StatusCreated,
		},
		{
			name:       "numeric value accepted",
			body:       fmt.Sprintf(`{"account_id":%q,"type":"WITHDRAWAL","value":30}`, accountID),
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed json",
			body:       `{"account_id":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "more than two decimals",
			body:       fmt.Sprintf(`{"account_id":%q,"type":"DEPOSIT","value":"10.005"}`, accountID),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantField:  "value",
		},
		{
			name:       "insufficient funds",
			body:       fmt.Sprintf(`{"account_id":%q,"type":"WITHDRAWAL","value":"500"}`, accountID),
			applyErr:   fmt.Errorf("ApplyMovement: %w", domain.ErrInsufficientFunds),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "INSUFFICIENT_FUNDS",
		},
		{
			name:       "rule rejection from ledger",
			body:       `{"type":"DEPOSIT","value":"10"}`,
			applyErr:   fmt.Errorf("ApplyMovement: %w", domain.NewRuleError(domain.ErrInvalidMovement, "account id required")),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "INVALID_MOVEMENT",
		},
		{
			name:       "unknown account",
			body:       fmt.Sprintf(`{"account_id":%q,"type":"DEPOSIT","value":"10"}`, accountID),
			applyErr:   fmt.Errorf("ApplyMovement: %w", domain.ErrAccountNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "ACCOUNT_NOT_FOUND",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeMovements{movement: sampleMovement(), applyErr: tc.applyErr}
			h := NewMovementHandler(svc)

			rr := httptest.NewRecorder()
			h.Create(rr, newRequest(http.MethodPost, "/api/v1/movements", tc.body, nil))

			assert.Equal(t, tc.wantStatus, rr.Code, rr.Body.String())
			if tc.wantCode == "" {
				var dto movementDTO
				decodeData(t, rr, &dto)
				assert.Equal(t, "-30.00", dto.Value)
				assert.Equal(t, "70.00", dto.BalanceAfter)
				assert.Equal(t, "/api/v1/movements/"+svc.movement.ID.String(), rr.Header().Get("Location"))
				require.NotNil(t, svc.applied)
				assert.Equal(t, accountID, *svc.applied.AccountID)
				assert.True(t, decimal.NewFromInt(30).Equal(*svc.applied.Value))
				return
			}
			assert.Equal(t, tc.wantCode, errorCode(t, rr))
			if tc.wantField != "" {
				assert.Contains(t, fieldErrors(t, rr), tc.wantField)
			}
		})
	}
}

func TestMovementImmutable(t *testing.T) {
	h := NewMovementHandler(&fakeMovements{movement: sampleMovement()})
	params := map[string]string{"id": uuid.NewString()}

	for _, tc := range []struct {
		method string
		serve  http.HandlerFunc
	}{
		{http.MethodPut, h.Update},
		{http.MethodDelete, h.Delete},
	} {
		t.Run(tc.method, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tc.serve(rr, newRequest(tc.method, "/api/v1/movements/x", `{"value":"1"}`, params))

			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			resp := decodeResponse(t, rr)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "INVALID_MOVEMENT", resp.Error.Code)
			assert.JSONEq(t, `{"reason":"modification/deletion not permitted"}`, string(resp.Error.Details))
		})
	}
}

func TestMovementGet(t *testing.T) {
	m := sampleMovement()
	h := NewMovementHandler(&fakeMovements{movement: m})

	t.Run("found", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Get(rr, newRequest(http.MethodGet, "/", "", map[string]string{"id": m.ID.String()}))

		require.Equal(t, http.StatusOK, rr.Code)
		var dto movementDTO
		decodeData(t, rr, &dto)
		assert.Equal(t, m.ID, dto.ID)
		assert.Equal(t, "Withdrawal", dto.Description)
	})

	t.Run("unknown id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Get(rr, newRequest(http.MethodGet, "/", "", map[string]string{"id": uuid.NewString()}))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Get(rr, newRequest(http.MethodGet, "/", "", map[string]string{"id": "abc"}))
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "RESOURCE_NOT_FOUND", errorCode(t, rr))
	})
}

func TestMovementListByAccount(t *testing.T) {
	params := map[string]string{"id": uuid.NewString()}

	t.Run("without range", func(t *testing.T) {
		svc := &fakeMovements{movement: sampleMovement()}
		rr := httptest.NewRecorder()
		NewMovementHandler(svc).ListByAccount(rr, newRequest(http.MethodGet, "/", "", params))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, svc.listCalls)
		assert.Zero(t, svc.rangeCalls)
	})

	t.Run("with range", func(t *testing.T) {
		svc := &fakeMovements{movement: sampleMovement()}
		rr := httptest.NewRecorder()
		NewMovementHandler(svc).ListByAccount(rr,
			newRequest(http.MethodGet, "/?start_date=2024-03-01&end_date=2024-03-31", "", params))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, svc.rangeCalls)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), svc.rangeStart)
		assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), svc.rangeEnd)
	})

	t.Run("half range", func(t *testing.T) {
		svc := &fakeMovements{movement: sampleMovement()}
		rr := httptest.NewRecorder()
		NewMovementHandler(svc).ListByAccount(rr, newRequest(http.MethodGet, "/?start_date=2024-03-01", "", params))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "required with start_date", fieldErrors(t, rr)["end_date"])
		assert.Zero(t, svc.rangeCalls)
	})

	t.Run("bad date", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewMovementHandler(&fakeMovements{movement: sampleMovement()}).ListByAccount(rr,
			newRequest(http.MethodGet, "/?start_date=03/01/2024&end_date=2024-03-31", "", params))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, fieldErrors(t, rr), "start_date")
	})
}
