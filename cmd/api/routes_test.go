package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/bank-ledger/internal/auth"
	"github.com/josh-kwaku/bank-ledger/internal/handler"
	"github.com/josh-kwaku/bank-ledger/internal/service/ledger"
)

const testSecret = "router-test-secret"

func testRouter(t *testing.T) (http.Handler, *int) {
	t.Helper()
	idempotent := 0
	r := newRouter(routerDeps{
		jwtSecret: testSecret,
		health:    handler.NewHealthHandler(nil),
		movements: handler.NewMovementHandler(ledger.NewService(nil, nil, nil, nil, 0)),
		idempotency: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				idempotent++
				next.ServeHTTP(w, r)
			})
		},
	})
	return r, &idempotent
}

func bearer(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken(uuid.New(), "teller", testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestPublicRoutes(t *testing.T) {
	r, _ := testRouter(t)

	for _, path := range []string{"/health", "/docs", "/docs/openapi.yaml"} {
		t.Run(path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
		})
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/docs/openapi.yaml", nil))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "openapi: 3"))
}

func TestAPIRequiresToken(t *testing.T) {
	r, _ := testRouter(t)

	for _, path := range []string{"/api/v1/clients", "/api/v1/accounts", "/api/v1/movements", "/api/v1/reports"} {
		t.Run(path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestMovementRoutes(t *testing.T) {
	r, idempotent := testRouter(t)
	token := bearer(t)
	target := "/api/v1/movements/" + uuid.NewString()

	for _, method := range []string{http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, target, strings.NewReader(`{}`))
			req.Header.Set("Authorization", token)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			assert.Contains(t, rr.Body.String(), "modification/deletion not permitted")
		})
	}
	assert.Zero(t, *idempotent)

	t.Run("post goes through idempotency", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/movements", strings.NewReader(`{"type":"DEPOSIT","value":"10"}`))
		req.Header.Set("Authorization", token)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, 1, *idempotent)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), "account id required")
	})
}

func TestUnknownRoute(t *testing.T) {
	r, _ := testRouter(t)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
