package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
)

var clientRowColumns = []string{
	"id", "client_id", "name", "gender", "age", "identification", "phone", "address",
	"password_hash", "active", "created_at", "updated_at",
}

func TestClientRepository_GetByClientID_NullableFields(t *testing.T) {
	db, mock := newMock(t)
	repo := NewClientRepository(db)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT (.+) FROM clients WHERE client_id = \$1`).
		WithArgs("10293847").
		WillReturnRows(sqlmock.NewRows(clientRowColumns).
			AddRow(id.String(), "10293847", "Jose Lema", nil, nil, "1712345678", nil, "Otavalo sn", "hash", true, now, now))

	c, err := repo.GetByClientID(context.Background(), "10293847")
	require.NoError(t, err)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, "Jose Lema", c.Name)
	assert.Nil(t, c.Gender)
	assert.Nil(t, c.Age)
	assert.Nil(t, c.Phone)
	require.NotNil(t, c.Address)
	assert.Equal(t, "Otavalo sn", *c.Address)
}

func TestClientRepository_Delete(t *testing.T) {
	t.Run("still owns accounts", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewClientRepository(db)

		mock.ExpectExec(`DELETE FROM clients WHERE id = \$1`).
			WillReturnError(&pq.Error{Code: "23503"})

		err := repo.Delete(context.Background(), uuid.New())
		require.ErrorIs(t, err, domain.ErrInvalidOperation)
		assert.Equal(t, "client still owns accounts", domain.Reason(err))
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewClientRepository(db)

		mock.ExpectExec(`DELETE FROM clients WHERE id = \$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), uuid.New())
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestClientRepository_Create_DuplicateIdentification(t *testing.T) {
	db, mock := newMock(t)
	repo := NewClientRepository(db)

	mock.ExpectExec(`INSERT INTO clients`).WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &domain.Client{ID: uuid.New()})
	require.ErrorIs(t, err, domain.ErrDuplicate)
}
