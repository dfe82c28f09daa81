package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestSQLStore_PostgresGet(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewSQLStore(db)

	mock.ExpectQuery(`SELECT \* FROM "kv_entries" WHERE "key" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}).
			AddRow("cars", `[{"id":"a"}]`, time.Now()))

	got, err := s.Get(context.Background(), KeyCars)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_PostgresGetMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewSQLStore(db)

	mock.ExpectQuery(`SELECT \* FROM "kv_entries" WHERE "key" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}))

	_, err := s.Get(context.Background(), KeyUsers)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_PostgresSetUpserts(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewSQLStore(db)

	mock.ExpectExec(`INSERT INTO "kv_entries" .* ON CONFLICT \("key"\) DO UPDATE SET`).
		WithArgs("users", `[]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), KeyUsers, []byte(`[]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_PostgresDelete(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewSQLStore(db)

	mock.ExpectExec(`DELETE FROM "kv_entries" WHERE "key" = \$1`).
		WithArgs("user").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), KeyCurrentUser))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_PostgresErrorPropagates(t *testing.T) {
	db, mock := setupMockDB(t)
	s := NewSQLStore(db)

	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT \* FROM "kv_entries"`).WillReturnError(boom)

	_, err := s.Get(context.Background(), KeyCars)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
