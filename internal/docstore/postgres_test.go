package docstore

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return NewPostgresStore(sqlxDB), mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestPostgresStoreGet(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"data"}).AddRow([]byte(`{"displayName":"Asha"}`))
	mock.ExpectQuery("SELECT data FROM documents").
		WithArgs("users", "user-1").
		WillReturnRows(rows)

	var doc struct {
		DisplayName string `json:"displayName"`
	}
	require.NoError(t, store.Get(context.Background(), "users", "user-1", &doc))
	assert.Equal(t, "Asha", doc.DisplayName)
}

func TestPostgresStoreGetNotFound(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT data FROM documents").
		WithArgs("users", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"data"}))

	var doc map[string]interface{}
	err := store.Get(context.Background(), "users", "missing", &doc)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStoreSetMerge(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO documents").
		WithArgs("users", "user-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Set(context.Background(), "users", "user-1", map[string]string{"course": "CS"}, true)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreUpdateMissing(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE documents").
		WithArgs("users", "ghost", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Update(context.Background(), "users", "ghost", map[string]interface{}{"course": "CS"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStoreQueryByField(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "data"}).
		AddRow("rec-1", []byte(`{"userId":"user-1","status":"present"}`)).
		AddRow("rec-2", []byte(`{"userId":"user-1","status":"absent"}`))
	mock.ExpectQuery("SELECT id, data FROM documents").
		WithArgs("attendance", "userId", "user-1").
		WillReturnRows(rows)

	docs, err := store.QueryByField(context.Background(), "attendance", "userId", "user-1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "rec-1", docs[0].ID)
}
