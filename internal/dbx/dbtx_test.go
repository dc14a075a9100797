package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openAccounts(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE accounts (user_id TEXT PRIMARY KEY, sync_status TEXT)`)
	require.NoError(t, err)
	return db
}

func countAccounts(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&n))
	return n
}

func insertAccount(ctx context.Context, tx DBTX, id string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO accounts(user_id, sync_status) VALUES (?, 'pending')`, id)
	return err
}

func TestWithTx_Commit(t *testing.T) {
	db := openAccounts(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return insertAccount(ctx, tx, "u1")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countAccounts(t, db))
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db := openAccounts(t)
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, insertAccount(ctx, tx, "u1"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countAccounts(t, db))
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := openAccounts(t)

	assert.PanicsWithValue(t, "kaput", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			require.NoError(t, insertAccount(ctx, tx, "u1"))
			panic("kaput")
		})
	})
	assert.Equal(t, 0, countAccounts(t, db))
}

func TestWithTx_BeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	called := false
	err = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_CommitError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))

	err = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error { return nil })
	require.EqualError(t, err, "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_BeginsOnDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE accounts`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = InTx(context.Background(), db, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `UPDATE accounts SET sync_status = 'syncing'`)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_PassesThroughOpenTx(t *testing.T) {
	db := openAccounts(t)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	err = InTx(context.Background(), tx, func(ctx context.Context, inner DBTX) error {
		assert.Same(t, tx, inner)
		return insertAccount(ctx, inner, "u1")
	})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	assert.Equal(t, 0, countAccounts(t, db))
}

func TestInTx_NilHandle(t *testing.T) {
	var got DBTX = &sql.DB{}
	err := InTx(context.Background(), nil, func(ctx context.Context, tx DBTX) error {
		got = tx
		return nil
	})
	require.NoError(t, err)
	assert.Nil(t, got)
}
