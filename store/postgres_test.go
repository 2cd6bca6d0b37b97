package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pettycash-api/models"
)

func newMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func walletRow() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "organization_id", "balance", "last_updated", "created_at"}).
		AddRow("wallet-1", "org-1", "50.00", now, now)
}

func TestPostgresMutateLocksAndCommits(t *testing.T) {
	st, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("SET LOCAL lock_timeout").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, organization_id, balance, last_updated, created_at FROM wallets WHERE id = (.+) FOR UPDATE").
		WithArgs("wallet-1").
		WillReturnRows(walletRow())
	mock.ExpectExec("UPDATE wallets SET balance").
		WithArgs("40.00", "wallet-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO ledger_entries").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := st.Mutate(context.Background(), "wallet-1", func(tx WalletTx) error {
		w := tx.Wallet()
		assert.True(t, w.Balance.Equal(models.MoneyFromCents(5000)))
		if err := tx.SetBalance(w.Balance.Sub(models.MoneyFromCents(1000))); err != nil {
			return err
		}
		return tx.InsertEntry(&models.LedgerEntry{
			WalletID: "wallet-1",
			UserID:   "user-1",
			Note:     "pens",
			Amount:   models.MoneyFromCents(1000),
			Kind:     models.KindExpense,
			Status:   models.StatusApproved,
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMutateRollsBackOnError(t *testing.T) {
	st, mock := newMock(t)
	denied := errors.New("denied")

	mock.ExpectBegin()
	mock.ExpectExec("SET LOCAL lock_timeout").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FOR UPDATE").WithArgs("wallet-1").WillReturnRows(walletRow())
	mock.ExpectRollback()

	err := st.Mutate(context.Background(), "wallet-1", func(tx WalletTx) error {
		return denied
	})
	assert.ErrorIs(t, err, denied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMutateWalletNotFound(t *testing.T) {
	st, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("SET LOCAL lock_timeout").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FOR UPDATE").WithArgs("missing").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := st.Mutate(context.Background(), "missing", func(tx WalletTx) error {
		t.Fatal("callback must not run")
		return nil
	})
	assert.ErrorIs(t, err, models.ErrWalletNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMutateLockTimeout(t *testing.T) {
	st, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("SET LOCAL lock_timeout").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FOR UPDATE").WithArgs("wallet-1").
		WillReturnError(&pq.Error{Code: "55P03", Message: "canceling statement due to lock timeout"})
	mock.ExpectRollback()

	err := st.Mutate(context.Background(), "wallet-1", func(tx WalletTx) error { return nil })
	assert.ErrorIs(t, err, models.ErrLockTimeout)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteEntryNotFound(t *testing.T) {
	st, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("SET LOCAL lock_timeout").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FOR UPDATE").WithArgs("wallet-1").WillReturnRows(walletRow())
	mock.ExpectExec("DELETE FROM ledger_entries").
		WithArgs("e-ghost", "wallet-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := st.Mutate(context.Background(), "wallet-1", func(tx WalletTx) error {
		return tx.DeleteEntry("e-ghost")
	})
	assert.ErrorIs(t, err, models.ErrEntryNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWalletByOwner(t *testing.T) {
	st, mock := newMock(t)

	mock.ExpectQuery("INNER JOIN organizations").
		WithArgs("user-1").
		WillReturnRows(walletRow())

	w, err := st.WalletByOwner(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "wallet-1", w.ID)
	assert.True(t, w.Balance.Equal(models.MoneyFromCents(5000)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWalletByIDNotFound(t *testing.T) {
	st, mock := newMock(t)

	mock.ExpectQuery("FROM wallets").WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := st.WalletByID(context.Background(), "nope")
	assert.ErrorIs(t, err, models.ErrWalletNotFound)
}

func TestPostgresEntriesBetweenScansJoinedRows(t *testing.T) {
	st, mock := newMock(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "wallet_id", "user_id", "name",
		"category_id", "cname",
		"note", "amount", "kind", "status", "effective_date", "created_at",
	}).
		AddRow("e-1", "wallet-1", "user-1", "Alice", "cat-1", "Travel",
			"taxi", "12.50", "EXPENSE", "APPROVED", now, now).
		AddRow("e-2", "wallet-1", "user-1", "Alice", nil, "",
			"Wallet Top-up", "100.00", "TOPUP", "APPROVED", now, now)

	mock.ExpectQuery("FROM ledger_entries").
		WithArgs("wallet-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	entries, err := st.EntriesBetween(context.Background(), "wallet-1", now.AddDate(0, -1, 0), now.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Alice", entries[0].UserName)
	require.NotNil(t, entries[0].CategoryID)
	assert.Equal(t, "cat-1", *entries[0].CategoryID)
	assert.Equal(t, "Travel", entries[0].CategoryName)
	assert.True(t, entries[0].Amount.Equal(models.MoneyFromCents(1250)))

	assert.Nil(t, entries[1].CategoryID)
	assert.Equal(t, models.KindTopUp, entries[1].Kind)
}
