package gormstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/domain/ledger"
	"github.com/amirasaad/acmebank/pkg/money"
	"github.com/amirasaad/acmebank/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()), "test")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newCustomer(id string, checking int64) *customer.Customer {
	return customer.FromData(id, "Ann", "Lee", "$2a$04$hash",
		account.NewChecking(money.Units(checking), account.DefaultOverdraftLimit),
		account.NewSavings(money.Units(1)))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "dsn", "test")
	require.ErrorIs(t, err, ErrUnsupportedDriver)

	_, err = Open("sqlite", "", "test")
	require.Error(t, err)
}

func TestUoW_SQLiteRoundTrip(t *testing.T) {
	db := openSQLite(t)
	uow := NewUoW(db)
	ctx := context.Background()
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	err := uow.Do(ctx, func(tx repository.UnitOfWork) error {
		lr, err := tx.LedgerRepository()
		require.NoError(t, err)
		require.NoError(t, lr.Append(ctx, ledger.Record{
			TxID: 1, Timestamp: ts, Type: ledger.Deposit,
			ToAccountID: "10001", ToAccountType: account.Checking,
			Amount: money.Units(5), ResultingBalance: money.Units(15),
		}))
		cr, err := tx.CustomerRepository()
		require.NoError(t, err)
		return cr.SaveAll(ctx, []*customer.Customer{newCustomer("10001", 15), newCustomer("10002", 3)})
	})
	require.NoError(t, err)

	cr, _ := uow.CustomerRepository()
	list, err := cr.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, *newCustomer("10001", 15), *list[0])

	// full overwrite: updated balance, dropped row
	require.NoError(t, cr.SaveAll(ctx, []*customer.Customer{newCustomer("10001", 20)}))
	list, err = cr.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, money.Units(20), list[0].Checking.Balance)

	lr, _ := uow.LedgerRepository()
	var got []ledger.Record
	for rec, err := range lr.Scan(ctx) {
		require.NoError(t, err)
		got = append(got, rec)
	}
	require.Len(t, got, 1)
	assert.Equal(t, ts, got[0].Timestamp)
	assert.Equal(t, money.Units(15), got[0].ResultingBalance)
}

func TestUoW_SQLiteRollback(t *testing.T) {
	db := openSQLite(t)
	uow := NewUoW(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := uow.Do(ctx, func(tx repository.UnitOfWork) error {
		lr, _ := tx.LedgerRepository()
		require.NoError(t, lr.Append(ctx, ledger.Record{TxID: 1, Type: ledger.Deposit, Timestamp: time.Now()}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	lr, _ := uow.LedgerRepository()
	for range lr.Scan(ctx) {
		t.Fatal("rolled back record must not be visible")
	}
}

func TestUoW_RollbackOnQueryError(t *testing.T) {
	require := require.New(t)
	mockDb, mock, _ := sqlmock.New()
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "customers" ORDER BY account_id`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = NewUoW(db).Do(context.Background(), func(tx repository.UnitOfWork) error {
		cr, _ := tx.CustomerRepository()
		_, err := cr.List(context.Background())
		return err
	})
	require.Error(err)
	require.NoError(mock.ExpectationsWereMet())
}

func TestLedgerRepository_ScanError(t *testing.T) {
	mockDb, mock, _ := sqlmock.New()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDb, DriverName: "postgres"}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "ledger_records" ORDER BY tx_id`).
		WillReturnError(errors.New("relation does not exist"))

	lr, _ := NewUoW(db).LedgerRepository()
	var scanErr error
	for _, err := range lr.Scan(context.Background()) {
		scanErr = err
	}
	require.Error(t, scanErr)
}
