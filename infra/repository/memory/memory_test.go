package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/amirasaad/acmebank/infra/repository/memory"
	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/domain/ledger"
	"github.com/amirasaad/acmebank/pkg/money"
	"github.com/amirasaad/acmebank/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCustomer(id string) *customer.Customer {
	return customer.FromData(id, "Ann", "Lee", "pw",
		account.NewChecking(money.Units(10), account.DefaultOverdraftLimit),
		account.NewSavings(money.Units(20)))
}

func TestUoW_CommitPublishesBothWrites(t *testing.T) {
	t.Parallel()
	store := memory.New()
	uow := memory.NewUoW(store)
	ctx := context.Background()

	err := uow.Do(ctx, func(tx repository.UnitOfWork) error {
		lr, err := tx.LedgerRepository()
		require.NoError(t, err)
		require.NoError(t, lr.Append(ctx, ledger.Record{TxID: 1, Type: ledger.Deposit, ToAccountID: "10001"}))

		cr, err := tx.CustomerRepository()
		require.NoError(t, err)
		require.NoError(t, cr.SaveAll(ctx, []*customer.Customer{sampleCustomer("10001")}))

		// staged writes are visible inside the boundary only
		n := 0
		for _, err := range lr.Scan(ctx) {
			require.NoError(t, err)
			n++
		}
		assert.Equal(t, 1, n)
		assert.Empty(t, store.Records())
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, store.Records(), 1)
	assert.Len(t, store.Customers(), 1)
}

func TestUoW_RollbackDiscardsStage(t *testing.T) {
	t.Parallel()
	store := memory.New()
	uow := memory.NewUoW(store)
	ctx := context.Background()
	boom := errors.New("boom")

	err := uow.Do(ctx, func(tx repository.UnitOfWork) error {
		lr, _ := tx.LedgerRepository()
		require.NoError(t, lr.Append(ctx, ledger.Record{TxID: 1}))
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, store.Records())
}

func TestStore_FailureInjection(t *testing.T) {
	t.Parallel()
	store := memory.New()
	uow := memory.NewUoW(store)
	ctx := context.Background()

	store.Fail(memory.OpSave, nil)
	cr, _ := uow.CustomerRepository()
	require.ErrorIs(t, cr.SaveAll(ctx, nil), memory.ErrInjected)

	store.Fail(memory.OpScan, nil)
	lr, _ := uow.LedgerRepository()
	for _, err := range lr.Scan(ctx) {
		require.ErrorIs(t, err, memory.ErrInjected)
	}

	store.Heal()
	require.NoError(t, cr.SaveAll(ctx, []*customer.Customer{sampleCustomer("10001")}))
	list, err := cr.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// the returned customers are copies
	list[0].Checking.Balance = 0
	assert.Equal(t, money.Units(10), store.Customers()[0].Checking.Balance)
}
