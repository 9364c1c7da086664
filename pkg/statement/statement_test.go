package statement_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/domain/ledger"
	"github.com/amirasaad/acmebank/pkg/money"
	"github.com/amirasaad/acmebank/pkg/statement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	customers map[string]customer.Customer
	records   []ledger.Record
	scanErr   error
}

func (f *fakeSource) CustomerHistory(_ context.Context, id string) (customer.Customer, []ledger.Record, error) {
	c, ok := f.customers[id]
	if !ok {
		return customer.Customer{}, nil, customer.ErrCustomerNotFound
	}
	if f.scanErr != nil {
		return customer.Customer{}, nil, f.scanErr
	}
	var out []ledger.Record
	for _, rec := range f.records {
		if rec.Involves(id) {
			out = append(out, rec)
		}
	}
	return c, out, nil
}

var at = time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)

func source() *fakeSource {
	checking := account.NewChecking(money.Units(-45), account.DefaultOverdraftLimit)
	checking.OverdraftCount = 1
	c := customer.FromData("10001", "Ada", "Lovelace", "x", checking, account.NewSavings(money.Units(20)))
	return &fakeSource{
		customers: map[string]customer.Customer{"10001": *c},
		records: []ledger.Record{
			{TxID: 1, Timestamp: at, Type: ledger.Withdraw, FromAccountID: "10001", FromAccountType: account.Checking,
				Amount: money.Units(60), Fee: account.OverdraftFee, ResultingBalance: money.Units(-45)},
			{TxID: 2, Timestamp: at, Type: ledger.Deposit, ToAccountID: "10002", ToAccountType: account.Savings,
				Amount: money.Units(1), ResultingBalance: money.Units(1)},
			{TxID: 3, Timestamp: at, Type: ledger.Transfer, FromAccountID: "10002", FromAccountType: account.Savings,
				ToAccountID: "10001", ToAccountType: account.Savings, Amount: money.Units(1), ResultingBalance: 0},
		},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := statement.Write(context.Background(), &buf, source(), "10001", statement.WithClock(func() time.Time { return at }))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Customer:  Ada Lovelace (10001)")
	assert.Contains(t, out, "Generated: 2024-05-02 14:00:00")
	assert.Contains(t, out, "Checking:  -45.00 USD [active, overdrafts 1, limit -100.00]")
	assert.Contains(t, out, "Savings:   20.00 USD")
	assert.Contains(t, out, "Total:     -25.00 USD")
	assert.Contains(t, out, "10001/checking")
	assert.Contains(t, out, "10002/savings")
	assert.Contains(t, out, "2 transaction(s)")

	lines := strings.Split(out, "\n")
	var rows []string
	for _, l := range lines {
		if strings.Contains(l, "2024-05-02") && !strings.HasPrefix(l, "Generated") {
			rows = append(rows, l)
		}
	}
	require.Len(t, rows, 2, "only records touching the account")
	assert.True(t, strings.HasPrefix(rows[0], "1 "))
	assert.True(t, strings.HasPrefix(rows[1], "3 "))
	assert.Contains(t, rows[0], "35.00")
}

func TestWrite_UnknownCustomer(t *testing.T) {
	var buf bytes.Buffer
	err := statement.Write(context.Background(), &buf, source(), "99999")
	require.ErrorIs(t, err, customer.ErrCustomerNotFound)
	assert.Empty(t, buf.String())
}

func TestWrite_LedgerError(t *testing.T) {
	src := source()
	src.scanErr = errors.New("disk gone")
	err := statement.Write(context.Background(), &bytes.Buffer{}, src, "10001")
	require.ErrorContains(t, err, "disk gone")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "statement_10001.txt", statement.Filename("10001"))
}
