package account_test

import (
	"testing"

	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	t.Parallel()
	k, err := account.ParseKind(" Checking ")
	require.NoError(t, err)
	assert.Equal(t, account.Checking, k)

	k, err = account.ParseKind("SAVINGS")
	require.NoError(t, err)
	assert.Equal(t, account.Savings, k)

	_, err = account.ParseKind("brokerage")
	require.ErrorIs(t, err, account.ErrInvalidAccountType)
}

func TestDeposit(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		acc     account.Account
		amount  money.Amount
		want    money.Amount
		wantErr error
	}{
		{"checking", account.NewChecking(money.Units(10), account.DefaultOverdraftLimit), money.Cents(250), money.Cents(1250), nil},
		{"savings", account.NewSavings(0), money.Units(5), money.Units(5), nil},
		{"zero amount", account.NewSavings(money.Units(1)), 0, money.Units(1), account.ErrInvalidAmount},
		{"negative amount", account.NewSavings(money.Units(1)), money.Cents(-1), money.Units(1), account.ErrInvalidAmount},
		{"deactivated checking still accepts deposits", account.Account{Kind: account.Checking, Balance: money.Units(-90)}, money.Units(10), money.Units(-80), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := tt.acc
			got, err := acc.Deposit(tt.amount)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.want, acc.Balance, "balance must be unchanged")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, acc.Balance)
		})
	}
}

func TestDeposit_Overflow(t *testing.T) {
	t.Parallel()
	acc := account.NewSavings(money.Amount(1<<63 - 1))
	_, err := acc.Deposit(1)
	require.ErrorIs(t, err, account.ErrAmountExceedsMaxSafeInt)
	assert.Equal(t, money.Amount(1<<63-1), acc.Balance)
}

func TestSavingsWithdraw(t *testing.T) {
	t.Parallel()
	acc := account.NewSavings(money.Units(100))

	w, err := acc.Withdraw(money.Units(40))
	require.NoError(t, err)
	assert.Equal(t, money.Units(60), w.Balance)
	assert.Zero(t, w.Fee)

	_, err = acc.Withdraw(money.Units(61))
	require.ErrorIs(t, err, account.ErrInsufficientFunds)
	assert.Equal(t, money.Units(60), acc.Balance)

	_, err = acc.Withdraw(0)
	require.ErrorIs(t, err, account.ErrInvalidAmount)

	w, err = acc.Withdraw(money.Units(60))
	require.NoError(t, err)
	assert.Zero(t, w.Balance)
}

func TestCheckingWithdraw_OverdraftWalkthrough(t *testing.T) {
	t.Parallel()
	acc := account.NewChecking(money.Units(50), money.Units(-100))

	w, err := acc.Withdraw(money.Units(60))
	require.NoError(t, err)
	assert.Equal(t, money.Units(-45), w.Balance)
	assert.Equal(t, account.OverdraftFee, w.Fee)
	assert.False(t, w.Deactivated)
	assert.Equal(t, 1, acc.OverdraftCount)
	assert.True(t, acc.Active)

	w, err = acc.Withdraw(money.Units(10))
	require.NoError(t, err)
	assert.Equal(t, money.Units(-90), w.Balance)
	assert.Equal(t, account.OverdraftFee, w.Fee)
	assert.True(t, w.Deactivated)
	assert.Equal(t, 2, acc.OverdraftCount)
	assert.False(t, acc.Active)

	_, err = acc.Withdraw(money.Units(1))
	require.ErrorIs(t, err, account.ErrAccountDeactivated)
	assert.Equal(t, money.Units(-90), acc.Balance)
}

func TestCheckingWithdraw_LimitExceededIsAtomic(t *testing.T) {
	t.Parallel()
	acc := account.Account{
		Kind:           account.Checking,
		Balance:        money.Units(-45),
		OverdraftLimit: money.Units(-100),
		OverdraftCount: 1,
		Active:         true,
	}
	before := acc

	_, err := acc.Withdraw(money.Units(100))
	require.ErrorIs(t, err, account.ErrOverdraftLimitExceeded)
	assert.Equal(t, before, acc)
}

func TestCheckingWithdraw_FeeTipsOverLimit(t *testing.T) {
	t.Parallel()
	// 0 - 70 = -70 fits the limit but -70 - 35 = -105 does not.
	acc := account.NewChecking(0, money.Units(-100))
	_, err := acc.Withdraw(money.Units(70))
	require.ErrorIs(t, err, account.ErrOverdraftLimitExceeded)
	assert.Zero(t, acc.Balance)
	assert.Zero(t, acc.OverdraftCount)

	// Exactly reaching the limit is allowed.
	w, err := acc.Withdraw(money.Units(65))
	require.NoError(t, err)
	assert.Equal(t, money.Units(-100), w.Balance)
}

func TestCheckingWithdraw_NoFeeWhenStayingPositive(t *testing.T) {
	t.Parallel()
	acc := account.NewChecking(money.Units(100), account.DefaultOverdraftLimit)
	w, err := acc.Withdraw(money.Units(100))
	require.NoError(t, err)
	assert.Zero(t, w.Balance)
	assert.Zero(t, w.Fee)
	assert.Zero(t, acc.OverdraftCount)
}

func TestCheckingWithdraw_DeactivatedCheckedBeforeAmount(t *testing.T) {
	t.Parallel()
	acc := account.Account{Kind: account.Checking, Active: false}
	_, err := acc.Withdraw(0)
	require.ErrorIs(t, err, account.ErrAccountDeactivated)
}

func TestPayAndReactivate(t *testing.T) {
	t.Parallel()
	acc := account.Account{
		Kind:           account.Checking,
		Balance:        money.Units(-90),
		OverdraftLimit: money.Units(-100),
		OverdraftCount: 2,
	}
	bal, err := acc.Pay(money.Units(40))
	require.NoError(t, err)
	assert.Equal(t, money.Units(-50), bal)
	assert.False(t, acc.Active)

	_, err = acc.Pay(money.Cents(-5))
	require.ErrorIs(t, err, account.ErrInvalidAmount)

	acc.Reactivate()
	assert.True(t, acc.Active)
	assert.Zero(t, acc.OverdraftCount)
	assert.Equal(t, "active", acc.Status())
}

func TestIsDomainError(t *testing.T) {
	t.Parallel()
	acc := account.NewSavings(0)
	_, err := acc.Withdraw(money.Units(1))
	assert.True(t, account.IsDomainError(err))
	assert.False(t, account.IsDomainError(assert.AnError))
}
