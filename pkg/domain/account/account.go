// Package account holds the balance state machine shared by the two account
// kinds a customer owns.
//
// Account is a closed variant: Kind selects the withdrawal policy, and the
// checking-only fields are ignored for savings. Every method either commits a
// complete state change or returns an error and leaves the account untouched.
package account

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amirasaad/acmebank/pkg/money"
)

// Kind is the account variant.
type Kind string

const (
	Checking Kind = "checking"
	Savings  Kind = "savings"
)

const (
	// OverdraftFee is charged on every checking withdrawal that ends below zero.
	OverdraftFee = money.Amount(3500)
	// DefaultOverdraftLimit is the most negative checking balance allowed by default.
	DefaultOverdraftLimit = money.Amount(-10000)
	// MaxOverdrafts is the overdraft count at which checking gets deactivated.
	MaxOverdrafts = 2
)

// Kinds lists the variants in display order.
var Kinds = []Kind{Checking, Savings}

// ParseKind accepts "checking" or "savings" in any case.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Checking, Savings:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountType, s)
	}
}

// Valid reports whether k is one of the two known variants.
func (k Kind) Valid() bool {
	return k == Checking || k == Savings
}

func (k Kind) String() string {
	return string(k)
}

// Account is a customer's checking or savings sub-account.
//
// Invariants:
//   - deposits, withdrawals and payments are strictly positive;
//   - an active checking account never goes below OverdraftLimit;
//   - savings never goes below zero;
//   - OverdraftCount resets only on Reactivate.
type Account struct {
	Kind     Kind
	Balance  money.Amount
	Currency string

	// Checking only.
	OverdraftLimit money.Amount
	OverdraftCount int
	Active         bool
}

// Withdrawal is the outcome of a successful withdrawal.
type Withdrawal struct {
	Balance     money.Amount
	Fee         money.Amount
	Deactivated bool
}

// NewChecking returns an active checking account.
func NewChecking(balance, overdraftLimit money.Amount) Account {
	return Account{
		Kind:           Checking,
		Balance:        balance,
		Currency:       money.DefaultCurrency,
		OverdraftLimit: overdraftLimit,
		Active:         true,
	}
}

// NewSavings returns a savings account.
func NewSavings(balance money.Amount) Account {
	return Account{
		Kind:     Savings,
		Balance:  balance,
		Currency: money.DefaultCurrency,
		Active:   true,
	}
}

func (a *Account) validateAmount(amount money.Amount) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	return nil
}

// Deposit adds amount to the balance and returns the new balance.
// Deposits are accepted on deactivated checking accounts.
func (a *Account) Deposit(amount money.Amount) (money.Amount, error) {
	if err := a.validateAmount(amount); err != nil {
		return a.Balance, err
	}
	bal, err := a.Balance.Add(amount)
	if err != nil {
		return a.Balance, ErrAmountExceedsMaxSafeInt
	}
	a.Balance = bal
	return a.Balance, nil
}

// Pay applies a payment toward a negative checking balance. Unlike Withdraw it
// has no precondition on the resulting balance.
func (a *Account) Pay(amount money.Amount) (money.Amount, error) {
	return a.Deposit(amount)
}

// Withdraw removes amount according to the variant's policy.
func (a *Account) Withdraw(amount money.Amount) (Withdrawal, error) {
	switch a.Kind {
	case Checking:
		return a.withdrawChecking(amount)
	case Savings:
		return a.withdrawSavings(amount)
	default:
		return Withdrawal{}, fmt.Errorf("%w: %q", ErrInvalidAccountType, a.Kind)
	}
}

func (a *Account) withdrawSavings(amount money.Amount) (Withdrawal, error) {
	if err := a.validateAmount(amount); err != nil {
		return Withdrawal{}, err
	}
	if a.Balance < amount {
		return Withdrawal{}, fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientFunds, a.Balance, amount)
	}
	a.Balance -= amount
	return Withdrawal{Balance: a.Balance}, nil
}

func (a *Account) withdrawChecking(amount money.Amount) (Withdrawal, error) {
	if !a.Active {
		return Withdrawal{}, ErrAccountDeactivated
	}
	if err := a.validateAmount(amount); err != nil {
		return Withdrawal{}, err
	}
	projected, err := a.Balance.Sub(amount)
	if err != nil {
		return Withdrawal{}, ErrAmountExceedsMaxSafeInt
	}
	if projected >= 0 {
		a.Balance = projected
		return Withdrawal{Balance: a.Balance}, nil
	}

	candidate, err := projected.Sub(OverdraftFee)
	if err != nil || candidate < a.OverdraftLimit {
		return Withdrawal{}, fmt.Errorf("%w: balance %s, requested %s, limit %s",
			ErrOverdraftLimitExceeded, a.Balance, amount, a.OverdraftLimit)
	}
	a.Balance = candidate
	a.OverdraftCount++
	w := Withdrawal{Balance: a.Balance, Fee: OverdraftFee}
	if a.OverdraftCount >= MaxOverdrafts {
		a.Active = false
		w.Deactivated = true
	}
	return w, nil
}

// Reactivate turns checking back on and clears the overdraft count.
// Whether reactivation is allowed is decided by the caller.
func (a *Account) Reactivate() {
	a.Active = true
	a.OverdraftCount = 0
}

// Status is a short human-readable state, used by the UI and statements.
func (a Account) Status() string {
	if a.Active {
		return "active"
	}
	return "deactivated"
}

// IsDomainError reports whether err is one of the account validation errors.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount,
		ErrInvalidAccountType,
		ErrInsufficientFunds,
		ErrAccountDeactivated,
		ErrOverdraftLimitExceeded,
		ErrAmountExceedsMaxSafeInt,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
