package customer

import (
	"strconv"

	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/money"
)

// Builder provides a fluent API for constructing new customers.
// Both accounts are created together here and nowhere else.
type Builder struct {
	id             int64
	firstName      string
	lastName       string
	password       string
	checking       money.Amount
	savings        money.Amount
	overdraftLimit money.Amount
	currency       string
	hashCost       int
}

// New creates a Builder with the default overdraft limit and currency.
func New() *Builder {
	return &Builder{
		id:             FirstAccountID,
		overdraftLimit: account.DefaultOverdraftLimit,
		currency:       money.DefaultCurrency,
	}
}

// WithID sets the numeric account id.
func (b *Builder) WithID(id int64) *Builder {
	b.id = id
	return b
}

// WithName sets first and last name.
func (b *Builder) WithName(first, last string) *Builder {
	b.firstName = first
	b.lastName = last
	return b
}

// WithPassword sets the plain password; Build hashes it.
func (b *Builder) WithPassword(password string) *Builder {
	b.password = password
	return b
}

// WithOpeningBalances sets the initial checking and savings balances.
func (b *Builder) WithOpeningBalances(checking, savings money.Amount) *Builder {
	b.checking = checking
	b.savings = savings
	return b
}

// WithOverdraftLimit sets the checking overdraft limit.
func (b *Builder) WithOverdraftLimit(limit money.Amount) *Builder {
	b.overdraftLimit = limit
	return b
}

// WithCurrency sets the informational currency of both accounts.
func (b *Builder) WithCurrency(code string) *Builder {
	if code != "" {
		b.currency = code
	}
	return b
}

// WithHashCost sets the bcrypt cost. Zero means bcrypt.DefaultCost.
func (b *Builder) WithHashCost(cost int) *Builder {
	b.hashCost = cost
	return b
}

// Build validates the input and returns the new customer.
func (b *Builder) Build() (*Customer, error) {
	if b.password == "" {
		return nil, ErrPasswordRequired
	}
	if b.checking.IsNegative() || b.savings.IsNegative() {
		return nil, account.ErrInvalidAmount
	}
	if b.overdraftLimit.IsPositive() {
		return nil, account.ErrInvalidAmount
	}
	hash, err := HashPassword(b.password, b.hashCost)
	if err != nil {
		return nil, err
	}
	checking := account.NewChecking(b.checking, b.overdraftLimit)
	checking.Currency = b.currency
	savings := account.NewSavings(b.savings)
	savings.Currency = b.currency
	return &Customer{
		AccountID: strconv.FormatInt(b.id, 10),
		FirstName: b.firstName,
		LastName:  b.lastName,
		Password:  hash,
		Checking:  checking,
		Savings:   savings,
	}, nil
}
