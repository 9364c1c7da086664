// Package customer defines the Customer aggregate: identity fields plus the
// one checking and one savings account it owns for its whole lifetime.
package customer

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/money"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrCustomerNotFound is returned when no customer has the given account id.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrPasswordRequired is returned when a customer is created without a password.
	ErrPasswordRequired = errors.New("password is required")
)

// FirstAccountID is the id given to the first customer of an empty bank.
const FirstAccountID = 10001

// Customer owns exactly one checking and one savings account.
type Customer struct {
	AccountID string
	FirstName string
	LastName  string
	// Password is a bcrypt hash. Rows imported from the legacy CSV file may
	// still hold plaintext; CheckPassword accepts both.
	Password string
	Checking account.Account
	Savings  account.Account
}

// FromData hydrates a Customer from a store without hashing or validation.
func FromData(
	id, firstName, lastName, password string,
	checking, savings account.Account,
) *Customer {
	checking.Kind = account.Checking
	savings.Kind = account.Savings
	savings.Active = true
	return &Customer{
		AccountID: id,
		FirstName: firstName,
		LastName:  lastName,
		Password:  password,
		Checking:  checking,
		Savings:   savings,
	}
}

// FullName returns "First Last".
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Account returns a pointer to the sub-account of the given kind.
func (c *Customer) Account(kind account.Kind) (*account.Account, error) {
	switch kind {
	case account.Checking:
		return &c.Checking, nil
	case account.Savings:
		return &c.Savings, nil
	default:
		return nil, fmt.Errorf("%w: %q", account.ErrInvalidAccountType, kind)
	}
}

// Total is checking plus savings. The sum of two int64 balances is clamped
// rather than wrapped so ranking stays monotonic.
func (c *Customer) Total() money.Amount {
	t, err := c.Checking.Balance.Add(c.Savings.Balance)
	if err != nil {
		if c.Checking.Balance > 0 {
			return money.Amount(1<<63 - 1)
		}
		return money.Amount(-1 << 63)
	}
	return t
}

// CheckPassword compares password against the stored hash, falling back to a
// constant-time plaintext comparison for legacy rows.
func (c *Customer) CheckPassword(password string) bool {
	if IsHashed(c.Password) {
		return bcrypt.CompareHashAndPassword([]byte(c.Password), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(c.Password), []byte(password)) == 1
}

// Clone returns a deep copy; accounts are plain values so a struct copy suffices.
func (c *Customer) Clone() *Customer {
	cp := *c
	return &cp
}

// NumericID parses the account id, returning false for malformed ids.
func (c *Customer) NumericID() (int64, bool) {
	return ParseID(c.AccountID)
}

// ParseID parses an account id such as "10001".
func ParseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// IsHashed reports whether s looks like a bcrypt hash.
func IsHashed(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// HashPassword hashes a plain password using bcrypt with the given cost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(b), err
}
