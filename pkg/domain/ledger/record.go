// Package ledger defines the append-only transaction record.
package ledger

import (
	"time"

	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/money"
)

// Type is the kind of balance-affecting operation a record describes.
type Type string

const (
	Deposit    Type = "deposit"
	Withdraw   Type = "withdraw"
	Transfer   Type = "transfer"
	Reactivate Type = "reactivate"
)

// Record is one immutable ledger entry.
//
// Deposits and reactivations only set the To side, withdrawals only the
// From side, transfers both. ResultingBalance is the balance of the primary
// affected account; for transfers it is the sender's.
type Record struct {
	TxID             int64
	Timestamp        time.Time
	Type             Type
	FromAccountID    string
	FromAccountType  account.Kind
	ToAccountID      string
	ToAccountType    account.Kind
	Amount           money.Amount
	Fee              money.Amount
	ResultingBalance money.Amount
}

// Involves reports whether accountID is the source or destination.
func (r Record) Involves(accountID string) bool {
	return accountID != "" && (r.FromAccountID == accountID || r.ToAccountID == accountID)
}

// Valid reports whether t is a known record type.
func (t Type) Valid() bool {
	switch t {
	case Deposit, Withdraw, Transfer, Reactivate:
		return true
	}
	return false
}
