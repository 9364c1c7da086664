// Package events holds the notifications published after a bank operation
// has been committed.
package events

import (
	"time"

	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/ledger"
	"github.com/amirasaad/acmebank/pkg/money"
	"github.com/google/uuid"
)

// Event is anything that can be published on a bus.
type Event interface {
	Type() string
}

// Meta is embedded by every event.
type Meta struct {
	ID         uuid.UUID `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newMeta(at time.Time) Meta {
	return Meta{ID: uuid.New(), OccurredAt: at}
}

// TransactionRecorded is emitted for every ledger record.
type TransactionRecorded struct {
	Meta
	TxID             int64        `json:"tx_id"`
	TxType           ledger.Type  `json:"tx_type"`
	FromAccountID    string       `json:"from_account_id,omitempty"`
	FromAccountType  account.Kind `json:"from_account_type,omitempty"`
	ToAccountID      string       `json:"to_account_id,omitempty"`
	ToAccountType    account.Kind `json:"to_account_type,omitempty"`
	Amount           money.Amount `json:"amount"`
	Fee              money.Amount `json:"fee"`
	ResultingBalance money.Amount `json:"resulting_balance"`
}

// AccountDeactivated is emitted when an overdraft deactivates checking.
type AccountDeactivated struct {
	Meta
	AccountID      string       `json:"account_id"`
	Balance        money.Amount `json:"balance"`
	OverdraftCount int          `json:"overdraft_count"`
}

// AccountReactivated is emitted when checking is turned back on.
type AccountReactivated struct {
	Meta
	AccountID string       `json:"account_id"`
	Balance   money.Amount `json:"balance"`
}

// CustomerCreated is emitted when a customer is added.
type CustomerCreated struct {
	Meta
	AccountID string `json:"account_id"`
	FullName  string `json:"full_name"`
}

func (e TransactionRecorded) Type() string { return EventTypeTransactionRecorded.String() }
func (e AccountDeactivated) Type() string  { return EventTypeAccountDeactivated.String() }
func (e AccountReactivated) Type() string  { return EventTypeAccountReactivated.String() }
func (e CustomerCreated) Type() string     { return EventTypeCustomerCreated.String() }

// NewTransactionRecorded builds the event for rec.
func NewTransactionRecorded(rec ledger.Record) *TransactionRecorded {
	return &TransactionRecorded{
		Meta:             newMeta(rec.Timestamp),
		TxID:             rec.TxID,
		TxType:           rec.Type,
		FromAccountID:    rec.FromAccountID,
		FromAccountType:  rec.FromAccountType,
		ToAccountID:      rec.ToAccountID,
		ToAccountType:    rec.ToAccountType,
		Amount:           rec.Amount,
		Fee:              rec.Fee,
		ResultingBalance: rec.ResultingBalance,
	}
}

// NewAccountDeactivated builds the event for a checking account that was just switched off.
func NewAccountDeactivated(accountID string, acc account.Account, at time.Time) *AccountDeactivated {
	return &AccountDeactivated{
		Meta:           newMeta(at),
		AccountID:      accountID,
		Balance:        acc.Balance,
		OverdraftCount: acc.OverdraftCount,
	}
}

// NewAccountReactivated builds the event for a checking account that was just switched on.
func NewAccountReactivated(accountID string, balance money.Amount, at time.Time) *AccountReactivated {
	return &AccountReactivated{Meta: newMeta(at), AccountID: accountID, Balance: balance}
}

// NewCustomerCreated builds the event for a new customer.
func NewCustomerCreated(accountID, fullName string, at time.Time) *CustomerCreated {
	return &CustomerCreated{Meta: newMeta(at), AccountID: accountID, FullName: fullName}
}

// EventTypes maps every event type to a constructor, used by transports
// that decode events from the wire.
func EventTypes() map[string]func() Event {
	return map[string]func() Event{
		EventTypeTransactionRecorded.String(): func() Event { return &TransactionRecorded{} },
		EventTypeAccountDeactivated.String():  func() Event { return &AccountDeactivated{} },
		EventTypeAccountReactivated.String():  func() Event { return &AccountReactivated{} },
		EventTypeCustomerCreated.String():     func() Event { return &CustomerCreated{} },
	}
}
