package repository

import (
	"context"
	"errors"
	"iter"

	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/domain/ledger"
)

var (
	// ErrLedgerUnavailable is returned when the transaction log cannot be read or appended.
	ErrLedgerUnavailable = errors.New("ledger unavailable")

	// ErrPersistenceUnavailable is returned when the customer snapshot cannot be loaded or saved.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)

// CustomerRepository stores the full customer snapshot.
type CustomerRepository interface {
	// List returns every stored customer. An absent or empty store yields no
	// customers and no error.
	List(ctx context.Context) ([]*customer.Customer, error)
	// SaveAll replaces the stored snapshot with customers.
	SaveAll(ctx context.Context, customers []*customer.Customer) error
}

// LedgerRepository is the durable, append-only transaction log.
type LedgerRepository interface {
	Append(ctx context.Context, record ledger.Record) error
	// Scan yields every stored record in append order. Each call starts a
	// fresh pass over the store.
	Scan(ctx context.Context) iter.Seq2[ledger.Record, error]
}
