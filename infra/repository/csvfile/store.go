// Package csvfile persists customers and the ledger in the legacy CSV files
// (bank.csv and transactions.csv).
package csvfile

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/domain/ledger"
	"github.com/amirasaad/acmebank/pkg/money"
	"github.com/amirasaad/acmebank/pkg/repository"
)

// Store owns the two files.
type Store struct {
	customersPath string
	ledgerPath    string
	defaultLimit  money.Amount
	logger        *slog.Logger
	mu            sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for malformed-row warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultOverdraftLimit sets the limit given to rows without an
// overdraft_limit column.
func WithDefaultOverdraftLimit(limit money.Amount) Option {
	return func(s *Store) { s.defaultLimit = limit }
}

// New returns a Store over the given paths. Nothing is read until first use.
func New(customersPath, ledgerPath string, opts ...Option) *Store {
	s := &Store{
		customersPath: customersPath,
		ledgerPath:    ledgerPath,
		defaultLimit:  account.DefaultOverdraftLimit,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("store", "csv")
	return s
}

// UoW implements repository.UnitOfWork over a Store.
type UoW struct {
	store *Store
	tx    *stage
}

type stage struct {
	customers []*customer.Customer
	saved     bool
	appended  []ledger.Record
}

// NewUoW returns a unit of work over store.
func NewUoW(store *Store) *UoW {
	return &UoW{store: store}
}

// Do stages the writes of fn and then applies them: ledger rows are
// appended first, then the customer snapshot is replaced. If the snapshot
// cannot be written the ledger file is truncated back to its previous size.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	tx := &stage{}
	if err := fn(&UoW{store: u.store, tx: tx}); err != nil {
		return err
	}
	return u.store.commit(tx)
}

func (s *Store) commit(tx *stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prevSize int64
	if len(tx.appended) > 0 {
		size, err := appendRecords(s.ledgerPath, tx.appended)
		if err != nil {
			return fmt.Errorf("%w: append ledger: %w", repository.ErrLedgerUnavailable, err)
		}
		prevSize = size
	}
	if !tx.saved {
		return nil
	}
	if err := writeCustomers(s.customersPath, tx.customers); err != nil {
		if len(tx.appended) > 0 {
			if terr := truncateLedger(s.ledgerPath, prevSize); terr != nil {
				s.logger.Error("failed to roll back ledger append", "error", terr)
			}
		}
		return fmt.Errorf("%w: save customers: %w", repository.ErrPersistenceUnavailable, err)
	}
	return nil
}

// CustomerRepository returns a repository bound to the current stage, if any.
func (u *UoW) CustomerRepository() (repository.CustomerRepository, error) {
	return &customerRepository{store: u.store, tx: u.tx}, nil
}

// LedgerRepository returns a repository bound to the current stage, if any.
func (u *UoW) LedgerRepository() (repository.LedgerRepository, error) {
	return &ledgerRepository{store: u.store, tx: u.tx}, nil
}

type customerRepository struct {
	store *Store
	tx    *stage
}

func (r *customerRepository) List(_ context.Context) ([]*customer.Customer, error) {
	if r.tx != nil && r.tx.saved {
		out := make([]*customer.Customer, 0, len(r.tx.customers))
		for _, c := range r.tx.customers {
			out = append(out, c.Clone())
		}
		return out, nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return readCustomers(r.store.customersPath, r.store.defaultLimit)
}

func (r *customerRepository) SaveAll(_ context.Context, customers []*customer.Customer) error {
	if r.tx != nil {
		r.tx.customers = customers
		r.tx.saved = true
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return writeCustomers(r.store.customersPath, customers)
}

type ledgerRepository struct {
	store *Store
	tx    *stage
}

func (r *ledgerRepository) Append(_ context.Context, rec ledger.Record) error {
	if r.tx != nil {
		r.tx.appended = append(r.tx.appended, rec)
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, err := appendRecords(r.store.ledgerPath, []ledger.Record{rec})
	return err
}

func (r *ledgerRepository) Scan(_ context.Context) iter.Seq2[ledger.Record, error] {
	return func(yield func(ledger.Record, error) bool) {
		for rec, err := range scanLedger(r.store.ledgerPath, r.store.logger) {
			if !yield(rec, err) || err != nil {
				return
			}
		}
		if r.tx == nil {
			return
		}
		for _, rec := range r.tx.appended {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

var _ repository.UnitOfWork = (*UoW)(nil)
