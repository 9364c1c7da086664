// Package memory is an in-process store used by tests and the "memory"
// storage driver. Writes made inside Do are staged and only published when
// fn returns nil.
package memory

import (
	"context"
	"errors"
	"iter"
	"slices"
	"sync"

	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/domain/ledger"
	"github.com/amirasaad/acmebank/pkg/repository"
)

// Op names a store operation that can be made to fail.
type Op string

const (
	OpList   Op = "list"
	OpSave   Op = "save"
	OpAppend Op = "append"
	OpScan   Op = "scan"
)

// ErrInjected is the default failure returned by Fail.
var ErrInjected = errors.New("injected store failure")

// Store holds the committed customers and records.
type Store struct {
	mu        sync.RWMutex
	customers []*customer.Customer
	records   []ledger.Record
	failures  map[Op]error
}

// New returns an empty store.
func New() *Store {
	return &Store{failures: make(map[Op]error)}
}

// Seed replaces the committed state. It is meant for test setup.
func (s *Store) Seed(customers []*customer.Customer, records []ledger.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = cloneAll(customers)
	s.records = slices.Clone(records)
}

// Fail makes every later call of op return err until Heal is called.
// A nil err means ErrInjected.
func (s *Store) Fail(op Op, err error) {
	if err == nil {
		err = ErrInjected
	}
	s.mu.Lock()
	s.failures[op] = err
	s.mu.Unlock()
}

// Heal clears all injected failures.
func (s *Store) Heal() {
	s.mu.Lock()
	clear(s.failures)
	s.mu.Unlock()
}

// Customers returns a copy of the committed snapshot.
func (s *Store) Customers() []*customer.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.customers)
}

// Records returns a copy of the committed ledger.
func (s *Store) Records() []ledger.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

func (s *Store) failure(op Op) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failures[op]
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

// Do runs fn against a staging area and publishes it if fn succeeds.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	tx := &stage{}
	if err := fn(&UoW{store: u.store, tx: tx}); err != nil {
		return err
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.records = append(u.store.records, tx.appended...)
	if tx.saved {
		u.store.customers = tx.customers
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
	if err := r.store.failure(OpList); err != nil {
		return nil, err
	}
	if r.tx != nil && r.tx.saved {
		return cloneAll(r.tx.customers), nil
	}
	return r.store.Customers(), nil
}

func (r *customerRepository) SaveAll(_ context.Context, customers []*customer.Customer) error {
	if err := r.store.failure(OpSave); err != nil {
		return err
	}
	snapshot := cloneAll(customers)
	if r.tx == nil {
		r.store.mu.Lock()
		r.store.customers = snapshot
		r.store.mu.Unlock()
		return nil
	}
	r.tx.customers = snapshot
	r.tx.saved = true
	return nil
}

type ledgerRepository struct {
	store *Store
	tx    *stage
}

func (r *ledgerRepository) Append(_ context.Context, rec ledger.Record) error {
	if err := r.store.failure(OpAppend); err != nil {
		return err
	}
	if r.tx == nil {
		r.store.mu.Lock()
		r.store.records = append(r.store.records, rec)
		r.store.mu.Unlock()
		return nil
	}
	r.tx.appended = append(r.tx.appended, rec)
	return nil
}

func (r *ledgerRepository) Scan(_ context.Context) iter.Seq2[ledger.Record, error] {
	return func(yield func(ledger.Record, error) bool) {
		if err := r.store.failure(OpScan); err != nil {
			yield(ledger.Record{}, err)
			return
		}
		records := r.store.Records()
		if r.tx != nil {
			records = append(records, r.tx.appended...)
		}
		for _, rec := range records {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func cloneAll(in []*customer.Customer) []*customer.Customer {
	out := make([]*customer.Customer, 0, len(in))
	for _, c := range in {
		out = append(out, c.Clone())
	}
	return out
}

var _ repository.UnitOfWork = (*UoW)(nil)
