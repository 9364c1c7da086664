// Package bank is the transactional boundary of the bank. It owns the
// customer map and the ledger, and turns every public operation into one
// all-or-nothing step: account changes are made on copies, the ledger record
// and the full customer snapshot are written inside one unit of work, and
// only then do the copies replace the in-memory state.
package bank

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/amirasaad/acmebank/pkg/config"
	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/domain/events"
	ledgerdomain "github.com/amirasaad/acmebank/pkg/domain/ledger"
	"github.com/amirasaad/acmebank/pkg/eventbus"
	"github.com/amirasaad/acmebank/pkg/ledger"
	"github.com/amirasaad/acmebank/pkg/money"
	"github.com/amirasaad/acmebank/pkg/repository"
)

var (
	// ErrSameAccount is returned when a transfer names the same sub-account twice.
	ErrSameAccount = errors.New("cannot transfer to the same account")

	// ErrNoUnitOfWork is returned by Open without a store.
	ErrNoUnitOfWork = errors.New("bank: unit of work is required")
)

// Service coordinates customers, accounts and the ledger.
type Service struct {
	mu        sync.Mutex
	uow       repository.UnitOfWork
	bus       eventbus.Bus
	logger    *slog.Logger
	ledger    *ledger.Ledger
	now       func() time.Time
	customers map[string]*customer.Customer

	overdraftLimit money.Amount
	currency       string
	hashCost       int
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now for ledger timestamps and events.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithHashCost sets the bcrypt cost used for new customers.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// WithOverdraftLimit sets the limit given to new checking accounts.
func WithOverdraftLimit(limit money.Amount) Option {
	return func(s *Service) { s.overdraftLimit = limit }
}

// Open loads every customer from the store and returns a ready Service.
// An absent or empty store yields a bank with no customers. A store that
// cannot be loaded whole, or repeats a customer id, fails with
// ErrPersistenceUnavailable.
func Open(ctx context.Context, deps config.Deps, opts ...Option) (*Service, error) {
	if deps.Uow == nil {
		return nil, ErrNoUnitOfWork
	}
	s := &Service{
		uow:            deps.Uow,
		bus:            deps.EventBus,
		logger:         deps.Logger,
		now:            time.Now,
		customers:      make(map[string]*customer.Customer),
		overdraftLimit: account.DefaultOverdraftLimit,
		currency:       money.DefaultCurrency,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("service", "bank")
	if cfg := deps.Config; cfg != nil && cfg.Bank != nil {
		s.overdraftLimit = cfg.Bank.OverdraftLimit.Amount()
		s.currency = cfg.Bank.Currency
		s.hashCost = cfg.Bank.BcryptCost
	}
	for _, opt := range opts {
		opt(s)
	}

	repo, err := s.uow.CustomerRepository()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrPersistenceUnavailable, err)
	}
	list, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrPersistenceUnavailable, err)
	}
	for _, c := range list {
		if _, dup := s.customers[c.AccountID]; dup {
			return nil, fmt.Errorf("%w: duplicate customer id %s", repository.ErrPersistenceUnavailable, c.AccountID)
		}
		s.customers[c.AccountID] = c
	}

	ledgerRepo, err := s.uow.LedgerRepository()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrLedgerUnavailable, err)
	}
	s.ledger = ledger.New(ledgerRepo, ledger.WithClock(s.now))

	s.logger.Info("bank opened", "customers", len(s.customers))
	return s, nil
}

// lookup returns a private copy of the customer so callers can mutate it
// freely until commit.
func (s *Service) lookup(id string) (*customer.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", customer.ErrCustomerNotFound, id)
	}
	return c.Clone(), nil
}

// sortedIDs returns the customer ids in account-number order.
func (s *Service) sortedIDs() []string {
	ids := make([]string, 0, len(s.customers))
	for id := range s.customers {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareIDs)
	return ids
}

func compareIDs(a, b string) int {
	na, okA := customer.ParseID(a)
	nb, okB := customer.ParseID(b)
	switch {
	case okA && okB:
		return cmp.Or(cmp.Compare(na, nb), cmp.Compare(a, b))
	case okA:
		return -1
	case okB:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}

func (s *Service) nextCustomerID() int64 {
	next := int64(customer.FirstAccountID)
	for id := range s.customers {
		if n, ok := customer.ParseID(id); ok && n >= next {
			next = n + 1
		}
	}
	return next
}

// snapshot is the full customer list with staged copies in place of the
// committed ones.
func (s *Service) snapshot(staged []*customer.Customer) []*customer.Customer {
	byID := make(map[string]*customer.Customer, len(staged))
	for _, c := range staged {
		byID[c.AccountID] = c
	}
	out := make([]*customer.Customer, 0, len(s.customers)+len(staged))
	for _, id := range s.sortedIDs() {
		if c, ok := byID[id]; ok {
			out = append(out, c)
			delete(byID, id)
			continue
		}
		out = append(out, s.customers[id])
	}
	for _, c := range staged {
		if _, ok := byID[c.AccountID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// commit writes rec (when non-nil) and the snapshot in one unit of work and,
// on success, installs the staged customers. On failure nothing changes.
func (s *Service) commit(ctx context.Context, rec *ledgerdomain.Record, staged ...*customer.Customer) (ledgerdomain.Record, error) {
	var stored ledgerdomain.Record
	snapshot := s.snapshot(staged)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if rec != nil {
			repo, err := uow.LedgerRepository()
			if err != nil {
				return fmt.Errorf("%w: %w", repository.ErrLedgerUnavailable, err)
			}
			if stored, err = s.ledger.On(repo).Append(ctx, *rec); err != nil {
				return err
			}
		}
		repo, err := uow.CustomerRepository()
		if err != nil {
			return fmt.Errorf("%w: %w", repository.ErrPersistenceUnavailable, err)
		}
		if err := repo.SaveAll(ctx, snapshot); err != nil {
			return fmt.Errorf("%w: %w", repository.ErrPersistenceUnavailable, err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrLedgerUnavailable) && !errors.Is(err, repository.ErrPersistenceUnavailable) {
			err = fmt.Errorf("%w: %w", repository.ErrPersistenceUnavailable, err)
		}
		s.logger.Error("commit failed, no state changed", "error", err)
		return ledgerdomain.Record{}, err
	}
	for _, c := range staged {
		s.customers[c.AccountID] = c
	}
	return stored, nil
}

// publish emits events after a commit. The bus sits outside the
// transactional boundary so failures are only logged.
func (s *Service) publish(ctx context.Context, evts ...events.Event) {
	if s.bus == nil {
		return
	}
	for _, e := range evts {
		if err := s.bus.Emit(ctx, e); err != nil {
			s.logger.Warn("failed to publish event", "type", e.Type(), "error", err)
		}
	}
}
