package repository

import "context"

// UnitOfWork groups a ledger append and a snapshot save into one
// all-or-nothing step.
//
// Do runs fn inside the boundary. The UnitOfWork passed to fn hands out
// repositories bound to that boundary; if fn returns an error nothing it
// wrote becomes visible.
//
//	err := uow.Do(ctx, func(uow repository.UnitOfWork) error {
//		ledgerRepo, err := uow.LedgerRepository()
//		...
//	})
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	CustomerRepository() (CustomerRepository, error)
	LedgerRepository() (LedgerRepository, error)
}
