package bank

import (
	"context"

	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/domain/events"
	"github.com/amirasaad/acmebank/pkg/domain/ledger"
	"github.com/amirasaad/acmebank/pkg/money"
)

// NewCustomer is the input of AddCustomer. A nil OverdraftLimit means the
// bank default.
type NewCustomer struct {
	FirstName       string
	LastName        string
	Password        string
	InitialChecking money.Amount
	InitialSavings  money.Amount
	OverdraftLimit  *money.Amount
}

// AddCustomer creates a customer with the next account id and persists it.
// Weak passwords are accepted with a logged warning. Opening balances are
// not ledger events.
func (s *Service) AddCustomer(ctx context.Context, in NewCustomer) (customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := s.overdraftLimit
	if in.OverdraftLimit != nil {
		limit = *in.OverdraftLimit
	}
	id := s.nextCustomerID()
	c, err := customer.New().
		WithID(id).
		WithName(in.FirstName, in.LastName).
		WithPassword(in.Password).
		WithOpeningBalances(in.InitialChecking, in.InitialSavings).
		WithOverdraftLimit(limit).
		WithCurrency(s.currency).
		WithHashCost(s.hashCost).
		Build()
	if err != nil {
		return customer.Customer{}, err
	}
	if warnings := customer.PasswordWarnings(in.Password); len(warnings) > 0 {
		s.logger.Warn("weak password accepted", "account_id", c.AccountID, "issues", warnings)
	}

	if _, err := s.commit(ctx, nil, c); err != nil {
		return customer.Customer{}, err
	}
	s.logger.Info("customer added", "account_id", c.AccountID)
	s.publish(ctx, events.NewCustomerCreated(c.AccountID, c.FullName(), s.now()))
	return *c.Clone(), nil
}

// Deposit credits amount to one sub-account.
func (s *Service) Deposit(ctx context.Context, id string, kind account.Kind, amount money.Amount) (ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.lookup(id)
	if err != nil {
		return ledger.Record{}, err
	}
	acc, err := c.Account(kind)
	if err != nil {
		return ledger.Record{}, err
	}
	balance, err := acc.Deposit(amount)
	if err != nil {
		return ledger.Record{}, err
	}

	rec, err := s.commit(ctx, &ledger.Record{
		Type:             ledger.Deposit,
		ToAccountID:      id,
		ToAccountType:    kind,
		Amount:           amount,
		ResultingBalance: balance,
	}, c)
	if err != nil {
		return ledger.Record{}, err
	}
	s.publish(ctx, events.NewTransactionRecorded(rec))
	return rec, nil
}

// Withdraw debits amount from one sub-account, charging the overdraft fee
// where the checking policy requires it.
func (s *Service) Withdraw(ctx context.Context, id string, kind account.Kind, amount money.Amount) (ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.lookup(id)
	if err != nil {
		return ledger.Record{}, err
	}
	acc, err := c.Account(kind)
	if err != nil {
		return ledger.Record{}, err
	}
	w, err := acc.Withdraw(amount)
	if err != nil {
		return ledger.Record{}, err
	}

	rec, err := s.commit(ctx, &ledger.Record{
		Type:             ledger.Withdraw,
		FromAccountID:    id,
		FromAccountType:  kind,
		Amount:           amount,
		Fee:              w.Fee,
		ResultingBalance: w.Balance,
	}, c)
	if err != nil {
		return ledger.Record{}, err
	}
	s.afterWithdrawal(ctx, rec, c, w)
	return rec, nil
}

// Transfer moves amount between two sub-accounts, possibly of the same
// customer. The source is debited first; if that fails nothing happens.
func (s *Service) Transfer(
	ctx context.Context,
	fromID string, fromKind account.Kind,
	toID string, toKind account.Kind,
	amount money.Amount,
) (ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.lookup(fromID)
	if err != nil {
		return ledger.Record{}, err
	}
	dst := src
	if toID != fromID {
		if dst, err = s.lookup(toID); err != nil {
			return ledger.Record{}, err
		}
	}
	srcAcc, err := src.Account(fromKind)
	if err != nil {
		return ledger.Record{}, err
	}
	dstAcc, err := dst.Account(toKind)
	if err != nil {
		return ledger.Record{}, err
	}
	if srcAcc == dstAcc {
		return ledger.Record{}, ErrSameAccount
	}

	w, err := srcAcc.Withdraw(amount)
	if err != nil {
		return ledger.Record{}, err
	}
	if _, err := dstAcc.Deposit(amount); err != nil {
		return ledger.Record{}, err
	}

	staged := []*customer.Customer{src}
	if dst != src {
		staged = append(staged, dst)
	}
	rec, err := s.commit(ctx, &ledger.Record{
		Type:             ledger.Transfer,
		FromAccountID:    fromID,
		FromAccountType:  fromKind,
		ToAccountID:      toID,
		ToAccountType:    toKind,
		Amount:           amount,
		Fee:              w.Fee,
		ResultingBalance: w.Balance,
	}, staged...)
	if err != nil {
		return ledger.Record{}, err
	}
	s.afterWithdrawal(ctx, rec, src, w)
	return rec, nil
}

func (s *Service) afterWithdrawal(ctx context.Context, rec ledger.Record, c *customer.Customer, w account.Withdrawal) {
	evts := []events.Event{events.NewTransactionRecorded(rec)}
	if w.Fee > 0 {
		s.logger.Warn("overdraft fee charged", "account_id", c.AccountID, "fee", w.Fee, "balance", w.Balance)
	}
	if w.Deactivated {
		s.logger.Warn("checking account deactivated", "account_id", c.AccountID, "overdraft_count", c.Checking.OverdraftCount)
		evts = append(evts, events.NewAccountDeactivated(c.AccountID, c.Checking, rec.Timestamp))
	}
	s.publish(ctx, evts...)
}

// Reactivate applies payment to checking. When the resulting balance is
// zero or more the account is reactivated, a reactivate record is logged
// and true is returned. Otherwise the payment is logged as a deposit, the
// account stays as it was and false is returned. The checking account is
// returned as committed by this call.
func (s *Service) Reactivate(ctx context.Context, id string, payment money.Amount) (account.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.lookup(id)
	if err != nil {
		return account.Account{}, false, err
	}
	balance, err := c.Checking.Pay(payment)
	if err != nil {
		return account.Account{}, false, err
	}

	rec := ledger.Record{
		Type:             ledger.Deposit,
		ToAccountID:      id,
		ToAccountType:    account.Checking,
		Amount:           payment,
		ResultingBalance: balance,
	}
	reactivated := balance >= 0
	if reactivated {
		c.Checking.Reactivate()
		rec.Type = ledger.Reactivate
	}

	stored, err := s.commit(ctx, &rec, c)
	if err != nil {
		return account.Account{}, false, err
	}
	evts := []events.Event{events.NewTransactionRecorded(stored)}
	if reactivated {
		s.logger.Info("checking account reactivated", "account_id", id, "balance", balance)
		evts = append(evts, events.NewAccountReactivated(id, balance, stored.Timestamp))
	}
	s.publish(ctx, evts...)
	return c.Checking, reactivated, nil
}
