package bank

import (
	"context"
	"iter"
	"slices"

	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/domain/ledger"
)

// Authenticate reports whether password matches the customer's. An unknown
// id is simply false.
func (s *Service) Authenticate(_ context.Context, id, password string) bool {
	s.mu.Lock()
	c, ok := s.customers[id]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return c.CheckPassword(password)
}

// Customer returns a copy of the customer with the given id.
func (s *Service) Customer(id string) (customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.lookup(id)
	if err != nil {
		return customer.Customer{}, err
	}
	return *c, nil
}

// Count returns the number of customers.
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.customers)
}

// TopN returns up to n customers ranked by checking plus savings,
// descending. Equal totals keep account-id order.
func (s *Service) TopN(n int) []customer.Customer {
	if n <= 0 {
		return []customer.Customer{}
	}
	s.mu.Lock()
	ranked := make([]customer.Customer, 0, len(s.customers))
	for _, id := range s.sortedIDs() {
		ranked = append(ranked, *s.customers[id].Clone())
	}
	s.mu.Unlock()

	slices.SortStableFunc(ranked, func(a, b customer.Customer) int {
		ta, tb := a.Total(), b.Total()
		switch {
		case ta > tb:
			return -1
		case ta < tb:
			return 1
		}
		return 0
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// RecordsFor yields the ledger records of an account, oldest first. Each
// range takes a consistent read of the ledger under the service lock and
// then yields from it, so the loop body may call back into the Service.
func (s *Service) RecordsFor(ctx context.Context, id string) iter.Seq2[ledger.Record, error] {
	return func(yield func(ledger.Record, error) bool) {
		s.mu.Lock()
		records, err := s.ledger.Collect(ctx, id)
		s.mu.Unlock()
		if err != nil {
			yield(ledger.Record{}, err)
			return
		}
		for _, rec := range records {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// History returns the ledger records of an existing customer.
func (s *Service) History(ctx context.Context, id string) ([]ledger.Record, error) {
	_, records, err := s.CustomerHistory(ctx, id)
	return records, err
}

// CustomerHistory returns the customer and its ledger records from one read
// under the service lock, so the balances match the history.
func (s *Service) CustomerHistory(ctx context.Context, id string) (customer.Customer, []ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.lookup(id)
	if err != nil {
		return customer.Customer{}, nil, err
	}
	records, err := s.ledger.Collect(ctx, id)
	if err != nil {
		return customer.Customer{}, nil, err
	}
	return *c, records, nil
}
