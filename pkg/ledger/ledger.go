// Package ledger assigns ids and timestamps to transaction records and
// reads them back per account.
//
// The durable log is the only source of truth for ids: every Append scans
// the store for the current maximum, so ids stay gap-free across restarts
// without any cached counter.
package ledger

import (
	"context"
	"fmt"
	"iter"
	"time"

	ledgerdomain "github.com/amirasaad/acmebank/pkg/domain/ledger"
	"github.com/amirasaad/acmebank/pkg/repository"
)

// Ledger is a view over a LedgerRepository.
type Ledger struct {
	repo repository.LedgerRepository
	now  func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// New returns a Ledger over repo.
func New(repo repository.LedgerRepository, opts ...Option) *Ledger {
	l := &Ledger{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// On returns a copy of l bound to repo, keeping the clock. It is used to
// move a ledger inside a unit of work.
func (l *Ledger) On(repo repository.LedgerRepository) *Ledger {
	cp := *l
	cp.repo = repo
	return &cp
}

// NextID returns max(TxID) + 1, or 1 for an empty log. Records with a
// missing or malformed id surface as TxID <= 0 and are ignored.
func (l *Ledger) NextID(ctx context.Context) (int64, error) {
	var maxID int64
	for rec, err := range l.repo.Scan(ctx) {
		if err != nil {
			return 0, fmt.Errorf("%w: %w", repository.ErrLedgerUnavailable, err)
		}
		if rec.TxID > maxID {
			maxID = rec.TxID
		}
	}
	return maxID + 1, nil
}

// Append assigns the next id and the current time to rec and writes it.
// The stored record is returned.
func (l *Ledger) Append(ctx context.Context, rec ledgerdomain.Record) (ledgerdomain.Record, error) {
	id, err := l.NextID(ctx)
	if err != nil {
		return ledgerdomain.Record{}, err
	}
	rec.TxID = id
	rec.Timestamp = l.now().UTC().Truncate(time.Second)
	if err := l.repo.Append(ctx, rec); err != nil {
		return ledgerdomain.Record{}, fmt.Errorf("%w: %w", repository.ErrLedgerUnavailable, err)
	}
	return rec, nil
}

// RecordsFor yields the records where accountID is the source or the
// destination, oldest first. The sequence is lazy and restartable: each
// range starts a new scan. A store failure is yielded once as an error
// wrapping ErrLedgerUnavailable and ends the sequence.
func (l *Ledger) RecordsFor(ctx context.Context, accountID string) iter.Seq2[ledgerdomain.Record, error] {
	return func(yield func(ledgerdomain.Record, error) bool) {
		for rec, err := range l.repo.Scan(ctx) {
			if err != nil {
				yield(ledgerdomain.Record{}, fmt.Errorf("%w: %w", repository.ErrLedgerUnavailable, err))
				return
			}
			if !rec.Involves(accountID) {
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Collect drains RecordsFor into a slice.
func (l *Ledger) Collect(ctx context.Context, accountID string) ([]ledgerdomain.Record, error) {
	var out []ledgerdomain.Record
	for rec, err := range l.RecordsFor(ctx, accountID) {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
