// Package statement renders a plain-text account statement: the customer's
// current balances followed by every ledger record that touches the account.
package statement

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/domain/ledger"
)

// Source is what a statement reads from. *bank.Service satisfies it. The
// customer and the records must come from the same read.
type Source interface {
	CustomerHistory(ctx context.Context, id string) (customer.Customer, []ledger.Record, error)
}

// Option configures Write.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock sets the time printed as the generation time.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Filename is the conventional file name of a statement for accountID.
func Filename(accountID string) string {
	return "statement_" + accountID + ".txt"
}

// Write renders the statement of accountID to w.
func Write(ctx context.Context, w io.Writer, src Source, accountID string, opts ...Option) error {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	c, records, err := src.CustomerHistory(ctx, accountID)
	if err != nil {
		return err
	}

	ew := &errWriter{w: w}
	ew.printf("ACME Bank account statement\n")
	ew.printf("Customer:  %s (%s)\n", c.FullName(), c.AccountID)
	ew.printf("Generated: %s\n\n", o.now().UTC().Format(time.DateTime))
	ew.printf("Checking:  %s [%s, overdrafts %d, limit %s]\n",
		c.Checking.Balance.Format(c.Checking.Currency), c.Checking.Status(),
		c.Checking.OverdraftCount, c.Checking.OverdraftLimit)
	ew.printf("Savings:   %s\n", c.Savings.Balance.Format(c.Savings.Currency))
	ew.printf("Total:     %s\n\n", c.Total().Format(c.Checking.Currency))
	if ew.err != nil {
		return ew.err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TX\tDATE\tTYPE\tFROM\tTO\tAMOUNT\tFEE\tBALANCE\t")
	for _, rec := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			rec.TxID,
			rec.Timestamp.UTC().Format(time.DateTime),
			rec.Type,
			side(rec.FromAccountID, rec.FromAccountType),
			side(rec.ToAccountID, rec.ToAccountType),
			rec.Amount, rec.Fee, rec.ResultingBalance,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\n%d transaction(s)\n", len(records))
	return err
}

func side(id string, kind account.Kind) string {
	if id == "" {
		return "-"
	}
	return id + "/" + string(kind)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
