package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/ledger"
	"github.com/amirasaad/acmebank/pkg/money"
)

// LedgerHeader is the transactions.csv header.
var LedgerHeader = []string{
	"tx_id", "timestamp", "type",
	"from_account_id", "from_account_type",
	"to_account_id", "to_account_type",
	"amount", "fee", "resulting_balance",
}

// scanLedger streams transactions.csv one row at a time. A missing file is an
// empty ledger. A row whose tx_id cannot be parsed is yielded with TxID 0.
// A row with a valid tx_id that is malformed elsewhere is logged and yielded
// as an id-only record with no type and no accounts, so the id stays taken.
func scanLedger(path string, logger *slog.Logger) iter.Seq2[ledger.Record, error] {
	return func(yield func(ledger.Record, error) bool) {
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		if err != nil {
			yield(ledger.Record{}, fmt.Errorf("failed to open %s: %w", path, err))
			return
		}
		defer f.Close() //nolint:errcheck

		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		r.ReuseRecord = true
		line := 0
		for {
			row, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			line++
			if err != nil {
				yield(ledger.Record{}, fmt.Errorf("failed to read %s line %d: %w", path, line, err))
				return
			}
			if line == 1 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), LedgerHeader[0]) {
				continue
			}
			rec, err := parseRecord(row)
			if err != nil {
				logger.Warn("malformed ledger row", "file", path, "line", line, "error", err)
				id, ok := parseTxID(row)
				if !ok {
					continue
				}
				rec = ledger.Record{TxID: id}
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// parseTxID reads the tx_id column alone.
func parseTxID(row []string) (int64, bool) {
	if len(row) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseRecord(row []string) (ledger.Record, error) {
	var rec ledger.Record
	rec.TxID, _ = parseTxID(row)
	if len(row) < len(LedgerHeader) {
		return ledger.Record{}, fmt.Errorf("expected %d columns, got %d", len(LedgerHeader), len(row))
	}
	f := func(i int) string { return strings.TrimSpace(row[i]) }

	if ts, err := time.Parse(time.RFC3339, f(1)); err == nil {
		rec.Timestamp = ts
	}
	rec.Type = ledger.Type(strings.ToLower(f(2)))
	if !rec.Type.Valid() {
		return ledger.Record{}, fmt.Errorf("unknown type %q", f(2))
	}
	rec.FromAccountID = f(3)
	rec.FromAccountType = account.Kind(f(4))
	rec.ToAccountID = f(5)
	rec.ToAccountType = account.Kind(f(6))

	var err error
	if rec.Amount, err = money.Parse(f(7)); err != nil {
		return ledger.Record{}, fmt.Errorf("amount: %w", err)
	}
	if s := f(8); s != "" {
		if rec.Fee, err = money.Parse(s); err != nil {
			return ledger.Record{}, fmt.Errorf("fee: %w", err)
		}
	}
	if rec.ResultingBalance, err = money.Parse(f(9)); err != nil {
		return ledger.Record{}, fmt.Errorf("resulting_balance: %w", err)
	}
	return rec, nil
}

func formatRecord(rec ledger.Record) []string {
	return []string{
		strconv.FormatInt(rec.TxID, 10),
		rec.Timestamp.UTC().Format(time.RFC3339),
		string(rec.Type),
		rec.FromAccountID,
		string(rec.FromAccountType),
		rec.ToAccountID,
		string(rec.ToAccountType),
		rec.Amount.String(),
		rec.Fee.String(),
		rec.ResultingBalance.String(),
	}
}

// appendRecords writes records at the end of transactions.csv, adding the
// header to a new file. It returns the file size before the write so the
// caller can roll the append back with truncateLedger.
func appendRecords(path string, records []ledger.Record) (prevSize int64, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return 0, err
	}
	prevSize = info.Size()
	if prevSize > 0 {
		if err := terminateLastLine(path, f, prevSize); err != nil {
			_ = f.Close()
			_ = truncateLedger(path, prevSize)
			return 0, err
		}
	}

	w := csv.NewWriter(f)
	if prevSize == 0 {
		_ = w.Write(LedgerHeader)
	}
	for _, rec := range records {
		_ = w.Write(formatRecord(rec))
	}
	w.Flush()
	if err = w.Error(); err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = truncateLedger(path, prevSize)
		return 0, err
	}
	return prevSize, nil
}

// terminateLastLine writes a newline to f when the file at path does not end
// with one, so the next row starts on its own line.
func terminateLastLine(path string, f *os.File, size int64) error {
	r, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer r.Close() //nolint:errcheck
	last := make([]byte, 1)
	if _, err := r.ReadAt(last, size-1); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if last[0] == '\n' {
		return nil
	}
	_, err = f.Write([]byte{'\n'})
	return err
}

func truncateLedger(path string, size int64) error {
	return os.Truncate(path, size)
}
