package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/money"
)

// ErrMalformedRow is returned when bank.csv holds a row that cannot be loaded.
var ErrMalformedRow = errors.New("malformed customer row")

// CustomerHeader is the bank.csv header. overdraft_limit is optional on read.
var CustomerHeader = []string{
	"account_id", "first_name", "last_name", "password",
	"balance_checking", "balance_savings", "overdraft_count", "is_active",
	"overdraft_limit",
}

// readCustomers loads bank.csv. A missing or empty file yields no customers.
// A row that cannot be parsed, or repeats an account_id, fails the whole load
// because the next save rewrites the file from what was loaded.
func readCustomers(path string, defaultLimit money.Amount) ([]*customer.Customer, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	cols := indexColumns(header)
	for _, required := range CustomerHeader[:6] {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("invalid customers file %s: missing column %q", path, required)
		}
	}

	var out []*customer.Customer
	seen := make(map[string]int)
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read %s line %d: %w", path, line, err)
		}
		c, err := parseCustomer(rec, cols, defaultLimit)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %w", ErrMalformedRow, path, line, err)
		}
		if first, dup := seen[c.AccountID]; dup {
			return nil, fmt.Errorf("%w: %s line %d: account_id %s already on line %d",
				ErrMalformedRow, path, line, c.AccountID, first)
		}
		seen[c.AccountID] = line
		out = append(out, c)
	}
	return out, nil
}

func parseCustomer(rec []string, cols map[string]int, defaultLimit money.Amount) (*customer.Customer, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	id := get("account_id")
	if id == "" {
		return nil, errors.New("empty account_id")
	}
	checkingBal, err := money.Parse(get("balance_checking"))
	if err != nil {
		return nil, fmt.Errorf("balance_checking: %w", err)
	}
	savingsBal, err := money.Parse(get("balance_savings"))
	if err != nil {
		return nil, fmt.Errorf("balance_savings: %w", err)
	}

	count := 0
	if s := get("overdraft_count"); s != "" {
		if count, err = strconv.Atoi(s); err != nil {
			return nil, fmt.Errorf("overdraft_count: %w", err)
		}
	}
	active := true
	if s := get("is_active"); s != "" {
		active = strings.EqualFold(s, "true")
	}
	limit := defaultLimit
	if s := get("overdraft_limit"); s != "" {
		if limit, err = money.Parse(s); err != nil {
			return nil, fmt.Errorf("overdraft_limit: %w", err)
		}
	}

	checking := account.NewChecking(checkingBal, limit)
	checking.OverdraftCount = count
	checking.Active = active
	return customer.FromData(id, get("first_name"), get("last_name"), get("password"),
		checking, account.NewSavings(savingsBal)), nil
}

// writeCustomers rewrites bank.csv through a temporary file and a rename so a
// crash never leaves a half-written snapshot behind.
func writeCustomers(path string, customers []*customer.Customer) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(CustomerHeader); err != nil {
		_ = tmp.Close()
		return err
	}
	for _, c := range customers {
		if err = w.Write(formatCustomer(c)); err != nil {
			_ = tmp.Close()
			return err
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func formatCustomer(c *customer.Customer) []string {
	return []string{
		c.AccountID,
		c.FirstName,
		c.LastName,
		c.Password,
		c.Checking.Balance.String(),
		c.Savings.Balance.String(),
		strconv.Itoa(c.Checking.OverdraftCount),
		formatBool(c.Checking.Active),
		c.Checking.OverdraftLimit.String(),
	}
}

// formatBool keeps the capitalised spelling of the legacy file.
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return cols
}
