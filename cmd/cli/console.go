package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/money"
	authsvc "github.com/amirasaad/acmebank/pkg/service/auth"
	"github.com/amirasaad/acmebank/pkg/service/bank"
	"github.com/amirasaad/acmebank/pkg/statement"
	"github.com/fatih/color"
)

var (
	cyan    = color.New(color.FgCyan)
	yellow  = color.New(color.FgYellow)
	green   = color.New(color.FgGreen)
	red     = color.New(color.FgRed)
	blue    = color.New(color.FgBlue)
	magenta = color.New(color.FgMagenta)
)

var errQuit = errors.New("quit")

// console is the interactive menu over one bank.
type console struct {
	bank *bank.Service
	auth *authsvc.Service
	in   *bufio.Scanner
	out  io.Writer
	// readPassword reads a secret without echo; nil falls back to a plain line.
	readPassword func() (string, error)
	// statementDir is where statements are written.
	statementDir string
}

func newConsole(bankSvc *bank.Service, auth *authsvc.Service, in io.Reader, out io.Writer) *console {
	return &console{
		bank:         bankSvc,
		auth:         auth,
		in:           bufio.NewScanner(in),
		out:          out,
		statementDir: ".",
	}
}

func (c *console) success(format string, args ...any) { green.Fprintf(c.out, "✅ "+format+"\n", args...) }
func (c *console) fail(format string, args ...any)    { red.Fprintf(c.out, "❌ "+format+"\n", args...) }
func (c *console) info(format string, args ...any)    { blue.Fprintf(c.out, "ℹ️ "+format+"\n", args...) }

func (c *console) prompt(label string) (string, error) {
	yellow.Fprint(c.out, label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *console) promptPassword(label string) (string, error) {
	if c.readPassword == nil {
		return c.prompt(label)
	}
	yellow.Fprint(c.out, label)
	pw, err := c.readPassword()
	fmt.Fprintln(c.out)
	return pw, err
}

func (c *console) promptAmount(label string) (money.Amount, error) {
	raw, err := c.prompt(label)
	if err != nil {
		return 0, err
	}
	return money.Parse(raw)
}

func (c *console) promptKind(label string) (account.Kind, error) {
	raw, err := c.prompt(label)
	if err != nil {
		return "", err
	}
	return account.ParseKind(raw)
}

func (c *console) banner() {
	cyan.Fprintln(c.out, strings.Repeat("=", 40))
	yellow.Fprintln(c.out, "     ✨ Welcome to ACME Bank ✨")
	cyan.Fprintln(c.out, strings.Repeat("=", 40))
	fmt.Fprintln(c.out)
}

// Run shows the main menu until the user quits or input ends.
func (c *console) Run(ctx context.Context) error {
	c.banner()
	for {
		cyan.Fprintln(c.out, "Main Menu:")
		fmt.Fprintln(c.out, "1. Add New Customer")
		fmt.Fprintln(c.out, "2. Login")
		fmt.Fprintln(c.out, "3. Show Top 3 Customers")
		fmt.Fprintln(c.out, "q. Quit")

		choice, err := c.prompt("Choose an option: ")
		if err != nil {
			return c.done(err)
		}
		switch strings.ToLower(choice) {
		case "1":
			err = c.addCustomer(ctx)
		case "2":
			err = c.login(ctx)
		case "3":
			c.topCustomers()
		case "q":
			err = errQuit
		default:
			c.fail("Invalid choice. Try again.")
		}
		if err != nil {
			return c.done(err)
		}
	}
}

func (c *console) done(err error) error {
	if errors.Is(err, errQuit) {
		c.info("Goodbye 👋")
		return nil
	}
	return err
}

func (c *console) addCustomer(ctx context.Context) error {
	first, err := c.prompt("First name: ")
	if err != nil {
		return err
	}
	last, err := c.prompt("Last name: ")
	if err != nil {
		return err
	}
	for {
		pw, err := c.promptPassword("Password: ")
		if err != nil {
			return err
		}
		if warnings := customer.PasswordWarnings(pw); len(warnings) > 0 {
			c.info("Weak password: %s", strings.Join(warnings, "; "))
		}
		cust, err := c.bank.AddCustomer(ctx, bank.NewCustomer{FirstName: first, LastName: last, Password: pw})
		if errors.Is(err, customer.ErrPasswordRequired) {
			c.fail("%v", err)
			red.Fprintln(c.out, "Please try again.")
			continue
		}
		if err != nil {
			c.fail("%v", err)
			return nil
		}
		c.success("New customer added with ID: %s", cust.AccountID)
		return nil
	}
}

func (c *console) login(ctx context.Context) error {
	id, err := c.prompt("Account ID: ")
	if err != nil {
		return err
	}
	pw, err := c.promptPassword("Password: ")
	if err != nil {
		return err
	}
	if _, err := c.auth.Login(ctx, id, pw); err != nil {
		c.fail("Login failed. Check your Account ID or Password.")
		return nil
	}
	c.success("Login successful!")
	c.dashboard(id)
	return c.accountMenu(ctx, id)
}

func (c *console) dashboard(id string) {
	cust, err := c.bank.Customer(id)
	if err != nil {
		c.fail("%v", err)
		return
	}
	fmt.Fprintln(c.out)
	magenta.Fprintln(c.out, strings.Repeat("=", 30))
	cyan.Fprintf(c.out, " Welcome %s!\n", cust.FullName())
	yellow.Fprintf(c.out, " 💳 Checking: %s (%s)\n", cust.Checking.Balance.Format(cust.Checking.Currency), cust.Checking.Status())
	yellow.Fprintf(c.out, " 💰 Savings : %s\n", cust.Savings.Balance.Format(cust.Savings.Currency))
	green.Fprintln(c.out, " ------------------------------")
	green.Fprintf(c.out, " Total Balance: %s\n", cust.Total().Format(cust.Checking.Currency))
	magenta.Fprintln(c.out, strings.Repeat("=", 30))
	fmt.Fprintln(c.out)
}

func (c *console) topCustomers() {
	cyan.Fprintln(c.out, "\n--- Top 3 Customers ---")
	for i, cust := range c.bank.TopN(3) {
		fmt.Fprintf(c.out, "%d. %s (Total: %s)\n", i+1, cust.FullName(), cust.Total())
	}
}

func (c *console) accountMenu(ctx context.Context, id string) error {
	for {
		cyan.Fprintln(c.out, "\n--- Account Menu ---")
		fmt.Fprintln(c.out, "1. Deposit")
		fmt.Fprintln(c.out, "2. Withdraw")
		fmt.Fprintln(c.out, "3. Transfer")
		fmt.Fprintln(c.out, "4. Show Balances")
		fmt.Fprintln(c.out, "5. Generate Statement")
		fmt.Fprintln(c.out, "6. Reactivate Checking Account")
		fmt.Fprintln(c.out, "b. Back to Main Menu")
		fmt.Fprintln(c.out, "q. Quit")

		choice, err := c.prompt("Choose an option: ")
		if err != nil {
			return err
		}
		switch strings.ToLower(choice) {
		case "1":
			err = c.deposit(ctx, id)
		case "2":
			err = c.withdraw(ctx, id)
		case "3":
			err = c.transfer(ctx, id)
		case "4":
			c.dashboard(id)
		case "5":
			err = c.writeStatement(ctx, id)
		case "6":
			err = c.reactivate(ctx, id)
		case "b":
			c.info("Returning to Main Menu...")
			return nil
		case "q":
			return errQuit
		default:
			c.fail("Invalid choice. Try again.")
		}
		if errors.Is(err, errQuit) {
			return err
		}
		if err != nil {
			c.fail("%v", err)
		}
	}
}

func (c *console) deposit(ctx context.Context, id string) error {
	kind, err := c.promptKind("Account (checking/savings): ")
	if err != nil {
		return err
	}
	amount, err := c.promptAmount("Amount: ")
	if err != nil {
		return err
	}
	rec, err := c.bank.Deposit(ctx, id, kind, amount)
	if err != nil {
		return err
	}
	c.success("Deposited %s into %s. New balance: %s", amount, kind, rec.ResultingBalance)
	return nil
}

func (c *console) withdraw(ctx context.Context, id string) error {
	kind, err := c.promptKind("Account (checking/savings): ")
	if err != nil {
		return err
	}
	amount, err := c.promptAmount("Amount: ")
	if err != nil {
		return err
	}
	rec, err := c.bank.Withdraw(ctx, id, kind, amount)
	if err != nil {
		return err
	}
	c.success("Withdrew %s from %s. New balance: %s, Fee: %s", amount, kind, rec.ResultingBalance, rec.Fee)
	return nil
}

func (c *console) transfer(ctx context.Context, id string) error {
	target, err := c.prompt("Target Account ID: ")
	if err != nil {
		return err
	}
	from, err := c.promptKind("From (checking/savings): ")
	if err != nil {
		return err
	}
	to, err := c.promptKind("To (checking/savings): ")
	if err != nil {
		return err
	}
	amount, err := c.promptAmount("Amount: ")
	if err != nil {
		return err
	}
	if _, err := c.bank.Transfer(ctx, id, from, target, to, amount); err != nil {
		return err
	}
	c.success("Transferred %s from %s to %s (%s)", amount, from, to, target)
	return nil
}

func (c *console) writeStatement(ctx context.Context, id string) error {
	path := filepath.Join(c.statementDir, statement.Filename(id))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := statement.Write(ctx, f, c.bank, id); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	c.success("Statement generated successfully: %s", path)
	return nil
}

func (c *console) reactivate(ctx context.Context, id string) error {
	amount, err := c.promptAmount("Payment amount: ")
	if err != nil {
		return err
	}
	checking, ok, err := c.bank.Reactivate(ctx, id, amount)
	if err != nil {
		return err
	}
	if !ok {
		c.info("Payment applied. Checking is still deactivated at %s", checking.Balance)
		return nil
	}
	c.success("Checking account reactivated successfully!")
	return nil
}
