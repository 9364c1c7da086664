package gormstore

import (
	"time"

	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/domain/ledger"
	"github.com/amirasaad/acmebank/pkg/money"
)

// Customer is the persisted customer row. Balances are stored in cents.
type Customer struct {
	AccountID       string `gorm:"primaryKey;type:varchar(32)"`
	FirstName       string `gorm:"type:varchar(128)"`
	LastName        string `gorm:"type:varchar(128)"`
	Password        string `gorm:"type:varchar(255);not null"`
	Currency        string `gorm:"type:varchar(3);not null;default:'USD'"`
	CheckingBalance int64  `gorm:"not null;default:0"`
	SavingsBalance  int64  `gorm:"not null;default:0"`
	OverdraftLimit  int64  `gorm:"not null"`
	OverdraftCount  int    `gorm:"not null;default:0"`
	CheckingActive  bool   `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for the Customer model.
func (Customer) TableName() string {
	return "customers"
}

// LedgerRecord is one row of the append-only ledger.
type LedgerRecord struct {
	TxID             int64     `gorm:"column:tx_id;primaryKey;autoIncrement:false"`
	Timestamp        time.Time `gorm:"not null"`
	Type             string    `gorm:"type:varchar(16);not null"`
	FromAccountID    string    `gorm:"type:varchar(32);index"`
	FromAccountType  string    `gorm:"type:varchar(16)"`
	ToAccountID      string    `gorm:"type:varchar(32);index"`
	ToAccountType    string    `gorm:"type:varchar(16)"`
	Amount           int64     `gorm:"not null"`
	Fee              int64     `gorm:"not null;default:0"`
	ResultingBalance int64     `gorm:"not null"`
}

// TableName specifies the table name for the LedgerRecord model.
func (LedgerRecord) TableName() string {
	return "ledger_records"
}

func customerToModel(c *customer.Customer) Customer {
	return Customer{
		AccountID:       c.AccountID,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		Password:        c.Password,
		Currency:        c.Checking.Currency,
		CheckingBalance: int64(c.Checking.Balance),
		SavingsBalance:  int64(c.Savings.Balance),
		OverdraftLimit:  int64(c.Checking.OverdraftLimit),
		OverdraftCount:  c.Checking.OverdraftCount,
		CheckingActive:  c.Checking.Active,
	}
}

func customerFromModel(m Customer) *customer.Customer {
	checking := account.NewChecking(money.Amount(m.CheckingBalance), money.Amount(m.OverdraftLimit))
	checking.OverdraftCount = m.OverdraftCount
	checking.Active = m.CheckingActive
	savings := account.NewSavings(money.Amount(m.SavingsBalance))
	if m.Currency != "" {
		checking.Currency = m.Currency
		savings.Currency = m.Currency
	}
	return customer.FromData(m.AccountID, m.FirstName, m.LastName, m.Password, checking, savings)
}

func recordToModel(r ledger.Record) LedgerRecord {
	return LedgerRecord{
		TxID:             r.TxID,
		Timestamp:        r.Timestamp.UTC(),
		Type:             string(r.Type),
		FromAccountID:    r.FromAccountID,
		FromAccountType:  string(r.FromAccountType),
		ToAccountID:      r.ToAccountID,
		ToAccountType:    string(r.ToAccountType),
		Amount:           int64(r.Amount),
		Fee:              int64(r.Fee),
		ResultingBalance: int64(r.ResultingBalance),
	}
}

func recordFromModel(m LedgerRecord) ledger.Record {
	return ledger.Record{
		TxID:             m.TxID,
		Timestamp:        m.Timestamp.UTC(),
		Type:             ledger.Type(m.Type),
		FromAccountID:    m.FromAccountID,
		FromAccountType:  account.Kind(m.FromAccountType),
		ToAccountID:      m.ToAccountID,
		ToAccountType:    account.Kind(m.ToAccountType),
		Amount:           money.Amount(m.Amount),
		Fee:              money.Amount(m.Fee),
		ResultingBalance: money.Amount(m.ResultingBalance),
	}
}
