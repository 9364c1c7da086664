// Package gormstore persists customers and the ledger in a SQL database
// through gorm. Postgres and sqlite are supported.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/domain/ledger"
	"github.com/amirasaad/acmebank/pkg/repository"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite" // Sqlite driver based on CGO
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrUnsupportedDriver is returned by Open for an unknown dialect.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Open connects to the database and migrates the two tables.
// driver is "postgres" or "sqlite".
func Open(driver, dsn string, appEnv string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("database dsn is not set")
	}
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(1 * time.Hour)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the customers and ledger_records tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Customer{}, &LedgerRecord{})
}

// UoW provides the transaction boundary and repository access in one abstraction.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn inside one database transaction.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// CustomerRepository returns a repository bound to the current transaction, if any.
func (u *UoW) CustomerRepository() (repository.CustomerRepository, error) {
	return &customerRepository{db: u.session()}, nil
}

// LedgerRepository returns a repository bound to the current transaction, if any.
func (u *UoW) LedgerRepository() (repository.LedgerRepository, error) {
	return &ledgerRepository{db: u.session()}, nil
}

type customerRepository struct {
	db *gorm.DB
}

func (r *customerRepository) List(ctx context.Context) ([]*customer.Customer, error) {
	var rows []Customer
	if err := r.db.WithContext(ctx).Order("account_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*customer.Customer, 0, len(rows))
	for _, m := range rows {
		out = append(out, customerFromModel(m))
	}
	return out, nil
}

// SaveAll upserts every customer and removes rows that are not part of the
// snapshot.
func (r *customerRepository) SaveAll(ctx context.Context, customers []*customer.Customer) error {
	db := r.db.WithContext(ctx)
	if len(customers) == 0 {
		return db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Customer{}).Error
	}
	ids := make([]string, 0, len(customers))
	rows := make([]Customer, 0, len(customers))
	for _, c := range customers {
		ids = append(ids, c.AccountID)
		rows = append(rows, customerToModel(c))
	}
	if err := db.Where("account_id NOT IN ?", ids).Delete(&Customer{}).Error; err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
}

type ledgerRepository struct {
	db *gorm.DB
}

func (r *ledgerRepository) Append(ctx context.Context, rec ledger.Record) error {
	m := recordToModel(rec)
	return r.db.WithContext(ctx).Create(&m).Error
}

// Scan streams rows ordered by tx_id, which is also append order.
func (r *ledgerRepository) Scan(ctx context.Context) iter.Seq2[ledger.Record, error] {
	return func(yield func(ledger.Record, error) bool) {
		db := r.db.WithContext(ctx)
		rows, err := db.Model(&LedgerRecord{}).Order("tx_id").Rows()
		if err != nil {
			yield(ledger.Record{}, err)
			return
		}
		defer rows.Close() //nolint:errcheck
		for rows.Next() {
			var m LedgerRecord
			if err := db.ScanRows(rows, &m); err != nil {
				yield(ledger.Record{}, err)
				return
			}
			if !yield(recordFromModel(m), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(ledger.Record{}, err)
		}
	}
}

var _ repository.UnitOfWork = (*UoW)(nil)
