// Package mapper converts domain values into the dto read models.
package mapper

import (
	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/domain/ledger"
	"github.com/amirasaad/acmebank/pkg/dto"
)

// MapAccountToRead maps a sub-account. Savings carry no overdraft fields.
func MapAccountToRead(a account.Account) dto.AccountRead {
	read := dto.AccountRead{
		Type:     a.Kind.String(),
		Balance:  a.Balance.String(),
		Currency: a.Currency,
		Status:   a.Status(),
	}
	if a.Kind == account.Checking {
		read.OverdraftCount = a.OverdraftCount
		read.OverdraftLimit = a.OverdraftLimit.String()
	}
	return read
}

// MapCustomerToRead maps a customer without its password.
func MapCustomerToRead(c customer.Customer) dto.CustomerRead {
	return dto.CustomerRead{
		AccountID: c.AccountID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Checking:  MapAccountToRead(c.Checking),
		Savings:   MapAccountToRead(c.Savings),
		Total:     c.Total().String(),
	}
}

// MapRanking maps TopN output, ranks starting at 1.
func MapRanking(customers []customer.Customer) []dto.CustomerSummary {
	out := make([]dto.CustomerSummary, 0, len(customers))
	for i, c := range customers {
		out = append(out, dto.CustomerSummary{
			Rank:      i + 1,
			AccountID: c.AccountID,
			FullName:  c.FullName(),
			Total:     c.Total().String(),
		})
	}
	return out
}

// MapRecordToRead maps a ledger record.
func MapRecordToRead(rec ledger.Record) dto.TransactionRead {
	return dto.TransactionRead{
		TxID:             rec.TxID,
		Timestamp:        rec.Timestamp,
		Type:             string(rec.Type),
		FromAccountID:    rec.FromAccountID,
		FromAccountType:  string(rec.FromAccountType),
		ToAccountID:      rec.ToAccountID,
		ToAccountType:    string(rec.ToAccountType),
		Amount:           rec.Amount.String(),
		Fee:              rec.Fee.String(),
		ResultingBalance: rec.ResultingBalance.String(),
	}
}

// MapRecordsToRead maps a history, oldest first.
func MapRecordsToRead(records []ledger.Record) []dto.TransactionRead {
	out := make([]dto.TransactionRead, 0, len(records))
	for _, rec := range records {
		out = append(out, MapRecordToRead(rec))
	}
	return out
}
