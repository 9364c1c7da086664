package dto

import "time"

// TransactionRead is the read model of a ledger record.
type TransactionRead struct {
	TxID             int64     `json:"tx_id"`
	Timestamp        time.Time `json:"timestamp"`
	Type             string    `json:"type"`
	FromAccountID    string    `json:"from_account_id,omitempty"`
	FromAccountType  string    `json:"from_account_type,omitempty"`
	ToAccountID      string    `json:"to_account_id,omitempty"`
	ToAccountType    string    `json:"to_account_type,omitempty"`
	Amount           string    `json:"amount"`
	Fee              string    `json:"fee"`
	ResultingBalance string    `json:"resulting_balance"`
}
