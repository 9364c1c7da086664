package account

import (
	"encoding/json"

	"github.com/amirasaad/acmebank/pkg/dto"
)

// AmountInput is the body of deposit, withdraw and reactivate requests.
// Amounts are accepted as JSON numbers or decimal strings.
type AmountInput struct {
	Amount json.Number `json:"amount" validate:"required,numeric"`
}

// TransferInput represents the request body for a transfer out of the
// caller's account.
type TransferInput struct {
	FromType    string      `json:"from_type" validate:"required,oneof=checking savings"`
	ToAccountID string      `json:"to_account_id" validate:"required,numeric"`
	ToType      string      `json:"to_type" validate:"required,oneof=checking savings"`
	Amount      json.Number `json:"amount" validate:"required,numeric"`
}

// ReactivateResult reports whether the payment reactivated checking.
type ReactivateResult struct {
	Reactivated bool            `json:"reactivated"`
	Checking    dto.AccountRead `json:"checking"`
}
