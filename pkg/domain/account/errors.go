package account

import "errors"

var (
	// ErrInvalidAmount is returned when a deposit, withdrawal or payment amount is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidAccountType is returned when an account type is neither checking nor savings.
	ErrInvalidAccountType = errors.New("invalid account type")

	// ErrInsufficientFunds is returned when a savings withdrawal exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountDeactivated is returned when withdrawing from a deactivated checking account.
	ErrAccountDeactivated = errors.New("account is deactivated")

	// ErrOverdraftLimitExceeded is returned when a checking withdrawal plus the
	// overdraft fee would take the balance below the overdraft limit.
	ErrOverdraftLimitExceeded = errors.New("overdraft limit exceeded")

	// ErrAmountExceedsMaxSafeInt is returned when a balance change would overflow.
	ErrAmountExceedsMaxSafeInt = errors.New("amount exceeds maximum safe integer value")
)
