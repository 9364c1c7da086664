package customer

import "encoding/json"

// CreateCustomerInput represents the request body for opening a customer.
// Opening balances default to zero and the overdraft limit to the bank's.
type CreateCustomerInput struct {
	FirstName       string      `json:"first_name" validate:"required,max=64"`
	LastName        string      `json:"last_name" validate:"required,max=64"`
	Password        string      `json:"password" validate:"required,max=72"`
	InitialChecking json.Number `json:"initial_checking" validate:"omitempty,numeric"`
	InitialSavings  json.Number `json:"initial_savings" validate:"omitempty,numeric"`
	OverdraftLimit  json.Number `json:"overdraft_limit" validate:"omitempty,numeric"`
}
