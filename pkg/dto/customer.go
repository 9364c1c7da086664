package dto

// CustomerRead is a read-optimized view of a customer for API responses.
// The password hash is never part of it.
type CustomerRead struct {
	AccountID string      `json:"account_id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Checking  AccountRead `json:"checking"`
	Savings   AccountRead `json:"savings"`
	Total     string      `json:"total"`
}

// CustomerSummary is one row of the top customers ranking.
type CustomerSummary struct {
	Rank      int    `json:"rank"`
	AccountID string `json:"account_id"`
	FullName  string `json:"full_name"`
	Total     string `json:"total"`
}
