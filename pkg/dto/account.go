package dto

// AccountRead is the read model of one sub-account. Amounts are decimal
// strings with two places so clients never see float rounding.
type AccountRead struct {
	Type           string `json:"type"`
	Balance        string `json:"balance"`
	Currency       string `json:"currency"`
	Status         string `json:"status"`
	OverdraftCount int    `json:"overdraft_count,omitempty"`
	OverdraftLimit string `json:"overdraft_limit,omitempty"`
}
