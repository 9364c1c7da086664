package auth

// LoginInput represents the request body for customer authentication.
type LoginInput struct {
	AccountID string `json:"account_id" validate:"required,numeric"`
	Password  string `json:"password" validate:"required"`
}
