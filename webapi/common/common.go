// Package common holds the response envelope, RFC 9457 problem details and
// request binding shared by the HTTP handlers.
package common

import (
	"errors"

	"github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/domain/customer"
	"github.com/amirasaad/acmebank/pkg/money"
	"github.com/amirasaad/acmebank/pkg/repository"
	authsvc "github.com/amirasaad/acmebank/pkg/service/auth"
	"github.com/amirasaad/acmebank/pkg/service/bank"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ProblemDetailsJSON writes a problem response. The optional args are a
// string detail and an int status; without a status it is derived from err.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, args ...any) error {
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   fiber.StatusInternalServerError,
		Instance: c.OriginalURL(),
	}
	if err != nil {
		pd.Status = ErrorToStatusCode(err)
		pd.Detail = err.Error()
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			pd.Detail = v
		case int:
			pd.Status = v
		case validator.ValidationErrors:
			pd.Errors = fieldErrors(v)
		}
	}
	return c.Status(pd.Status).JSON(pd, "application/problem+json")
}

// SuccessResponseJSON writes the standard success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Status: status, Message: message, Data: data})
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, customer.ErrCustomerNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, authsvc.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, account.ErrInvalidAmount),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, account.ErrInvalidAccountType),
		errors.Is(err, account.ErrAmountExceedsMaxSafeInt),
		errors.Is(err, money.ErrOverflow),
		errors.Is(err, customer.ErrPasswordRequired),
		errors.Is(err, bank.ErrSameAccount):
		return fiber.StatusBadRequest
	case errors.Is(err, account.ErrInsufficientFunds),
		errors.Is(err, account.ErrOverdraftLimitExceeded),
		errors.Is(err, account.ErrAccountDeactivated):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrLedgerUnavailable),
		errors.Is(err, repository.ErrPersistenceUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body and validates it using
// go-playground/validator. On failure the problem response is already
// written and the returned pointer is nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body", nil, err.Error(), fiber.StatusBadRequest)
	}
	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, ProblemDetailsJSON(c, "Validation failed", nil, "request body failed validation", fiber.StatusBadRequest, verrs)
		}
		return nil, ProblemDetailsJSON(c, "Validation failed", nil, err.Error(), fiber.StatusBadRequest)
	}
	return &input, nil
}

func fieldErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// CurrentAccountID reads the account id from the verified token in the
// request locals. On failure the problem response is already written.
func CurrentAccountID(c *fiber.Ctx, authSvc *authsvc.Service) (string, bool, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return "", false, ProblemDetailsJSON(c, "Unauthorized", nil, "missing user context", fiber.StatusUnauthorized)
	}
	id, err := authSvc.GetCurrentAccountID(token)
	if err != nil {
		return "", false, ProblemDetailsJSON(c, "Unauthorized", err)
	}
	return id, true, nil
}

// ParseAmount parses a decimal amount from a request body field. On
// failure the problem response is already written.
func ParseAmount(c *fiber.Ctx, raw string) (money.Amount, bool, error) {
	amount, err := money.Parse(raw)
	if err != nil {
		return 0, false, ProblemDetailsJSON(c, "Invalid amount", err, fiber.StatusBadRequest)
	}
	return amount, true, nil
}
