package customer

import (
	"bytes"
	"log/slog"
	"strconv"

	"github.com/amirasaad/acmebank/pkg/config"
	"github.com/amirasaad/acmebank/pkg/mapper"
	"github.com/amirasaad/acmebank/pkg/middleware"
	"github.com/amirasaad/acmebank/pkg/money"
	authsvc "github.com/amirasaad/acmebank/pkg/service/auth"
	"github.com/amirasaad/acmebank/pkg/service/bank"
	"github.com/amirasaad/acmebank/pkg/statement"
	"github.com/amirasaad/acmebank/webapi/common"
	"github.com/gofiber/fiber/v2"
)

const defaultTopN = 3

// Routes registers customer endpoints.
//
// Routes:
//   - POST /customers         : Open a customer with checking and savings.
//   - GET  /customers/top     : Richest customers by total balance.
//   - GET  /me                : The authenticated customer.
//   - GET  /me/transactions   : Ledger records touching the caller's account.
//   - GET  /me/statement      : Plain-text statement.
func Routes(app *fiber.App, bankSvc *bank.Service, authSvc *authsvc.Service, jwtCfg *config.Jwt) {
	protected := middleware.JwtProtected(jwtCfg)
	app.Post("/customers", CreateCustomer(bankSvc))
	app.Get("/customers/top", TopCustomers(bankSvc))
	app.Get("/me", protected, GetMe(bankSvc, authSvc))
	app.Get("/me/transactions", protected, GetTransactions(bankSvc, authSvc))
	app.Get("/me/statement", protected, GetStatement(bankSvc, authSvc))
}

// optionalAmount parses an omitted body field as zero.
func optionalAmount(c *fiber.Ctx, raw string) (money.Amount, bool, error) {
	if raw == "" {
		return 0, true, nil
	}
	return common.ParseAmount(c, raw)
}

// CreateCustomer returns a Fiber handler for opening a customer.
// @Summary Open a customer
// @Tags customers
// @Accept json
// @Produce json
// @Param request body CreateCustomerInput true "Customer"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /customers [post]
func CreateCustomer(bankSvc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateCustomerInput](c)
		if input == nil {
			return err
		}
		checking, ok, err := optionalAmount(c, input.InitialChecking.String())
		if !ok {
			return err
		}
		savings, ok, err := optionalAmount(c, input.InitialSavings.String())
		if !ok {
			return err
		}
		req := bank.NewCustomer{
			FirstName:       input.FirstName,
			LastName:        input.LastName,
			Password:        input.Password,
			InitialChecking: checking,
			InitialSavings:  savings,
		}
		if input.OverdraftLimit != "" {
			limit, ok, err := common.ParseAmount(c, input.OverdraftLimit.String())
			if !ok {
				return err
			}
			req.OverdraftLimit = &limit
		}

		cust, err := bankSvc.AddCustomer(c.UserContext(), req)
		if err != nil {
			slog.Debug("Create customer failed", "error", err)
			return common.ProblemDetailsJSON(c, "Failed to open customer", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Customer created", mapper.MapCustomerToRead(cust))
	}
}

// TopCustomers returns a Fiber handler listing the n richest customers.
// @Summary Top customers
// @Tags customers
// @Produce json
// @Param n query int false "How many (default 3)"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /customers/top [get]
func TopCustomers(bankSvc *bank.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n := defaultTopN
		if raw := c.Query("n"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return common.ProblemDetailsJSON(c, "Invalid query", nil, "n must be an integer", fiber.StatusBadRequest)
			}
			n = v
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Top customers", mapper.MapRanking(bankSvc.TopN(n)))
	}
}

// GetMe returns the caller's customer record with both balances.
// @Summary Current customer
// @Tags customers
// @Produce json
// @Success 200 {object} common.Response
// @Failure 401 {object} common.ProblemDetails
// @Router /me [get]
// @Security Bearer
func GetMe(bankSvc *bank.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.CurrentAccountID(c, authSvc)
		if !ok {
			return err
		}
		cust, err := bankSvc.Customer(id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to load customer", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Customer", mapper.MapCustomerToRead(cust))
	}
}

// GetTransactions returns the caller's ledger records in transaction order.
// @Summary Transaction history
// @Tags customers
// @Produce json
// @Success 200 {object} common.Response
// @Failure 503 {object} common.ProblemDetails
// @Router /me/transactions [get]
// @Security Bearer
func GetTransactions(bankSvc *bank.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.CurrentAccountID(c, authSvc)
		if !ok {
			return err
		}
		records, err := bankSvc.History(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", mapper.MapRecordsToRead(records))
	}
}

// GetStatement renders the caller's statement as text/plain, offered as a
// download named after the account.
// @Summary Account statement
// @Tags customers
// @Produce plain
// @Success 200 {string} string
// @Failure 503 {object} common.ProblemDetails
// @Router /me/statement [get]
// @Security Bearer
func GetStatement(bankSvc *bank.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.CurrentAccountID(c, authSvc)
		if !ok {
			return err
		}
		var buf bytes.Buffer
		if err := statement.Write(c.UserContext(), &buf, bankSvc, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to export statement", err)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+statement.Filename(id)+`"`)
		return c.Status(fiber.StatusOK).Send(buf.Bytes())
	}
}
