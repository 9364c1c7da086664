package account

import (
	"log/slog"

	"github.com/amirasaad/acmebank/pkg/config"
	accountdomain "github.com/amirasaad/acmebank/pkg/domain/account"
	"github.com/amirasaad/acmebank/pkg/mapper"
	"github.com/amirasaad/acmebank/pkg/middleware"
	authsvc "github.com/amirasaad/acmebank/pkg/service/auth"
	"github.com/amirasaad/acmebank/pkg/service/bank"
	"github.com/amirasaad/acmebank/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the money-moving endpoints. All of them act on the
// account of the authenticated customer.
//
// Routes:
//   - POST /accounts/:type/deposit        : Deposit into checking or savings.
//   - POST /accounts/:type/withdraw       : Withdraw from checking or savings.
//   - POST /accounts/checking/reactivate  : Pay toward checking and reactivate it.
//   - POST /transfers                     : Transfer to any sub-account.
func Routes(app *fiber.App, bankSvc *bank.Service, authSvc *authsvc.Service, jwtCfg *config.Jwt) {
	protected := middleware.JwtProtected(jwtCfg)
	app.Post("/accounts/checking/reactivate", protected, Reactivate(bankSvc, authSvc))
	app.Post("/accounts/:type/deposit", protected, Deposit(bankSvc, authSvc))
	app.Post("/accounts/:type/withdraw", protected, Withdraw(bankSvc, authSvc))
	app.Post("/transfers", protected, Transfer(bankSvc, authSvc))
}

func kindParam(c *fiber.Ctx) (accountdomain.Kind, bool, error) {
	kind, err := accountdomain.ParseKind(c.Params("type"))
	if err != nil {
		return "", false, common.ProblemDetailsJSON(c, "Invalid account type", err)
	}
	return kind, true, nil
}

// Deposit returns a Fiber handler for depositing into one of the caller's
// sub-accounts.
// @Summary Deposit funds
// @Tags accounts
// @Accept json
// @Produce json
// @Param type path string true "checking or savings"
// @Param request body AmountInput true "Deposit amount"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Router /accounts/{type}/deposit [post]
// @Security Bearer
func Deposit(bankSvc *bank.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.CurrentAccountID(c, authSvc)
		if !ok {
			return err
		}
		kind, ok, err := kindParam(c)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[AmountInput](c)
		if input == nil {
			return err
		}
		amount, ok, err := common.ParseAmount(c, input.Amount.String())
		if !ok {
			return err
		}
		rec, err := bankSvc.Deposit(c.UserContext(), id, kind, amount)
		if err != nil {
			slog.Debug("Deposit failed", "account_id", id, "error", err)
			return common.ProblemDetailsJSON(c, "Failed to deposit", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Deposit successful", mapper.MapRecordToRead(rec))
	}
}

// Withdraw returns a Fiber handler for withdrawing from one of the caller's
// sub-accounts. Overdraft fees show up in the returned transaction.
// @Summary Withdraw funds
// @Tags accounts
// @Accept json
// @Produce json
// @Param type path string true "checking or savings"
// @Param request body AmountInput true "Withdrawal amount"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /accounts/{type}/withdraw [post]
// @Security Bearer
func Withdraw(bankSvc *bank.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.CurrentAccountID(c, authSvc)
		if !ok {
			return err
		}
		kind, ok, err := kindParam(c)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[AmountInput](c)
		if input == nil {
			return err
		}
		amount, ok, err := common.ParseAmount(c, input.Amount.String())
		if !ok {
			return err
		}
		rec, err := bankSvc.Withdraw(c.UserContext(), id, kind, amount)
		if err != nil {
			slog.Debug("Withdraw failed", "account_id", id, "error", err)
			return common.ProblemDetailsJSON(c, "Failed to withdraw", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Withdrawal successful", mapper.MapRecordToRead(rec))
	}
}

// Transfer returns a Fiber handler for moving money from the caller's
// account to any sub-account, including the caller's other one.
// @Summary Transfer funds
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body TransferInput true "Transfer request"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /transfers [post]
// @Security Bearer
func Transfer(bankSvc *bank.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.CurrentAccountID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[TransferInput](c)
		if input == nil {
			return err
		}
		amount, ok, err := common.ParseAmount(c, input.Amount.String())
		if !ok {
			return err
		}
		rec, err := bankSvc.Transfer(c.UserContext(),
			id, accountdomain.Kind(input.FromType),
			input.ToAccountID, accountdomain.Kind(input.ToType),
			amount,
		)
		if err != nil {
			slog.Debug("Transfer failed", "account_id", id, "error", err)
			return common.ProblemDetailsJSON(c, "Failed to transfer", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer successful", mapper.MapRecordToRead(rec))
	}
}

// Reactivate returns a Fiber handler that applies a payment to checking. The
// payment is kept even when it is not enough to reactivate the account.
// @Summary Reactivate checking
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body AmountInput true "Payment"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /accounts/checking/reactivate [post]
// @Security Bearer
func Reactivate(bankSvc *bank.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := common.CurrentAccountID(c, authSvc)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[AmountInput](c)
		if input == nil {
			return err
		}
		amount, ok, err := common.ParseAmount(c, input.Amount.String())
		if !ok {
			return err
		}
		checking, reactivated, err := bankSvc.Reactivate(c.UserContext(), id, amount)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to reactivate", err)
		}
		msg := "Checking account reactivated"
		if !reactivated {
			msg = "Payment applied; balance still below zero"
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, msg, ReactivateResult{
			Reactivated: reactivated,
			Checking:    mapper.MapAccountToRead(checking),
		})
	}
}
