package customer_test

import (
	"io"
	"strings"
	"testing"

	"github.com/amirasaad/acmebank/pkg/domain/events"
	"github.com/amirasaad/acmebank/pkg/dto"
	"github.com/amirasaad/acmebank/pkg/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

type CustomerTestSuite struct {
	suite.Suite
	env   *testutils.TestEnv
	token string
}

func (s *CustomerTestSuite) SetupTest() {
	s.env = testutils.SetupTestApp(s.T(), nil,
		testutils.SeedCustomer("10001", "Ada", "Lovelace", 50, 20),
		testutils.SeedCustomer("10002", "Alan", "Turing", 300, 0),
		testutils.SeedCustomer("10003", "Grace", "Hopper", 100, 100),
		testutils.SeedCustomer("10004", "Edsger", "Dijkstra", 5, 0),
	)
	s.token = testutils.LoginCustomer(s.T(), s.env.App, "10001", testutils.TestPassword)
}

func TestCustomerTestSuite(t *testing.T) {
	suite.Run(t, new(CustomerTestSuite))
}

func (s *CustomerTestSuite) TestCreateCustomer() {
	s.Run("Create customer successfully", func() {
		body := `{"first_name":"Barbara","last_name":"Liskov","password":"Tr0ub4dor&3x","initial_checking":"100.50","initial_savings":25}`
		resp := testutils.MakeRequestWithApp(s.env.App, fiber.MethodPost, "/customers", body, "")
		s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
		env := testutils.DecodeJSON[testutils.Envelope[dto.CustomerRead]](s.T(), resp)
		s.Equal("10005", env.Data.AccountID)
		s.Equal("100.50", env.Data.Checking.Balance)
		s.Equal("25.00", env.Data.Savings.Balance)
		s.Equal("-100.00", env.Data.Checking.OverdraftLimit)
		s.Equal("125.50", env.Data.Total)

		s.Contains(testutils.PublishedTypes(s.env.Bus), events.EventTypeCustomerCreated.String())
		s.Empty(s.env.Store.Records(), "opening balances are not ledger entries")

		token := testutils.LoginCustomer(s.T(), s.env.App, "10005", "Tr0ub4dor&3x")
		s.NotEmpty(token)
	})

	s.Run("Custom overdraft limit", func() {
		body := `{"first_name":"Ken","last_name":"Thompson","password":"pw","overdraft_limit":"-250"}`
		resp := testutils.MakeRequestWithApp(s.env.App, fiber.MethodPost, "/customers", body, "")
		s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
		env := testutils.DecodeJSON[testutils.Envelope[dto.CustomerRead]](s.T(), resp)
		s.Equal("-250.00", env.Data.Checking.OverdraftLimit)
		s.Equal("0.00", env.Data.Total)
	})

	s.Run("Missing fields", func() {
		resp := testutils.MakeRequestWithApp(s.env.App, fiber.MethodPost, "/customers", `{"first_name":"X"}`, "")
		problem := testutils.DecodeJSON[testutils.Problem](s.T(), resp)
		s.Equal(fiber.StatusBadRequest, problem.Status)
		s.Equal("required", problem.Errors["LastName"])
		s.Equal("required", problem.Errors["Password"])
	})

	s.Run("Bad opening balance", func() {
		body := `{"first_name":"A","last_name":"B","password":"pw","initial_savings":"1.001"}`
		resp := testutils.MakeRequestWithApp(s.env.App, fiber.MethodPost, "/customers", body, "")
		defer resp.Body.Close() //nolint: errcheck
		s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	})
}

func (s *CustomerTestSuite) TestTopCustomers() {
	resp := testutils.MakeRequestWithApp(s.env.App, fiber.MethodGet, "/customers/top", "", "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	env := testutils.DecodeJSON[testutils.Envelope[[]dto.CustomerSummary]](s.T(), resp)
	s.Require().Len(env.Data, 3)
	s.Equal("10002", env.Data[0].AccountID)
	s.Equal("10003", env.Data[1].AccountID)
	s.Equal("10001", env.Data[2].AccountID)
	s.Equal(3, env.Data[2].Rank)

	resp = testutils.MakeRequestWithApp(s.env.App, fiber.MethodGet, "/customers/top?n=10", "", "")
	env = testutils.DecodeJSON[testutils.Envelope[[]dto.CustomerSummary]](s.T(), resp)
	s.Len(env.Data, 4)

	resp = testutils.MakeRequestWithApp(s.env.App, fiber.MethodGet, "/customers/top?n=0", "", "")
	env = testutils.DecodeJSON[testutils.Envelope[[]dto.CustomerSummary]](s.T(), resp)
	s.Empty(env.Data)

	resp = testutils.MakeRequestWithApp(s.env.App, fiber.MethodGet, "/customers/top?n=many", "", "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func (s *CustomerTestSuite) TestMe() {
	resp := testutils.MakeRequestWithApp(s.env.App, fiber.MethodGet, "/me", "", s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	env := testutils.DecodeJSON[testutils.Envelope[dto.CustomerRead]](s.T(), resp)
	s.Equal("10001", env.Data.AccountID)
	s.Equal("Ada", env.Data.FirstName)
	s.Equal("70.00", env.Data.Total)

	resp = testutils.MakeRequestWithApp(s.env.App, fiber.MethodGet, "/me", "", "not-a-token")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
}

func (s *CustomerTestSuite) TestTransactionsAndStatement() {
	resp := testutils.MakeRequestWithApp(s.env.App, fiber.MethodPost, "/transfers",
		`{"from_type":"checking","to_account_id":"10002","to_type":"checking","amount":60}`, s.token)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// A transfer to someone else shows up in the recipient's history too.
	other := testutils.LoginCustomer(s.T(), s.env.App, "10002", testutils.TestPassword)
	resp = testutils.MakeRequestWithApp(s.env.App, fiber.MethodGet, "/me/transactions", "", other)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	env := testutils.DecodeJSON[testutils.Envelope[[]dto.TransactionRead]](s.T(), resp)
	s.Require().Len(env.Data, 1)
	s.Equal("transfer", env.Data[0].Type)
	s.Equal("35.00", env.Data[0].Fee)

	resp = testutils.MakeRequestWithApp(s.env.App, fiber.MethodGet, "/me/transactions", "", testutils.LoginCustomer(s.T(), s.env.App, "10003", testutils.TestPassword))
	env = testutils.DecodeJSON[testutils.Envelope[[]dto.TransactionRead]](s.T(), resp)
	s.Empty(env.Data)

	resp = testutils.MakeRequestWithApp(s.env.App, fiber.MethodGet, "/me/statement", "", s.token)
	defer resp.Body.Close() //nolint: errcheck
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	s.True(strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMETextPlain))
	s.Contains(resp.Header.Get(fiber.HeaderContentDisposition), "statement_10001.txt")
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	text := string(raw)
	s.Contains(text, "Ada Lovelace (10001)")
	s.Contains(text, "1 transaction(s)")
}
