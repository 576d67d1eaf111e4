package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/service"
	"github.com/dafibh/sentinel/sentinel-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transactionFixture struct {
	handler      *TransactionHandler
	incomeRepo   *testutil.MockIncomeRepository
	expenseRepo  *testutil.MockExpenseRepository
	categoryRepo *testutil.MockCategoryRepository
	publisher    *recordingPublisher
	userID       uuid.UUID
	salary       *domain.Category
	groceries    *domain.Category
}

func newTransactionFixture(balanceCheck bool) *transactionFixture {
	f := &transactionFixture{
		incomeRepo:   testutil.NewMockIncomeRepository(),
		expenseRepo:  testutil.NewMockExpenseRepository(),
		categoryRepo: testutil.NewMockCategoryRepository(),
		publisher:    &recordingPublisher{},
		userID:       uuid.New(),
	}
	f.salary = &domain.Category{UserID: &f.userID, Name: "Salary", Type: domain.CategoryTypeIncome}
	f.groceries = &domain.Category{UserID: &f.userID, Name: "Groceries", Type: domain.CategoryTypeExpense}
	f.categoryRepo.AddCategory(f.salary)
	f.categoryRepo.AddCategory(f.groceries)

	transactionService := service.NewTransactionService(f.incomeRepo, f.expenseRepo, f.categoryRepo, balanceCheck)
	f.handler = NewTransactionHandler(transactionService, f.publisher)
	return f
}

func TestCreateIncome(t *testing.T) {
	e := echo.New()
	f := newTransactionFixture(false)

	body := `{"categoryId":1,"amount":"2500.5","date":"2026-03-01","description":"March salary"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/incomes", body)
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.CreateIncome(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var response IncomeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "2500.50", response.Amount)
	assert.Equal(t, "2026-03-01", response.Date)
	require.NotNil(t, response.CategoryName)
	assert.Equal(t, "Salary", *response.CategoryName)
	assert.Equal(t, []string{"income.created"}, f.publisher.types())
}

func TestCreateIncome_WrongCategoryType(t *testing.T) {
	e := echo.New()
	f := newTransactionFixture(false)

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/incomes", `{"categoryId":2,"amount":"10"}`)
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.CreateIncome(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.publisher.types())
}

func TestCreateIncome_NonPositiveAmount(t *testing.T) {
	for _, amount := range []string{"0", "-10", "abc"} {
		t.Run(amount, func(t *testing.T) {
			e := echo.New()
			f := newTransactionFixture(false)

			c, rec := newJSONContext(e, http.MethodPost, "/api/v1/incomes", `{"amount":"`+amount+`"}`)
			setupUserContext(c, f.userID)

			require.NoError(t, f.handler.CreateIncome(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateExpense_DefaultsCurrency(t *testing.T) {
	e := echo.New()
	f := newTransactionFixture(false)

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/expenses", `{"categoryId":2,"amount":"42","date":"2026-03-02"}`)
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.CreateExpense(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var response ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "42.00", response.Amount)
	assert.Equal(t, domain.DefaultBaseCurrency, response.Currency)
	assert.Equal(t, "1.000000", response.ExchangeRate)
	assert.Nil(t, response.OriginalAmount)
	assert.Equal(t, []string{"expense.created"}, f.publisher.types())
}

func TestCreateExpense_ForeignCurrency(t *testing.T) {
	e := echo.New()
	f := newTransactionFixture(false)

	body := `{"amount":"54.25","currency":"eur","originalAmount":"50","exchangeRate":"1.085"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/expenses", body)
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.CreateExpense(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var response ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "EUR", response.Currency)
	require.NotNil(t, response.OriginalAmount)
	assert.Equal(t, "50.00", *response.OriginalAmount)
	assert.Equal(t, "1.085000", response.ExchangeRate)
}

func TestCreateExpense_InvalidCurrency(t *testing.T) {
	e := echo.New()
	f := newTransactionFixture(false)

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/expenses", `{"amount":"5","currency":"EURO"}`)
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.CreateExpense(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateExpense_BalanceCheck(t *testing.T) {
	e := echo.New()
	f := newTransactionFixture(true)
	f.incomeRepo.AddIncome(&domain.Income{UserID: f.userID, Amount: decimal.NewFromInt(100), Date: date(2026, 3, 1)})

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/expenses", `{"amount":"150"}`)
	setupUserContext(c, f.userID)
	require.NoError(t, f.handler.CreateExpense(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newJSONContext(e, http.MethodPost, "/api/v1/expenses", `{"amount":"100"}`)
	setupUserContext(c, f.userID)
	require.NoError(t, f.handler.CreateExpense(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUpdateExpense(t *testing.T) {
	e := echo.New()
	f := newTransactionFixture(false)
	f.expenseRepo.AddExpense(&domain.Expense{ID: 4, UserID: f.userID, Amount: decimal.NewFromInt(10), Date: date(2026, 3, 1)})

	c, rec := newJSONContext(e, http.MethodPut, "/api/v1/expenses/4", `{"categoryId":2,"amount":"12.5","date":"2026-03-03"}`)
	c.SetParamNames("id")
	c.SetParamValues("4")
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.UpdateExpense(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "12.50", response.Amount)
	assert.Equal(t, "2026-03-03", response.Date)
	assert.Equal(t, []string{"expense.updated"}, f.publisher.types())
}

func TestDeleteIncome(t *testing.T) {
	e := echo.New()
	f := newTransactionFixture(false)
	f.incomeRepo.AddIncome(&domain.Income{ID: 3, UserID: f.userID, Amount: decimal.NewFromInt(10), Date: date(2026, 3, 1)})

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/incomes/3", "")
	c.SetParamNames("id")
	c.SetParamValues("3")
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.DeleteIncome(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"income.deleted"}, f.publisher.types())
}

func TestGetExpense_OtherUser(t *testing.T) {
	e := echo.New()
	f := newTransactionFixture(false)
	f.expenseRepo.AddExpense(&domain.Expense{ID: 8, UserID: uuid.New(), Amount: decimal.NewFromInt(10), Date: date(2026, 3, 1)})

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/expenses/8", "")
	c.SetParamNames("id")
	c.SetParamValues("8")
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.GetExpense(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetIncomes_NoAuth(t *testing.T) {
	e := echo.New()
	f := newTransactionFixture(false)

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/incomes", "")
	require.NoError(t, f.handler.GetIncomes(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
