package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/service"
	"github.com/dafibh/sentinel/sentinel-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type budgetFixture struct {
	handler      *BudgetHandler
	service      *service.BudgetService
	budgetRepo   *testutil.MockBudgetRepository
	categoryRepo *testutil.MockCategoryRepository
	expenseRepo  *testutil.MockExpenseRepository
	userID       uuid.UUID
	category     *domain.Category
}

func newBudgetFixture() *budgetFixture {
	f := &budgetFixture{
		budgetRepo:   testutil.NewMockBudgetRepository(),
		categoryRepo: testutil.NewMockCategoryRepository(),
		expenseRepo:  testutil.NewMockExpenseRepository(),
		userID:       uuid.New(),
	}
	f.category = &domain.Category{UserID: &f.userID, Name: "Groceries", Type: domain.CategoryTypeExpense}
	f.categoryRepo.AddCategory(f.category)
	f.service = service.NewBudgetService(f.budgetRepo, f.categoryRepo, f.expenseRepo)
	f.handler = NewBudgetHandler(f.service)
	return f
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateBudget(t *testing.T) {
	e := echo.New()
	f := newBudgetFixture()

	body := `{"categoryId":1,"limitAmount":"500","startDate":"2026-03-01","endDate":"2026-03-31"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/budgets", body)
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.CreateBudget(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var response BudgetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Groceries", response.CategoryName)
	assert.Equal(t, "500.00", response.LimitAmount)
	assert.Equal(t, "2026-03-01", response.StartDate)
	assert.Equal(t, "2026-03-31", response.EndDate)
}

func TestCreateBudget_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"end before start", `{"categoryId":1,"limitAmount":"500","startDate":"2026-03-31","endDate":"2026-03-01"}`, http.StatusBadRequest},
		{"negative limit", `{"categoryId":1,"limitAmount":"-1","startDate":"2026-03-01","endDate":"2026-03-31"}`, http.StatusBadRequest},
		{"bad date", `{"categoryId":1,"limitAmount":"500","startDate":"03/01/2026","endDate":"2026-03-31"}`, http.StatusBadRequest},
		{"missing category", `{"limitAmount":"500","startDate":"2026-03-01","endDate":"2026-03-31"}`, http.StatusBadRequest},
		{"unknown category", `{"categoryId":99,"limitAmount":"500","startDate":"2026-03-01","endDate":"2026-03-31"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			f := newBudgetFixture()

			c, rec := newJSONContext(e, http.MethodPost, "/api/v1/budgets", tt.body)
			setupUserContext(c, f.userID)

			require.NoError(t, f.handler.CreateBudget(c))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestGetCurrentMonthBudgets(t *testing.T) {
	e := echo.New()
	f := newBudgetFixture()
	f.service.SetClock(func() time.Time { return date(2026, 3, 15) })

	f.budgetRepo.AddBudget(&domain.Budget{UserID: f.userID, CategoryID: f.category.ID, CategoryName: "Groceries",
		LimitAmount: decimal.NewFromInt(100), StartDate: date(2026, 3, 1), EndDate: date(2026, 3, 31)})
	f.budgetRepo.AddBudget(&domain.Budget{UserID: f.userID, CategoryID: f.category.ID, CategoryName: "Groceries",
		LimitAmount: decimal.NewFromInt(100), StartDate: date(2026, 4, 1), EndDate: date(2026, 4, 30)})

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/budgets/current-month", "")
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.GetCurrentMonthBudgets(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response []BudgetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, "2026-03-01", response[0].StartDate)

	c, rec = newJSONContext(e, http.MethodGet, "/api/v1/budgets/current-month?year=2026&month=4", "")
	setupUserContext(c, f.userID)
	require.NoError(t, f.handler.GetCurrentMonthBudgets(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, "2026-04-01", response[0].StartDate)
}

func TestGetCurrentMonthBudgets_InvalidMonth(t *testing.T) {
	e := echo.New()
	f := newBudgetFixture()

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/budgets/current-month?year=2026&month=13", "")
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.GetCurrentMonthBudgets(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetExceededBudgets(t *testing.T) {
	e := echo.New()
	f := newBudgetFixture()
	categoryID := f.category.ID

	f.budgetRepo.AddBudget(&domain.Budget{UserID: f.userID, CategoryID: categoryID, CategoryName: "Groceries",
		LimitAmount: decimal.NewFromInt(100), StartDate: date(2026, 3, 1), EndDate: date(2026, 3, 31)})
	f.budgetRepo.AddBudget(&domain.Budget{UserID: f.userID, CategoryID: categoryID, CategoryName: "Groceries",
		LimitAmount: decimal.NewFromInt(1000), StartDate: date(2026, 4, 1), EndDate: date(2026, 4, 30)})
	f.expenseRepo.AddExpense(&domain.Expense{UserID: f.userID, CategoryID: &categoryID,
		Amount: decimal.NewFromInt(150), Date: date(2026, 3, 10)})

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/budgets/exceeded", "")
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.GetExceededBudgets(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response []BudgetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, "100.00", response[0].LimitAmount)
}

func TestDeleteBudget_NotFound(t *testing.T) {
	e := echo.New()
	f := newBudgetFixture()

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/budgets/42", "")
	c.SetParamNames("id")
	c.SetParamValues("42")
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.DeleteBudget(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBudget_InvalidID(t *testing.T) {
	e := echo.New()
	f := newBudgetFixture()

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/budgets/abc", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.GetBudget(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
