package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/service"
	"github.com/dafibh/sentinel/sentinel-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateCategory(t *testing.T) {
	e := echo.New()
	categoryRepo := testutil.NewMockCategoryRepository()
	handler := NewCategoryHandler(service.NewCategoryService(categoryRepo))
	userID := uuid.New()

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/categories", `{"name":"  Pets ","type":"Expense","icon":"paw"}`)
	setupUserContext(c, userID)

	require.NoError(t, handler.CreateCategory(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var response CategoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Pets", response.Name)
	assert.Equal(t, "expense", response.Type)
	assert.False(t, response.IsDefault)
}

func TestCreateCategory_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing name", `{"name":"","type":"expense"}`, http.StatusBadRequest},
		{"bad type", `{"name":"Pets","type":"transfer"}`, http.StatusBadRequest},
		{"malformed body", `{"name":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			handler := NewCategoryHandler(service.NewCategoryService(testutil.NewMockCategoryRepository()))

			c, rec := newJSONContext(e, http.MethodPost, "/api/v1/categories", tt.body)
			setupUserContext(c, uuid.New())

			require.NoError(t, handler.CreateCategory(c))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCreateCategory_Duplicate(t *testing.T) {
	e := echo.New()
	categoryRepo := testutil.NewMockCategoryRepository()
	handler := NewCategoryHandler(service.NewCategoryService(categoryRepo))
	userID := uuid.New()
	categoryRepo.AddCategory(&domain.Category{UserID: &userID, Name: "Pets", Type: domain.CategoryTypeExpense})

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/categories", `{"name":"pets","type":"expense"}`)
	setupUserContext(c, userID)

	require.NoError(t, handler.CreateCategory(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetCategories_Filters(t *testing.T) {
	e := echo.New()
	categoryRepo := testutil.NewMockCategoryRepository()
	handler := NewCategoryHandler(service.NewCategoryService(categoryRepo))
	userID := uuid.New()
	otherID := uuid.New()

	categoryRepo.AddCategory(&domain.Category{Name: "General", Type: domain.CategoryTypeExpense, IsDefault: true})
	categoryRepo.AddCategory(&domain.Category{UserID: &userID, Name: "Salary", Type: domain.CategoryTypeIncome})
	categoryRepo.AddCategory(&domain.Category{UserID: &userID, Name: "Groceries", Type: domain.CategoryTypeExpense})
	categoryRepo.AddCategory(&domain.Category{UserID: &otherID, Name: "Hidden", Type: domain.CategoryTypeExpense})

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/categories?type=expense", "")
	setupUserContext(c, userID)

	require.NoError(t, handler.GetCategories(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response []CategoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	names := make([]string, len(response))
	for i, r := range response {
		names[i] = r.Name
	}
	assert.ElementsMatch(t, []string{"General", "Groceries"}, names)
}

func TestGetCategories_InvalidIsDefault(t *testing.T) {
	e := echo.New()
	handler := NewCategoryHandler(service.NewCategoryService(testutil.NewMockCategoryRepository()))

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/categories?is_default=maybe", "")
	setupUserContext(c, uuid.New())

	require.NoError(t, handler.GetCategories(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCategory_OtherUser(t *testing.T) {
	e := echo.New()
	categoryRepo := testutil.NewMockCategoryRepository()
	handler := NewCategoryHandler(service.NewCategoryService(categoryRepo))
	owner := uuid.New()
	categoryRepo.AddCategory(&domain.Category{ID: 7, UserID: &owner, Name: "Private", Type: domain.CategoryTypeExpense})

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/categories/7", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	setupUserContext(c, uuid.New())

	require.NoError(t, handler.GetCategory(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateCategory_SystemDefaultIsReadOnly(t *testing.T) {
	e := echo.New()
	categoryRepo := testutil.NewMockCategoryRepository()
	handler := NewCategoryHandler(service.NewCategoryService(categoryRepo))
	categoryRepo.AddCategory(&domain.Category{ID: 1, Name: "General", Type: domain.CategoryTypeExpense, IsDefault: true})

	c, rec := newJSONContext(e, http.MethodPut, "/api/v1/categories/1", `{"name":"Renamed","type":"expense"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupUserContext(c, uuid.New())

	require.NoError(t, handler.UpdateCategory(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCategory(t *testing.T) {
	e := echo.New()
	categoryRepo := testutil.NewMockCategoryRepository()
	handler := NewCategoryHandler(service.NewCategoryService(categoryRepo))
	userID := uuid.New()
	categoryRepo.AddCategory(&domain.Category{ID: 3, UserID: &userID, Name: "Pets", Type: domain.CategoryTypeExpense})

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/categories/3", "")
	c.SetParamNames("id")
	c.SetParamValues("3")
	setupUserContext(c, userID)

	require.NoError(t, handler.DeleteCategory(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err := categoryRepo.GetByID(c.Request().Context(), userID, 3)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCategoryHandlers_NoAuth(t *testing.T) {
	e := echo.New()
	handler := NewCategoryHandler(service.NewCategoryService(testutil.NewMockCategoryRepository()))

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/categories", "")
	require.NoError(t, handler.GetCategories(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
