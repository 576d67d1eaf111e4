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
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type alertFixture struct {
	handler     *AlertHandler
	check       *service.AlertCheckService
	userRepo    *testutil.MockUserRepository
	budgetRepo  *testutil.MockBudgetRepository
	expenseRepo *testutil.MockExpenseRepository
	alertRepo   *testutil.MockAlertRepository
	publisher   *recordingPublisher
	userID      uuid.UUID
}

func newAlertFixture() *alertFixture {
	f := &alertFixture{
		userRepo:    testutil.NewMockUserRepository(),
		budgetRepo:  testutil.NewMockBudgetRepository(),
		expenseRepo: testutil.NewMockExpenseRepository(),
		alertRepo:   testutil.NewMockAlertRepository(),
		publisher:   &recordingPublisher{},
		userID:      uuid.New(),
	}
	f.userRepo.AddUser(&domain.User{ID: f.userID, Auth0ID: "auth0|alerts", Email: "alerts@example.com"})

	f.check = service.NewAlertCheckService(f.userRepo, f.budgetRepo, testutil.NewMockGoalRepository(),
		f.expenseRepo, f.alertRepo, zerolog.Nop(), 1)
	f.handler = NewAlertHandler(service.NewAlertService(f.alertRepo), f.check, f.publisher)
	return f
}

func (f *alertFixture) addAlert(id int32, alertType domain.AlertType, read bool) {
	f.alertRepo.AddAlert(&domain.Alert{
		ID:             id,
		UserID:         f.userID,
		Title:          "Budget Exceeded",
		Message:        "Over the limit",
		AlertType:      alertType,
		RelatedSubject: "Groceries",
		IsRead:         read,
		CreatedOn:      date(2026, 3, int(id)),
		CreatedAt:      date(2026, 3, int(id)),
	})
}

func TestGetAlerts_Filters(t *testing.T) {
	e := echo.New()
	f := newAlertFixture()
	f.addAlert(1, domain.AlertTypeDanger, false)
	f.addAlert(2, domain.AlertTypeTip, false)
	f.addAlert(3, domain.AlertTypeDanger, true)

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/alerts?alert_type=danger&is_read=false", "")
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.GetAlerts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response []AlertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, int32(1), response[0].ID)
	assert.Equal(t, "2026-03-01", response[0].CreatedOn)
}

func TestGetAlerts_InvalidType(t *testing.T) {
	e := echo.New()
	f := newAlertFixture()

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/alerts?alert_type=warning", "")
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.GetAlerts(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUnread(t *testing.T) {
	e := echo.New()
	f := newAlertFixture()
	f.addAlert(1, domain.AlertTypeDanger, false)
	f.addAlert(2, domain.AlertTypeInfo, true)

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/alerts/unread", "")
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.GetUnread(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response UnreadAlertsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Count)
	require.Len(t, response.Alerts, 1)
	assert.False(t, response.Alerts[0].IsRead)
}

func TestMarkRead(t *testing.T) {
	e := echo.New()
	f := newAlertFixture()
	f.addAlert(1, domain.AlertTypeDanger, false)

	c, rec := newJSONContext(e, http.MethodPatch, "/api/v1/alerts/1/mark-read", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.MarkRead(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response AlertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, response.IsRead)
	assert.Equal(t, []string{"alert.updated"}, f.publisher.types())
}

func TestMarkAllRead(t *testing.T) {
	e := echo.New()
	f := newAlertFixture()
	f.addAlert(1, domain.AlertTypeDanger, false)
	f.addAlert(2, domain.AlertTypeTip, false)
	f.addAlert(3, domain.AlertTypeInfo, true)

	c, rec := newJSONContext(e, http.MethodPatch, "/api/v1/alerts/mark-all-read", "")
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.MarkAllRead(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response MarkAllReadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, int64(2), response.Updated)
	assert.Equal(t, []string{"alert.all_read"}, f.publisher.types())

	// nothing left to mark, nothing published
	c, rec = newJSONContext(e, http.MethodPatch, "/api/v1/alerts/mark-all-read", "")
	setupUserContext(c, f.userID)
	require.NoError(t, f.handler.MarkAllRead(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, int64(0), response.Updated)
	assert.Len(t, f.publisher.types(), 1)
}

func TestDeleteAlert(t *testing.T) {
	e := echo.New()
	f := newAlertFixture()
	f.addAlert(1, domain.AlertTypeDanger, false)

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/alerts/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupUserContext(c, f.userID)

	require.NoError(t, f.handler.DeleteAlert(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, f.alertRepo.Count())
	assert.Equal(t, []string{"alert.deleted"}, f.publisher.types())
}

func TestGetAlert_OtherUser(t *testing.T) {
	e := echo.New()
	f := newAlertFixture()
	f.addAlert(1, domain.AlertTypeDanger, false)

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/alerts/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupUserContext(c, uuid.New())

	require.NoError(t, f.handler.GetAlert(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckAlerts_GeneratesOncePerDay(t *testing.T) {
	e := echo.New()
	f := newAlertFixture()
	f.check.SetClock(func() time.Time { return time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC) })

	categoryID := int32(1)
	f.budgetRepo.AddBudget(&domain.Budget{
		UserID:       f.userID,
		CategoryID:   categoryID,
		CategoryName: "Groceries",
		LimitAmount:  decimal.NewFromInt(100),
		StartDate:    date(2026, 3, 1),
		EndDate:      date(2026, 3, 31),
	})
	f.expenseRepo.AddExpense(&domain.Expense{UserID: f.userID, CategoryID: &categoryID,
		Amount: decimal.NewFromInt(150), Date: date(2026, 3, 10)})

	run := func() service.AlertCheckReport {
		c, rec := newJSONContext(e, http.MethodPost, "/api/v1/alerts/check", "")
		setupUserContext(c, f.userID)

		require.NoError(t, f.handler.CheckAlerts(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var report service.AlertCheckReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		return report
	}

	first := run()
	assert.Equal(t, 1, first.UsersProcessed)
	assert.Equal(t, 1, first.AlertsGenerated)
	assert.Empty(t, first.Skipped)

	second := run()
	assert.Equal(t, 0, second.AlertsGenerated)
	assert.Equal(t, 1, second.AlertsSuppressed)
	assert.Equal(t, 1, f.alertRepo.Count())
}

func TestCheckAlerts_UnknownUser(t *testing.T) {
	e := echo.New()
	f := newAlertFixture()

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/alerts/check", "")
	setupUserContext(c, uuid.New())

	require.NoError(t, f.handler.CheckAlerts(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
