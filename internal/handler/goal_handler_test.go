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

func newGoalHandler() (*GoalHandler, *testutil.MockGoalRepository, *recordingPublisher) {
	goalRepo := testutil.NewMockGoalRepository()
	publisher := &recordingPublisher{}
	goalService := service.NewGoalService(goalRepo, testutil.NewMockCategoryRepository())
	return NewGoalHandler(goalService, publisher), goalRepo, publisher
}

func TestCreateGoal(t *testing.T) {
	e := echo.New()
	handler, _, _ := newGoalHandler()
	userID := uuid.New()

	body := `{"name":"Emergency fund","targetAmount":"1000","currentAmount":"250","targetDate":"2026-12-31"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/goals", body)
	setupUserContext(c, userID)

	require.NoError(t, handler.CreateGoal(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var response GoalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Emergency fund", response.Name)
	assert.Equal(t, "1000.00", response.TargetAmount)
	assert.Equal(t, "250.00", response.CurrentAmount)
	assert.Equal(t, "750.00", response.RemainingAmount)
	assert.Equal(t, "25.00", response.ProgressPercentage)
	assert.False(t, response.IsCompleted)
}

func TestCreateGoal_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"name":" ","targetAmount":"1000","targetDate":"2026-12-31"}`},
		{"bad target", `{"name":"Car","targetAmount":"lots","targetDate":"2026-12-31"}`},
		{"negative current", `{"name":"Car","targetAmount":"1000","currentAmount":"-5","targetDate":"2026-12-31"}`},
		{"bad date", `{"name":"Car","targetAmount":"1000","targetDate":"soon"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			handler, _, _ := newGoalHandler()

			c, rec := newJSONContext(e, http.MethodPost, "/api/v1/goals", tt.body)
			setupUserContext(c, uuid.New())

			require.NoError(t, handler.CreateGoal(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUpdateProgress_CompletesGoalOnce(t *testing.T) {
	e := echo.New()
	handler, goalRepo, publisher := newGoalHandler()
	userID := uuid.New()
	goalRepo.AddGoal(&domain.Goal{
		ID:            5,
		UserID:        userID,
		Name:          "Laptop",
		TargetAmount:  decimal.NewFromInt(1000),
		CurrentAmount: decimal.NewFromInt(100),
		TargetDate:    date(2026, 12, 31),
	})

	progress := func(amount string) *GoalResponse {
		c, rec := newJSONContext(e, http.MethodPatch, "/api/v1/goals/5/update-progress", `{"currentAmount":"`+amount+`"}`)
		c.SetParamNames("id")
		c.SetParamValues("5")
		setupUserContext(c, userID)

		require.NoError(t, handler.UpdateProgress(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var response GoalResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		return &response
	}

	resp := progress("500")
	assert.False(t, resp.IsCompleted)
	assert.Empty(t, publisher.types())

	resp = progress("1000")
	assert.True(t, resp.IsCompleted)
	assert.Equal(t, "100.00", resp.ProgressPercentage)
	assert.Equal(t, []string{"goal.completed"}, publisher.types())

	// already completed goals do not announce again
	progress("1200")
	assert.Len(t, publisher.types(), 1)
}

func TestUpdateProgress_NegativeAmount(t *testing.T) {
	e := echo.New()
	handler, goalRepo, _ := newGoalHandler()
	userID := uuid.New()
	goalRepo.AddGoal(&domain.Goal{ID: 1, UserID: userID, Name: "Trip", TargetAmount: decimal.NewFromInt(100)})

	c, rec := newJSONContext(e, http.MethodPatch, "/api/v1/goals/1/update-progress", `{"currentAmount":"-1"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupUserContext(c, userID)

	require.NoError(t, handler.UpdateProgress(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkCompleted(t *testing.T) {
	e := echo.New()
	handler, goalRepo, publisher := newGoalHandler()
	userID := uuid.New()
	goalRepo.AddGoal(&domain.Goal{ID: 2, UserID: userID, Name: "Bike", TargetAmount: decimal.NewFromInt(300)})

	c, rec := newJSONContext(e, http.MethodPatch, "/api/v1/goals/2/mark-completed", "")
	c.SetParamNames("id")
	c.SetParamValues("2")
	setupUserContext(c, userID)

	require.NoError(t, handler.MarkCompleted(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response GoalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, response.IsCompleted)
	assert.Equal(t, []string{"goal.completed"}, publisher.types())
}

func TestGetGoals_CompletionFilter(t *testing.T) {
	e := echo.New()
	handler, goalRepo, _ := newGoalHandler()
	userID := uuid.New()
	goalRepo.AddGoal(&domain.Goal{UserID: userID, Name: "Open", TargetAmount: decimal.NewFromInt(10)})
	goalRepo.AddGoal(&domain.Goal{UserID: userID, Name: "Done", TargetAmount: decimal.NewFromInt(10), IsCompleted: true})

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/goals/active", "")
	setupUserContext(c, userID)
	require.NoError(t, handler.GetActiveGoals(c))

	var active []GoalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &active))
	require.Len(t, active, 1)
	assert.Equal(t, "Open", active[0].Name)

	c, rec = newJSONContext(e, http.MethodGet, "/api/v1/goals?is_completed=true", "")
	setupUserContext(c, userID)
	require.NoError(t, handler.GetGoals(c))

	var completed []GoalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &completed))
	require.Len(t, completed, 1)
	assert.Equal(t, "Done", completed[0].Name)
}

func TestDeleteGoal_OtherUser(t *testing.T) {
	e := echo.New()
	handler, goalRepo, _ := newGoalHandler()
	goalRepo.AddGoal(&domain.Goal{ID: 9, UserID: uuid.New(), Name: "Theirs", TargetAmount: decimal.NewFromInt(10)})

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/goals/9", "")
	c.SetParamNames("id")
	c.SetParamValues("9")
	setupUserContext(c, uuid.New())

	require.NoError(t, handler.DeleteGoal(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
