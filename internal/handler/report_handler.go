package handler

import (
	"net/http"
	"strconv"

	"github.com/dafibh/sentinel/sentinel-backend/internal/metrics"
	"github.com/dafibh/sentinel/sentinel-backend/internal/service"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
	"github.com/labstack/echo/v4"
)

// ReportHandler exposes the metrics engine over HTTP
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// SummaryResponse is the monthly income/expense summary
type SummaryResponse struct {
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	TotalIncome  string `json:"totalIncome"`
	TotalExpense string `json:"totalExpense"`
	NetBalance   string `json:"netBalance"`
	IncomeCount  int    `json:"incomeCount"`
	ExpenseCount int    `json:"expenseCount"`
}

// CategoryTotalResponse is one category of a breakdown
type CategoryTotalResponse struct {
	CategoryID *int32 `json:"categoryId"`
	Category   string `json:"category"`
	Total      string `json:"total"`
	Count      int    `json:"count"`
	Percentage string `json:"percentage"`
}

// BreakdownResponse groups a month's expenses by category
type BreakdownResponse struct {
	Year          int                     `json:"year"`
	Month         int                     `json:"month"`
	Categories    []CategoryTotalResponse `json:"categories"`
	TotalExpenses string                  `json:"totalExpenses"`
}

// BudgetStatusItemResponse is the status of one active budget
type BudgetStatusItemResponse struct {
	BudgetID    int32  `json:"budgetId"`
	CategoryID  int32  `json:"categoryId"`
	Category    string `json:"category"`
	LimitAmount string `json:"limitAmount"`
	Spent       string `json:"spent"`
	Remaining   string `json:"remaining"`
	Percentage  string `json:"percentage"`
	Exceeded    bool   `json:"exceeded"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// BudgetStatusResponse lists every budget active today
type BudgetStatusResponse struct {
	CurrentDate        string                     `json:"currentDate"`
	Budgets            []BudgetStatusItemResponse `json:"budgets"`
	TotalActiveBudgets int                        `json:"totalActiveBudgets"`
	ExceededCount      int                        `json:"exceededCount"`
}

// ProjectionResponse is the end-of-month spending projection
type ProjectionResponse struct {
	Category            string `json:"category"`
	CurrentDate         string `json:"currentDate"`
	DaysPassed          int    `json:"daysPassed"`
	DaysRemaining       int    `json:"daysRemaining"`
	CurrentSpent        string `json:"currentSpent"`
	DailyAverage        string `json:"dailyAverage"`
	ProjectedEndOfMonth string `json:"projectedEndOfMonth"`
}

// DashboardResponse combines all reports
type DashboardResponse struct {
	Summary            SummaryResponse      `json:"summary"`
	Breakdown          BreakdownResponse    `json:"breakdown"`
	BudgetStatus       BudgetStatusResponse `json:"budgetStatus"`
	SpendingProjection ProjectionResponse   `json:"spendingProjection"`
}

func toSummaryResponse(s *metrics.MonthlySummary) SummaryResponse {
	return SummaryResponse{
		Year:         s.Year,
		Month:        int(s.Month),
		TotalIncome:  money(s.TotalIncome),
		TotalExpense: money(s.TotalExpense),
		NetBalance:   money(s.NetBalance),
		IncomeCount:  s.IncomeCount,
		ExpenseCount: s.ExpenseCount,
	}
}

func toBreakdownResponse(b *metrics.Breakdown) BreakdownResponse {
	categories := make([]CategoryTotalResponse, len(b.Categories))
	for i, ct := range b.Categories {
		categories[i] = CategoryTotalResponse{
			CategoryID: ct.CategoryID,
			Category:   ct.Category,
			Total:      money(ct.Total),
			Count:      ct.Count,
			Percentage: money(metrics.Percent(ct.Total, b.TotalExpenses)),
		}
	}
	return BreakdownResponse{
		Year:          b.Year,
		Month:         int(b.Month),
		Categories:    categories,
		TotalExpenses: money(b.TotalExpenses),
	}
}

func toBudgetStatusResponse(r *service.BudgetStatusReport) BudgetStatusResponse {
	items := make([]BudgetStatusItemResponse, len(r.Budgets))
	for i, st := range r.Budgets {
		items[i] = BudgetStatusItemResponse{
			BudgetID:    st.Budget.ID,
			CategoryID:  st.Budget.CategoryID,
			Category:    st.Budget.CategoryName,
			LimitAmount: money(st.Budget.LimitAmount),
			Spent:       money(st.Spent),
			Remaining:   money(st.Remaining),
			Percentage:  money(st.Percentage),
			Exceeded:    st.Exceeded,
			StartDate:   util.FormatDate(st.Budget.StartDate),
			EndDate:     util.FormatDate(st.Budget.EndDate),
		}
	}
	return BudgetStatusResponse{
		CurrentDate:        util.FormatDate(r.CurrentDate),
		Budgets:            items,
		TotalActiveBudgets: r.TotalActiveBudgets,
		ExceededCount:      r.ExceededCount,
	}
}

func toProjectionResponse(p *service.SpendingProjectionReport) ProjectionResponse {
	return ProjectionResponse{
		Category:            p.Category,
		CurrentDate:         util.FormatDate(p.Today),
		DaysPassed:          p.DaysPassed,
		DaysRemaining:       p.DaysRemaining,
		CurrentSpent:        money(p.CurrentSpent),
		DailyAverage:        money(p.DailyAverage),
		ProjectedEndOfMonth: money(p.ProjectedEndOfMonth),
	}
}

// GetSummary returns the monthly summary, defaulting to the current month
// GET /reports/summary?year&month
func (h *ReportHandler) GetSummary(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	year, month, errs := parseYearMonthQuery(c)
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	summary, err := h.reportService.GetMonthlySummary(c.Request().Context(), userID, year, month)
	if err != nil {
		return handleServiceError(c, err, "Failed to get monthly summary")
	}
	return c.JSON(http.StatusOK, toSummaryResponse(summary))
}

// GetBreakdown returns the category breakdown, defaulting to the current month
// GET /reports/breakdown?year&month
func (h *ReportHandler) GetBreakdown(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	year, month, errs := parseYearMonthQuery(c)
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	breakdown, err := h.reportService.GetCategoryBreakdown(c.Request().Context(), userID, year, month)
	if err != nil {
		return handleServiceError(c, err, "Failed to get category breakdown")
	}
	return c.JSON(http.StatusOK, toBreakdownResponse(breakdown))
}

// GetBudgetStatus returns the status of every budget active today
// GET /reports/budget-status
func (h *ReportHandler) GetBudgetStatus(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	status, err := h.reportService.GetBudgetStatus(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get budget status")
	}
	return c.JSON(http.StatusOK, toBudgetStatusResponse(status))
}

// GetSpendingProjection projects this month's spending, optionally for one category
// GET /reports/spending-projection?category
func (h *ReportHandler) GetSpendingProjection(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var categoryID *int32
	if raw := c.QueryParam("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || id <= 0 {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "category", Message: "Must be a category ID"},
			})
		}
		v := int32(id)
		categoryID = &v
	}

	projection, err := h.reportService.GetSpendingProjection(c.Request().Context(), userID, categoryID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get spending projection")
	}
	return c.JSON(http.StatusOK, toProjectionResponse(projection))
}

// GetDashboard combines every report
// GET /reports/dashboard?year&month
func (h *ReportHandler) GetDashboard(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	year, month, errs := parseYearMonthQuery(c)
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	dashboard, err := h.reportService.GetDashboard(c.Request().Context(), userID, year, month)
	if err != nil {
		return handleServiceError(c, err, "Failed to get dashboard")
	}
	return c.JSON(http.StatusOK, DashboardResponse{
		Summary:            toSummaryResponse(dashboard.Summary),
		Breakdown:          toBreakdownResponse(dashboard.Breakdown),
		BudgetStatus:       toBudgetStatusResponse(dashboard.BudgetStatus),
		SpendingProjection: toProjectionResponse(dashboard.SpendingProjection),
	})
}
