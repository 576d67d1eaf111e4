package service

import (
	"context"
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/metrics"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
	"github.com/google/uuid"
)

// ReportService fetches transaction data and feeds it to the metrics engine
type ReportService struct {
	incomeRepo   domain.IncomeRepository
	expenseRepo  domain.ExpenseRepository
	budgetRepo   domain.BudgetRepository
	categoryRepo domain.CategoryRepository
	now          func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(
	incomeRepo domain.IncomeRepository,
	expenseRepo domain.ExpenseRepository,
	budgetRepo domain.BudgetRepository,
	categoryRepo domain.CategoryRepository,
) *ReportService {
	return &ReportService{
		incomeRepo:   incomeRepo,
		expenseRepo:  expenseRepo,
		budgetRepo:   budgetRepo,
		categoryRepo: categoryRepo,
		now:          time.Now,
	}
}

// SetClock overrides the clock used to default the reporting period
func (s *ReportService) SetClock(now func() time.Time) {
	s.now = now
}

// BudgetStatusReport lists the status of every budget active today
type BudgetStatusReport struct {
	CurrentDate        time.Time
	Budgets            []*metrics.BudgetStatus
	TotalActiveBudgets int
	ExceededCount      int
}

// SpendingProjectionReport is a month projection, optionally for one category
type SpendingProjectionReport struct {
	*metrics.Projection
	Category string
}

// DashboardReport combines all reports for the dashboard view
type DashboardReport struct {
	Summary            *metrics.MonthlySummary
	Breakdown          *metrics.Breakdown
	BudgetStatus       *BudgetStatusReport
	SpendingProjection *SpendingProjectionReport
}

// AllCategoriesLabel names a projection across every category
const AllCategoriesLabel = "All"

// GetMonthlySummary totals incomes and expenses for a month, defaulting to the current one
func (s *ReportService) GetMonthlySummary(ctx context.Context, userID uuid.UUID, year, month *int) (*metrics.MonthlySummary, error) {
	y, m, err := resolveYearMonth(s.now(), year, month)
	if err != nil {
		return nil, err
	}
	period := monthRange(y, m)

	incomes, err := s.incomeRepo.GetByDateRange(ctx, userID, period)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.GetByDateRange(ctx, userID, period, nil)
	if err != nil {
		return nil, err
	}

	return metrics.Summarize(incomes, expenses, y, m), nil
}

// GetCategoryBreakdown groups a month's expenses by category, defaulting to the current month
func (s *ReportService) GetCategoryBreakdown(ctx context.Context, userID uuid.UUID, year, month *int) (*metrics.Breakdown, error) {
	y, m, err := resolveYearMonth(s.now(), year, month)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenseRepo.GetByDateRange(ctx, userID, monthRange(y, m), nil)
	if err != nil {
		return nil, err
	}

	return metrics.CategoryBreakdown(expenses, y, m), nil
}

// GetBudgetStatus evaluates every budget active today
func (s *ReportService) GetBudgetStatus(ctx context.Context, userID uuid.UUID) (*BudgetStatusReport, error) {
	today := util.DateOnly(s.now())

	budgets, err := s.budgetRepo.GetActive(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	report := &BudgetStatusReport{
		CurrentDate: today,
		Budgets:     make([]*metrics.BudgetStatus, 0, len(budgets)),
	}
	for _, b := range budgets {
		categoryID := b.CategoryID
		expenses, err := s.expenseRepo.GetByDateRange(ctx, userID, domain.DateRange{Start: b.StartDate, End: b.EndDate}, &categoryID)
		if err != nil {
			return nil, err
		}
		status := metrics.EvaluateBudget(b, expenses)
		report.Budgets = append(report.Budgets, status)
		if status.Exceeded {
			report.ExceededCount++
		}
	}
	report.TotalActiveBudgets = len(report.Budgets)

	return report, nil
}

// GetSpendingProjection projects this month's spending, optionally for a single category.
// An unknown category yields ErrCategoryNotFound.
func (s *ReportService) GetSpendingProjection(ctx context.Context, userID uuid.UUID, categoryID *int32) (*SpendingProjectionReport, error) {
	label := AllCategoriesLabel
	if categoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, userID, *categoryID)
		if err != nil {
			return nil, err
		}
		label = category.Name
	}

	today := util.DateOnly(s.now())
	expenses, err := s.expenseRepo.GetByDateRange(ctx, userID, monthRange(today.Year(), today.Month()), categoryID)
	if err != nil {
		return nil, err
	}

	return &SpendingProjectionReport{
		Projection: metrics.ProjectSpending(expenses, today),
		Category:   label,
	}, nil
}

// GetDashboard combines summary, breakdown, budget status and projection
func (s *ReportService) GetDashboard(ctx context.Context, userID uuid.UUID, year, month *int) (*DashboardReport, error) {
	summary, err := s.GetMonthlySummary(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.GetCategoryBreakdown(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	status, err := s.GetBudgetStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	projection, err := s.GetSpendingProjection(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	return &DashboardReport{
		Summary:            summary,
		Breakdown:          breakdown,
		BudgetStatus:       status,
		SpendingProjection: projection,
	}, nil
}

func monthRange(year int, month time.Month) domain.DateRange {
	first, last := util.MonthBounds(year, month)
	return domain.DateRange{Start: first, End: last}
}
