package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	mu       sync.Mutex
	Users    map[string]*domain.User
	ByID     map[uuid.UUID]*domain.User
	GetAllFn func() ([]*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetAll lists users ordered by creation time
func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	if m.GetAllFn != nil {
		return m.GetAllFn()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.User, 0, len(m.ByID))
	for _, u := range m.ByID {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name, pictureURL *string) (*domain.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.Users[auth0ID]; ok {
		return user, false, nil
	}
	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Auth0ID:      auth0ID,
		Email:        email,
		Name:         name,
		PictureURL:   pictureURL,
		BaseCurrency: domain.DefaultBaseCurrency,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, true, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.BaseCurrency == "" {
		user.BaseCurrency = domain.DefaultBaseCurrency
	}
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	mu         sync.Mutex
	Categories map[int32]*domain.Category
	NextID     int32
	CreateFn   func(category *domain.Category) (*domain.Category, error)
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[int32]*domain.Category),
		NextID:     1,
	}
}

func visibleTo(c *domain.Category, userID uuid.UUID) bool {
	return c.UserID == nil || *c.UserID == userID
}

// Create creates a new category, enforcing (user, name, type) uniqueness
func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if m.CreateFn != nil {
		return m.CreateFn(category)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Categories {
		if sameOwner(c.UserID, category.UserID) && c.Type == category.Type && strings.EqualFold(c.Name, category.Name) {
			return nil, domain.ErrCategoryAlreadyExists
		}
	}
	category.ID = m.NextID
	m.NextID++
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now
	m.Categories[category.ID] = category
	return category, nil
}

func sameOwner(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// GetByID retrieves a category visible to the user
func (m *MockCategoryRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.Categories[id]; ok && visibleTo(c, userID) {
		return c, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// GetByName retrieves a category owned by the user by name and type
func (m *MockCategoryRepository) GetByName(ctx context.Context, userID uuid.UUID, name string, categoryType domain.CategoryType) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Categories {
		if c.UserID != nil && *c.UserID == userID && c.Type == categoryType && strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

// GetAllByUser lists the user's categories plus system defaults
func (m *MockCategoryRepository) GetAllByUser(ctx context.Context, userID uuid.UUID, filters *domain.CategoryFilters) ([]*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Category
	for _, c := range m.Categories {
		if !visibleTo(c, userID) {
			continue
		}
		if filters != nil {
			if filters.Type != nil && c.Type != *filters.Type {
				continue
			}
			if filters.IsDefault != nil && c.IsDefault != *filters.IsDefault {
				continue
			}
			if filters.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filters.Search)) {
				continue
			}
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Update updates a category owned by the user
func (m *MockCategoryRepository) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Categories[category.ID]
	if !ok || !sameOwner(existing.UserID, category.UserID) {
		return nil, domain.ErrCategoryNotFound
	}
	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = time.Now()
	m.Categories[category.ID] = category
	return category, nil
}

// Delete deletes a category owned by the user
func (m *MockCategoryRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Categories[id]
	if !ok || c.UserID == nil || *c.UserID != userID {
		return domain.ErrCategoryNotFound
	}
	delete(m.Categories, id)
	return nil
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if category.ID == 0 {
		category.ID = m.NextID
	}
	if category.ID >= m.NextID {
		m.NextID = category.ID + 1
	}
	m.Categories[category.ID] = category
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	mu          sync.Mutex
	Budgets     map[int32]*domain.Budget
	NextID      int32
	GetActiveFn func(userID uuid.UUID, asOf time.Time) ([]*domain.Budget, error)
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[int32]*domain.Budget),
		NextID:  1,
	}
}

// Create creates a new budget
func (m *MockBudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	budget.ID = m.NextID
	m.NextID++
	now := time.Now()
	budget.CreatedAt = now
	budget.UpdatedAt = now
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByID retrieves a budget owned by the user
func (m *MockBudgetRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.Budgets[id]; ok && b.UserID == userID {
		return b, nil
	}
	return nil, domain.ErrBudgetNotFound
}

// GetAllByUser lists the user's budgets, newest period first
func (m *MockBudgetRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Budget
	for _, b := range m.Budgets {
		if b.UserID == userID {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].ID < result[j].ID
		}
		return result[i].StartDate.After(result[j].StartDate)
	})
	return result, nil
}

// GetActive lists the user's budgets whose period contains asOf
func (m *MockBudgetRepository) GetActive(ctx context.Context, userID uuid.UUID, asOf time.Time) ([]*domain.Budget, error) {
	if m.GetActiveFn != nil {
		return m.GetActiveFn(userID, asOf)
	}
	all, _ := m.GetAllByUser(ctx, userID)
	var result []*domain.Budget
	for _, b := range all {
		if b.IsActiveOn(asOf) {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update updates a budget owned by the user
func (m *MockBudgetRepository) Update(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Budgets[budget.ID]
	if !ok || existing.UserID != budget.UserID {
		return nil, domain.ErrBudgetNotFound
	}
	budget.CreatedAt = existing.CreatedAt
	budget.UpdatedAt = time.Now()
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// Delete deletes a budget owned by the user
func (m *MockBudgetRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Budgets[id]
	if !ok || b.UserID != userID {
		return domain.ErrBudgetNotFound
	}
	delete(m.Budgets, id)
	return nil
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if budget.ID == 0 {
		budget.ID = m.NextID
	}
	if budget.ID >= m.NextID {
		m.NextID = budget.ID + 1
	}
	m.Budgets[budget.ID] = budget
}

// MockGoalRepository is a mock implementation of domain.GoalRepository
type MockGoalRepository struct {
	mu              sync.Mutex
	Goals           map[int32]*domain.Goal
	NextID          int32
	MarkCompletedFn func(userID uuid.UUID, id int32) error
	// MarkCompletedCalls counts state changes, not calls on already completed goals
	MarkCompletedCalls int
}

// NewMockGoalRepository creates a new MockGoalRepository
func NewMockGoalRepository() *MockGoalRepository {
	return &MockGoalRepository{
		Goals:  make(map[int32]*domain.Goal),
		NextID: 1,
	}
}

// Create creates a new goal
func (m *MockGoalRepository) Create(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	goal.ID = m.NextID
	m.NextID++
	now := time.Now()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	m.Goals[goal.ID] = goal
	return goal, nil
}

// GetByID retrieves a goal owned by the user
func (m *MockGoalRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.Goals[id]; ok && g.UserID == userID {
		copied := *g
		return &copied, nil
	}
	return nil, domain.ErrGoalNotFound
}

// GetByUser lists the user's goals, optionally filtered by completion
func (m *MockGoalRepository) GetByUser(ctx context.Context, userID uuid.UUID, completed *bool) ([]*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Goal
	for _, g := range m.Goals {
		if g.UserID != userID {
			continue
		}
		if completed != nil && g.IsCompleted != *completed {
			continue
		}
		copied := *g
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update updates a goal owned by the user
func (m *MockGoalRepository) Update(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Goals[goal.ID]
	if !ok || existing.UserID != goal.UserID {
		return nil, domain.ErrGoalNotFound
	}
	goal.CreatedAt = existing.CreatedAt
	goal.UpdatedAt = time.Now()
	stored := *goal
	m.Goals[goal.ID] = &stored
	return goal, nil
}

// MarkCompleted flags a goal as completed
func (m *MockGoalRepository) MarkCompleted(ctx context.Context, userID uuid.UUID, id int32) error {
	if m.MarkCompletedFn != nil {
		return m.MarkCompletedFn(userID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.Goals[id]
	if !ok || g.UserID != userID {
		return domain.ErrGoalNotFound
	}
	if !g.IsCompleted {
		g.IsCompleted = true
		g.UpdatedAt = time.Now()
		m.MarkCompletedCalls++
	}
	return nil
}

// Delete deletes a goal owned by the user
func (m *MockGoalRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.Goals[id]
	if !ok || g.UserID != userID {
		return domain.ErrGoalNotFound
	}
	delete(m.Goals, id)
	return nil
}

// AddGoal adds a goal to the mock repository (helper for tests)
func (m *MockGoalRepository) AddGoal(goal *domain.Goal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if goal.ID == 0 {
		goal.ID = m.NextID
	}
	if goal.ID >= m.NextID {
		m.NextID = goal.ID + 1
	}
	m.Goals[goal.ID] = goal
}

// MockIncomeRepository is a mock implementation of domain.IncomeRepository
type MockIncomeRepository struct {
	mu      sync.Mutex
	Incomes map[int32]*domain.Income
	NextID  int32
}

// NewMockIncomeRepository creates a new MockIncomeRepository
func NewMockIncomeRepository() *MockIncomeRepository {
	return &MockIncomeRepository{
		Incomes: make(map[int32]*domain.Income),
		NextID:  1,
	}
}

// Create creates a new income
func (m *MockIncomeRepository) Create(ctx context.Context, income *domain.Income) (*domain.Income, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	income.ID = m.NextID
	m.NextID++
	now := time.Now()
	income.CreatedAt = now
	income.UpdatedAt = now
	m.Incomes[income.ID] = income
	return income, nil
}

// GetByID retrieves an income owned by the user
func (m *MockIncomeRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Income, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inc, ok := m.Incomes[id]; ok && inc.UserID == userID {
		return inc, nil
	}
	return nil, domain.ErrIncomeNotFound
}

// GetByDateRange lists the user's incomes dated within the range, ordered by date then ID
func (m *MockIncomeRepository) GetByDateRange(ctx context.Context, userID uuid.UUID, dateRange domain.DateRange) ([]*domain.Income, error) {
	all, _ := m.GetAllByUser(ctx, userID)
	var result []*domain.Income
	for _, inc := range all {
		if util.InDateRange(inc.Date, dateRange.Start, dateRange.End) {
			result = append(result, inc)
		}
	}
	return result, nil
}

// GetAllByUser lists all of the user's incomes ordered by date then ID
func (m *MockIncomeRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Income, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Income
	for _, inc := range m.Incomes {
		if inc.UserID == userID {
			result = append(result, inc)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].ID < result[j].ID
		}
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// Update updates an income owned by the user
func (m *MockIncomeRepository) Update(ctx context.Context, income *domain.Income) (*domain.Income, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Incomes[income.ID]
	if !ok || existing.UserID != income.UserID {
		return nil, domain.ErrIncomeNotFound
	}
	income.CreatedAt = existing.CreatedAt
	income.UpdatedAt = time.Now()
	m.Incomes[income.ID] = income
	return income, nil
}

// Delete deletes an income owned by the user
func (m *MockIncomeRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inc, ok := m.Incomes[id]
	if !ok || inc.UserID != userID {
		return domain.ErrIncomeNotFound
	}
	delete(m.Incomes, id)
	return nil
}

// SumAll sums every income of the user
func (m *MockIncomeRepository) SumAll(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	all, _ := m.GetAllByUser(ctx, userID)
	total := decimal.Zero
	for _, inc := range all {
		total = total.Add(inc.Amount)
	}
	return total, nil
}

// AddIncome adds an income to the mock repository (helper for tests)
func (m *MockIncomeRepository) AddIncome(income *domain.Income) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if income.ID == 0 {
		income.ID = m.NextID
	}
	if income.ID >= m.NextID {
		m.NextID = income.ID + 1
	}
	m.Incomes[income.ID] = income
}

// MockExpenseRepository is a mock implementation of domain.ExpenseRepository
type MockExpenseRepository struct {
	mu               sync.Mutex
	Expenses         map[int32]*domain.Expense
	NextID           int32
	GetByDateRangeFn func(userID uuid.UUID, dateRange domain.DateRange, categoryID *int32) ([]*domain.Expense, error)
	// Categories, when set, resolves CategoryName on reads like the category join in Postgres
	Categories *MockCategoryRepository
}

// withCategoryName returns a copy of exp carrying its category's name
func (m *MockExpenseRepository) withCategoryName(exp *domain.Expense) *domain.Expense {
	copied := *exp
	if m.Categories == nil || exp.CategoryID == nil {
		return &copied
	}
	m.Categories.mu.Lock()
	defer m.Categories.mu.Unlock()
	if c, ok := m.Categories.Categories[*exp.CategoryID]; ok {
		name := c.Name
		copied.CategoryName = &name
	}
	return &copied
}

// NewMockExpenseRepository creates a new MockExpenseRepository
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		Expenses: make(map[int32]*domain.Expense),
		NextID:   1,
	}
}

// Create creates a new expense
func (m *MockExpenseRepository) Create(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expense.ID = m.NextID
	m.NextID++
	now := time.Now()
	expense.CreatedAt = now
	expense.UpdatedAt = now
	m.Expenses[expense.ID] = expense
	return expense, nil
}

// GetByID retrieves an expense owned by the user
func (m *MockExpenseRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if exp, ok := m.Expenses[id]; ok && exp.UserID == userID {
		return m.withCategoryName(exp), nil
	}
	return nil, domain.ErrExpenseNotFound
}

// GetByDateRange lists the user's expenses dated within the range, optionally for one category
func (m *MockExpenseRepository) GetByDateRange(ctx context.Context, userID uuid.UUID, dateRange domain.DateRange, categoryID *int32) ([]*domain.Expense, error) {
	if m.GetByDateRangeFn != nil {
		return m.GetByDateRangeFn(userID, dateRange, categoryID)
	}
	all, _ := m.GetAllByUser(ctx, userID)
	var result []*domain.Expense
	for _, exp := range all {
		if !util.InDateRange(exp.Date, dateRange.Start, dateRange.End) {
			continue
		}
		if categoryID != nil && (exp.CategoryID == nil || *exp.CategoryID != *categoryID) {
			continue
		}
		result = append(result, exp)
	}
	return result, nil
}

// GetAllByUser lists all of the user's expenses ordered by date then ID
func (m *MockExpenseRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Expense
	for _, exp := range m.Expenses {
		if exp.UserID == userID {
			result = append(result, m.withCategoryName(exp))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].ID < result[j].ID
		}
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// Update updates an expense owned by the user
func (m *MockExpenseRepository) Update(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Expenses[expense.ID]
	if !ok || existing.UserID != expense.UserID {
		return nil, domain.ErrExpenseNotFound
	}
	expense.CreatedAt = existing.CreatedAt
	expense.UpdatedAt = time.Now()
	m.Expenses[expense.ID] = expense
	return expense, nil
}

// Delete deletes an expense owned by the user
func (m *MockExpenseRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.Expenses[id]
	if !ok || exp.UserID != userID {
		return domain.ErrExpenseNotFound
	}
	delete(m.Expenses, id)
	return nil
}

// SumAll sums every expense of the user
func (m *MockExpenseRepository) SumAll(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	all, _ := m.GetAllByUser(ctx, userID)
	total := decimal.Zero
	for _, exp := range all {
		total = total.Add(exp.Amount)
	}
	return total, nil
}

// AddExpense adds an expense to the mock repository (helper for tests)
func (m *MockExpenseRepository) AddExpense(expense *domain.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if expense.ID == 0 {
		expense.ID = m.NextID
	}
	if expense.ID >= m.NextID {
		m.NextID = expense.ID + 1
	}
	if expense.Currency == "" {
		expense.Currency = domain.DefaultBaseCurrency
	}
	if expense.ExchangeRate.IsZero() {
		expense.ExchangeRate = decimal.NewFromInt(1)
	}
	m.Expenses[expense.ID] = expense
}

// MockAlertRepository is a mock implementation of domain.AlertRepository.
// Create applies the same (user, type, subject, day) uniqueness as the database index.
type MockAlertRepository struct {
	mu       sync.Mutex
	Alerts   map[int32]*domain.Alert
	NextID   int32
	CreateFn func(alert *domain.Alert) (*domain.Alert, error)
	// ExistsOnDateFn lets tests simulate a racing writer between the check and the insert
	ExistsOnDateFn func(userID uuid.UUID, alertType domain.AlertType, subject string, day time.Time) (bool, error)
}

// NewMockAlertRepository creates a new MockAlertRepository
func NewMockAlertRepository() *MockAlertRepository {
	return &MockAlertRepository{
		Alerts: make(map[int32]*domain.Alert),
		NextID: 1,
	}
}

func (m *MockAlertRepository) existsLocked(userID uuid.UUID, alertType domain.AlertType, subject string, day time.Time) bool {
	for _, a := range m.Alerts {
		if a.UserID == userID && a.AlertType == alertType && a.RelatedSubject == subject && util.SameDay(a.CreatedOn, day) {
			return true
		}
	}
	return false
}

// Create creates a new alert unless one already exists for the dedup key
func (m *MockAlertRepository) Create(ctx context.Context, alert *domain.Alert) (*domain.Alert, error) {
	if m.CreateFn != nil {
		return m.CreateFn(alert)
	}
	if utf8.RuneCountInString(alert.RelatedSubject) > domain.MaxSubjectLength {
		return nil, fmt.Errorf("related_subject exceeds %d characters", domain.MaxSubjectLength)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsLocked(alert.UserID, alert.AlertType, alert.RelatedSubject, alert.CreatedOn) {
		return nil, domain.ErrAlertAlreadyExists
	}
	alert.ID = m.NextID
	m.NextID++
	now := time.Now()
	alert.CreatedOn = util.DateOnly(alert.CreatedOn)
	alert.CreatedAt = now
	alert.UpdatedAt = now
	stored := *alert
	m.Alerts[alert.ID] = &stored
	return alert, nil
}

// ExistsOnDate reports whether an alert exists for the dedup key
func (m *MockAlertRepository) ExistsOnDate(ctx context.Context, userID uuid.UUID, alertType domain.AlertType, subject string, day time.Time) (bool, error) {
	if m.ExistsOnDateFn != nil {
		return m.ExistsOnDateFn(userID, alertType, subject, day)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.existsLocked(userID, alertType, subject, day), nil
}

// GetByID retrieves an alert owned by the user
func (m *MockAlertRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.Alerts[id]; ok && a.UserID == userID {
		copied := *a
		return &copied, nil
	}
	return nil, domain.ErrAlertNotFound
}

// GetByUser lists the user's alerts, newest first
func (m *MockAlertRepository) GetByUser(ctx context.Context, userID uuid.UUID, filters *domain.AlertFilters) ([]*domain.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.Alert
	for _, a := range m.Alerts {
		if a.UserID != userID {
			continue
		}
		if filters != nil {
			if filters.AlertType != nil && a.AlertType != *filters.AlertType {
				continue
			}
			if filters.IsRead != nil && a.IsRead != *filters.IsRead {
				continue
			}
		}
		copied := *a
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

// MarkRead marks one alert as read
func (m *MockAlertRepository) MarkRead(ctx context.Context, userID uuid.UUID, id int32) (*domain.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Alerts[id]
	if !ok || a.UserID != userID {
		return nil, domain.ErrAlertNotFound
	}
	a.IsRead = true
	a.UpdatedAt = time.Now()
	copied := *a
	return &copied, nil
}

// MarkAllRead marks all unread alerts of the user as read
func (m *MockAlertRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, a := range m.Alerts {
		if a.UserID == userID && !a.IsRead {
			a.IsRead = true
			count++
		}
	}
	return count, nil
}

// Delete deletes an alert owned by the user
func (m *MockAlertRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Alerts[id]
	if !ok || a.UserID != userID {
		return domain.ErrAlertNotFound
	}
	delete(m.Alerts, id)
	return nil
}

// AddAlert adds an alert to the mock repository (helper for tests)
func (m *MockAlertRepository) AddAlert(alert *domain.Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if alert.ID == 0 {
		alert.ID = m.NextID
	}
	if alert.ID >= m.NextID {
		m.NextID = alert.ID + 1
	}
	m.Alerts[alert.ID] = alert
}

// Count returns the number of stored alerts
func (m *MockAlertRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Alerts)
}

// MockAPITokenRepository is a mock implementation of domain.APITokenRepository
type MockAPITokenRepository struct {
	mu        sync.Mutex
	Tokens    map[string]*domain.APIToken
	CreateErr error
}

// NewMockAPITokenRepository creates a new MockAPITokenRepository
func NewMockAPITokenRepository() *MockAPITokenRepository {
	return &MockAPITokenRepository{
		Tokens: make(map[string]*domain.APIToken),
	}
}

// Create stores a token keyed by its hash
func (m *MockAPITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	token.ID = uuid.New()
	token.CreatedAt = time.Now()
	m.Tokens[token.TokenHash] = token
	return nil
}

// GetByUser lists the user's active tokens
func (m *MockAPITokenRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.APIToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domain.APIToken
	for _, t := range m.Tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			copied := *t
			result = append(result, &copied)
		}
	}
	return result, nil
}

// GetByHash retrieves an active token by its hash
func (m *MockAPITokenRepository) GetByHash(ctx context.Context, hash string) (*domain.APIToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.Tokens[hash]; ok && t.RevokedAt == nil {
		copied := *t
		return &copied, nil
	}
	return nil, domain.ErrAPITokenNotFound
}

// Revoke marks a token of the user as revoked
func (m *MockAPITokenRepository) Revoke(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.Tokens {
		if t.ID == id && t.UserID == userID && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
			return nil
		}
	}
	return domain.ErrAPITokenNotFound
}

// UpdateLastUsed records token usage
func (m *MockAPITokenRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.Tokens {
		if t.ID == id {
			now := time.Now()
			t.LastUsedAt = &now
			return nil
		}
	}
	return domain.ErrAPITokenNotFound
}
