package handler

import (
	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups every HTTP handler registered under /api/v1
type Handlers struct {
	Auth        *AuthHandler
	Category    *CategoryHandler
	Budget      *BudgetHandler
	Goal        *GoalHandler
	Transaction *TransactionHandler
	Alert       *AlertHandler
	Report      *ReportHandler
	APIToken    *APITokenHandler
	WebSocket   *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, jwtAuth *middleware.AuthMiddleware, dualAuth *middleware.DualAuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	api := e.Group("/api/v1")

	// Realtime events; the token travels in the query string
	api.GET("/ws", h.WebSocket.HandleWS)

	// The callback is the first call of a new user, so it must not require a provisioned user
	auth := api.Group("/auth")
	auth.POST("/callback", h.Auth.Callback, jwtAuth.AuthenticateClaimsOnly())
	auth.GET("/me", h.Auth.Me, jwtAuth.Authenticate())
	auth.POST("/logout", h.Auth.Logout, jwtAuth.Authenticate())

	// API token management accepts session JWTs only
	tokens := api.Group("/api-tokens")
	tokens.Use(dualAuth.JWTOnly())
	tokens.POST("", h.APIToken.CreateAPIToken)
	tokens.GET("", h.APIToken.GetAPITokens)
	tokens.DELETE("/:id", h.APIToken.RevokeAPIToken)

	// Everything else accepts JWTs and API tokens. Every caller is rate limited;
	// API tokens additionally need the matching scope.
	protected := api.Group("")
	protected.Use(dualAuth.Authenticate())

	protected.POST("/alerts/check", h.Alert.CheckAlerts,
		middleware.RequireScope(domain.ScopeAlertCheck),
		rateLimiter.Middleware(middleware.ScopeAlertCheck))

	scoped := protected.Group("")
	scoped.Use(middleware.RequireMethodScope())
	scoped.Use(rateLimiter.Middleware(middleware.ScopeAPI))

	categories := scoped.Group("/categories")
	categories.POST("", h.Category.CreateCategory)
	categories.GET("", h.Category.GetCategories)
	categories.GET("/:id", h.Category.GetCategory)
	categories.PUT("/:id", h.Category.UpdateCategory)
	categories.DELETE("/:id", h.Category.DeleteCategory)

	budgets := scoped.Group("/budgets")
	budgets.POST("", h.Budget.CreateBudget)
	budgets.GET("", h.Budget.GetBudgets)
	budgets.GET("/current-month", h.Budget.GetCurrentMonthBudgets)
	budgets.GET("/exceeded", h.Budget.GetExceededBudgets)
	budgets.GET("/:id", h.Budget.GetBudget)
	budgets.PUT("/:id", h.Budget.UpdateBudget)
	budgets.DELETE("/:id", h.Budget.DeleteBudget)

	goals := scoped.Group("/goals")
	goals.POST("", h.Goal.CreateGoal)
	goals.GET("", h.Goal.GetGoals)
	goals.GET("/active", h.Goal.GetActiveGoals)
	goals.GET("/:id", h.Goal.GetGoal)
	goals.PUT("/:id", h.Goal.UpdateGoal)
	goals.PATCH("/:id/mark-completed", h.Goal.MarkCompleted)
	goals.PATCH("/:id/update-progress", h.Goal.UpdateProgress)
	goals.DELETE("/:id", h.Goal.DeleteGoal)

	incomes := scoped.Group("/incomes")
	incomes.POST("", h.Transaction.CreateIncome)
	incomes.GET("", h.Transaction.GetIncomes)
	incomes.GET("/:id", h.Transaction.GetIncome)
	incomes.PUT("/:id", h.Transaction.UpdateIncome)
	incomes.DELETE("/:id", h.Transaction.DeleteIncome)

	expenses := scoped.Group("/expenses")
	expenses.POST("", h.Transaction.CreateExpense)
	expenses.GET("", h.Transaction.GetExpenses)
	expenses.GET("/:id", h.Transaction.GetExpense)
	expenses.PUT("/:id", h.Transaction.UpdateExpense)
	expenses.DELETE("/:id", h.Transaction.DeleteExpense)

	alerts := scoped.Group("/alerts")
	alerts.GET("", h.Alert.GetAlerts)
	alerts.GET("/unread", h.Alert.GetUnread)
	alerts.PATCH("/mark-all-read", h.Alert.MarkAllRead)
	alerts.GET("/:id", h.Alert.GetAlert)
	alerts.PATCH("/:id/mark-read", h.Alert.MarkRead)
	alerts.DELETE("/:id", h.Alert.DeleteAlert)

	reports := scoped.Group("/reports")
	reports.GET("/summary", h.Report.GetSummary)
	reports.GET("/breakdown", h.Report.GetBreakdown)
	reports.GET("/budget-status", h.Report.GetBudgetStatus)
	reports.GET("/spending-projection", h.Report.GetSpendingProjection)
	reports.GET("/dashboard", h.Report.GetDashboard)
}
