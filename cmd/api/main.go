package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/config"
	"github.com/dafibh/sentinel/sentinel-backend/internal/handler"
	"github.com/dafibh/sentinel/sentinel-backend/internal/middleware"
	"github.com/dafibh/sentinel/sentinel-backend/internal/notify"
	"github.com/dafibh/sentinel/sentinel-backend/internal/repository/postgres"
	"github.com/dafibh/sentinel/sentinel-backend/internal/service"
	"github.com/dafibh/sentinel/sentinel-backend/internal/websocket"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	if err := postgres.RunMigrations(pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)
	goalRepo := postgres.NewGoalRepository(pool)
	incomeRepo := postgres.NewIncomeRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	alertRepo := postgres.NewAlertRepository(pool)
	apiTokenRepo := postgres.NewAPITokenRepository(pool)

	// Services
	provisioningService := service.NewProvisioningService(categoryRepo)
	authService := service.NewAuthService(userRepo, provisioningService)
	categoryService := service.NewCategoryService(categoryRepo)
	budgetService := service.NewBudgetService(budgetRepo, categoryRepo, expenseRepo)
	goalService := service.NewGoalService(goalRepo, categoryRepo)
	transactionService := service.NewTransactionService(incomeRepo, expenseRepo, categoryRepo, cfg.ExpenseBalanceCheck)
	alertService := service.NewAlertService(alertRepo)
	reportService := service.NewReportService(incomeRepo, expenseRepo, budgetRepo, categoryRepo)
	apiTokenService := service.NewAPITokenService(apiTokenRepo)
	alertCheckService := service.NewAlertCheckService(userRepo, budgetRepo, goalRepo, expenseRepo, alertRepo, log.Logger, cfg.AlertCheck.Concurrency)

	hub := websocket.NewHub()

	// Alert delivery: websocket always, AMQP when configured
	publishers := notify.Fanout{hub}
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := notify.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("AMQP unavailable, alert notifications disabled")
		} else {
			defer amqpPublisher.Close()
			publishers = append(publishers, amqpPublisher)
			log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("AMQP alert notifications enabled")
		}
	}
	alertCheckService.SetPublisher(publishers)

	if cfg.SentryDSN != "" {
		reporter, err := notify.NewSentryReporter(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Sentry initialization failed")
		} else {
			defer reporter.Flush(2 * time.Second)
			alertCheckService.SetFailureReporter(reporter)
		}
	}

	userProvider := &userProviderAdapter{authService: authService}

	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, userProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	apiTokenMiddleware := middleware.NewAPITokenAuthMiddleware(apiTokenService)
	dualAuth := middleware.NewDualAuthMiddleware(authMiddleware, apiTokenMiddleware)

	rateLimiter := middleware.NewRateLimiter(map[middleware.RateScope]middleware.Limit{
		middleware.ScopeAPI:        {PerMinute: cfg.RateLimitPerMinute, Burst: cfg.RateLimitBurst},
		middleware.ScopeAlertCheck: {PerMinute: cfg.AlertCheck.RateLimitPerMinute, Burst: cfg.AlertCheck.RateLimitBurst},
	})
	defer rateLimiter.Stop()

	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, userProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket validator")
	}

	handlers := handler.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Category:    handler.NewCategoryHandler(categoryService),
		Budget:      handler.NewBudgetHandler(budgetService),
		Goal:        handler.NewGoalHandler(goalService, hub),
		Transaction: handler.NewTransactionHandler(transactionService, hub),
		Alert:       handler.NewAlertHandler(alertService, alertCheckService, hub),
		Report:      handler.NewReportHandler(reportService),
		APIToken:    handler.NewAPITokenHandler(apiTokenService),
		WebSocket:   handler.NewWebSocketHandler(hub, wsValidator, alertService, cfg.CORSOrigins),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestID())

	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	e.Use(zerologMiddleware())
	e.Use(echomiddleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	handler.RegisterRoutes(e, authMiddleware, dualAuth, rateLimiter, handlers)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	var alertWorker *service.AlertWorker
	if cfg.AlertCheck.WorkerEnabled {
		alertWorker = service.NewAlertWorker(alertCheckService, log.Logger, service.AlertWorkerConfig{
			Interval: cfg.AlertCheck.Interval,
		})
		alertWorker.Start(workerCtx)
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if alertWorker != nil {
		alertWorker.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// userProviderAdapter resolves Auth0 subjects to user IDs for the auth middleware and WebSocket validator
type userProviderAdapter struct {
	authService *service.AuthService
}

// GetUserIDByAuth0ID implements middleware.UserProvider and websocket.UserLookup
func (a *userProviderAdapter) GetUserIDByAuth0ID(ctx context.Context, auth0ID string) (uuid.UUID, error) {
	user, err := a.authService.GetUserByAuth0ID(ctx, auth0ID)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
