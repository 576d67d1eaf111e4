package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// problemDetails is the RFC 7807 body shared with the handler package
type problemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

const errorTypeBase = "https://sentinel.app/errors/"

func writeProblem(c echo.Context, status int, kind, title, detail string) error {
	return c.JSON(status, problemDetails{
		Type:     errorTypeBase + kind,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

func unauthorizedError(c echo.Context, detail string) error {
	return writeProblem(c, http.StatusUnauthorized, "unauthorized", "Unauthorized", detail)
}

func insufficientScopeError(c echo.Context, scope string) error {
	return writeProblem(c, http.StatusForbidden, "insufficient-scope", "Insufficient Scope",
		fmt.Sprintf("This API token lacks the %q scope", scope))
}

func rateLimitedError(c echo.Context, scope RateScope, retryAfter time.Duration) error {
	seconds := max(int(retryAfter.Round(time.Second)/time.Second), 1)
	c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
	return writeProblem(c, http.StatusTooManyRequests, "rate-limit", "Rate Limit Exceeded",
		fmt.Sprintf("Too many %s requests. Retry after %d seconds.", scope.describe(), seconds))
}
