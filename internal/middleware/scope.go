package middleware

import (
	"net/http"
	"slices"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// RequireScope rejects API token requests whose token was not granted scope.
// Session (JWT) requests act on behalf of the user and pass unchecked.
func RequireScope(scope domain.TokenScope) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAPITokenAuth(c) {
				return next(c)
			}
			if !slices.Contains(GetAPITokenScopes(c), scope) {
				log.Debug().
					Str("token_id", GetAPITokenID(c).String()).
					Str("scope", string(scope)).
					Msg("API token scope missing")
				return insufficientScopeError(c, string(scope))
			}
			return next(c)
		}
	}
}

// RequireMethodScope requires ScopeRead for safe methods and ScopeWrite for everything else
func RequireMethodScope() echo.MiddlewareFunc {
	read := RequireScope(domain.ScopeRead)
	write := RequireScope(domain.ScopeWrite)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		readNext, writeNext := read(next), write(next)
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return readNext(c)
			default:
				return writeNext(c)
			}
		}
	}
}
