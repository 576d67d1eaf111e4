package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func runScoped(t *testing.T, mw echo.MiddlewareFunc, method string, scopes []domain.TokenScope, viaToken bool) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/api/v1/expenses", nil)
	ctx := context.WithValue(req.Context(), UserIDKey, uuid.New())
	if viaToken {
		ctx = context.WithValue(ctx, IsAPITokenAuthKey, true)
		ctx = context.WithValue(ctx, APITokenIDKey, uuid.New())
		ctx = context.WithValue(ctx, APITokenScopesKey, scopes)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req.WithContext(ctx), rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return rec, called
}

func TestRequireMethodScope(t *testing.T) {
	readOnly := []domain.TokenScope{domain.ScopeRead}
	readWrite := []domain.TokenScope{domain.ScopeRead, domain.ScopeWrite}

	tests := []struct {
		name     string
		method   string
		scopes   []domain.TokenScope
		viaToken bool
		allowed  bool
	}{
		{"read token lists expenses", http.MethodGet, readOnly, true, true},
		{"read token cannot record expense", http.MethodPost, readOnly, true, false},
		{"read token cannot delete", http.MethodDelete, readOnly, true, false},
		{"write token records expense", http.MethodPost, readWrite, true, true},
		{"check-only token cannot read", http.MethodGet, []domain.TokenScope{domain.ScopeAlertCheck}, true, false},
		{"session is unscoped", http.MethodDelete, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, called := runScoped(t, RequireMethodScope(), tt.method, tt.scopes, tt.viaToken)
			if called != tt.allowed {
				t.Errorf("Expected handler called=%v, got %v (status %d)", tt.allowed, called, rec.Code)
			}
			if !tt.allowed && rec.Code != http.StatusForbidden {
				t.Errorf("Expected status 403, got %d", rec.Code)
			}
		})
	}
}

func TestRequireScope_AlertCheck(t *testing.T) {
	mw := RequireScope(domain.ScopeAlertCheck)

	if _, called := runScoped(t, mw, http.MethodPost, []domain.TokenScope{domain.ScopeRead, domain.ScopeWrite}, true); called {
		t.Error("Write token should not trigger alert checks")
	}
	if _, called := runScoped(t, mw, http.MethodPost, []domain.TokenScope{domain.ScopeAlertCheck}, true); !called {
		t.Error("Alert check token should be allowed")
	}
}
