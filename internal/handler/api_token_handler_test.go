package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/middleware"
	"github.com/dafibh/sentinel/sentinel-backend/internal/service"
	"github.com/dafibh/sentinel/sentinel-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newAPITokenHandler() (*APITokenHandler, *service.APITokenService) {
	tokenService := service.NewAPITokenService(testutil.NewMockAPITokenRepository())
	return NewAPITokenHandler(tokenService), tokenService
}

func TestGetAPITokens_Success(t *testing.T) {
	e := echo.New()
	handler, tokenService := newAPITokenHandler()
	userID := uuid.New()

	if _, err := tokenService.Create(t.Context(), userID, "CI"); err != nil {
		t.Fatalf("Failed to seed token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/api-tokens", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.GetAPITokens(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var tokens []domain.APITokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tokens); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("Expected 1 token, got %d", len(tokens))
	}
	if tokens[0].Description != "CI" {
		t.Errorf("Expected description 'CI', got %s", tokens[0].Description)
	}
}

func TestGetAPITokens_NoAuth(t *testing.T) {
	e := echo.New()
	handler, _ := newAPITokenHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/api-tokens", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetAPITokens(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestCreateAPIToken_Success(t *testing.T) {
	e := echo.New()
	handler, _ := newAPITokenHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/api-tokens", strings.NewReader(`{"description":"Home server"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, uuid.New())

	if err := handler.CreateAPIToken(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var response domain.CreateAPITokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !strings.HasPrefix(response.Token, middleware.APITokenPrefix) {
		t.Errorf("Expected token to start with %s, got %s", middleware.APITokenPrefix, response.Token)
	}
	if response.Description != "Home server" {
		t.Errorf("Expected description 'Home server', got %s", response.Description)
	}
}

func TestCreateAPIToken_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing description", `{"description":""}`},
		{"description too long", `{"description":"` + strings.Repeat("x", 256) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			handler, _ := newAPITokenHandler()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/api-tokens", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			setupUserContext(c, uuid.New())

			if err := handler.CreateAPIToken(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestCreateAPIToken_Scopes(t *testing.T) {
	e := echo.New()
	handler, _ := newAPITokenHandler()

	body := `{"description":"Nightly alerts","scopes":["alerts:check","read"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/api-tokens", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, uuid.New())

	if err := handler.CreateAPIToken(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rec.Code)
	}

	var response domain.CreateAPITokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response.Scopes) != 2 || response.Scopes[0] != domain.ScopeRead || response.Scopes[1] != domain.ScopeAlertCheck {
		t.Errorf("Expected scopes [read alerts:check], got %v", response.Scopes)
	}
}

func TestCreateAPIToken_UnknownScope(t *testing.T) {
	e := echo.New()
	handler, _ := newAPITokenHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/api-tokens", strings.NewReader(`{"description":"x","scopes":["admin"]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, uuid.New())

	if err := handler.CreateAPIToken(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateAPIToken_Limit(t *testing.T) {
	e := echo.New()
	handler, tokenService := newAPITokenHandler()
	userID := uuid.New()

	for i := 0; i < 10; i++ {
		if _, err := tokenService.Create(t.Context(), userID, "seed"); err != nil {
			t.Fatalf("Failed to seed token %d: %v", i, err)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/api-tokens", strings.NewReader(`{"description":"one more"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.CreateAPIToken(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestRevokeAPIToken_Success(t *testing.T) {
	e := echo.New()
	handler, tokenService := newAPITokenHandler()
	userID := uuid.New()

	created, err := tokenService.Create(t.Context(), userID, "to revoke")
	if err != nil {
		t.Fatalf("Failed to seed token: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/api-tokens/"+created.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	setupUserContext(c, userID)

	if err := handler.RevokeAPIToken(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	if _, err := tokenService.ValidateToken(t.Context(), created.Token); err == nil {
		t.Error("Expected revoked token to fail validation")
	}
}

func TestRevokeAPIToken_OtherUser(t *testing.T) {
	e := echo.New()
	handler, tokenService := newAPITokenHandler()

	created, err := tokenService.Create(t.Context(), uuid.New(), "not yours")
	if err != nil {
		t.Fatalf("Failed to seed token: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/api-tokens/"+created.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	setupUserContext(c, uuid.New())

	if err := handler.RevokeAPIToken(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestRevokeAPIToken_InvalidID(t *testing.T) {
	e := echo.New()
	handler, _ := newAPITokenHandler()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/api-tokens/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	setupUserContext(c, uuid.New())

	if err := handler.RevokeAPIToken(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}
