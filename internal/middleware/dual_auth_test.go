package middleware

import (
	"net/http"
	"testing"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/google/uuid"
)

func newDualAuth(userID uuid.UUID, tokenUserID uuid.UUID) *DualAuthMiddleware {
	jwtAuth := NewAuthMiddlewareWithValidator(
		&fakeJWTValidator{validToken: "jwt-token", subject: "auth0|jane"},
		&fakeUserProvider{users: map[string]uuid.UUID{"auth0|jane": userID}},
	)
	apiAuth := NewAPITokenAuthMiddleware(&MockAPITokenValidator{
		token: &domain.APIToken{ID: uuid.New(), UserID: tokenUserID},
	})
	return NewDualAuthMiddleware(jwtAuth, apiAuth)
}

func TestDualAuth_RoutesByTokenFormat(t *testing.T) {
	jwtUser := uuid.New()
	tokenUser := uuid.New()
	dualAuth := newDualAuth(jwtUser, tokenUser)

	tests := []struct {
		name     string
		header   string
		wantUser uuid.UUID
		viaToken bool
	}{
		{"jwt bearer", "Bearer jwt-token", jwtUser, false},
		{"api token bearer", "Bearer sntl_abc", tokenUser, true},
		{"bare api token", "sntl_abc", tokenUser, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, c, called := runAuth(t, dualAuth.Authenticate(), tt.header)
			if !called {
				t.Fatalf("Handler was not called, status %d", rec.Code)
			}
			if GetUserID(c) != tt.wantUser {
				t.Errorf("Expected user %s, got %s", tt.wantUser, GetUserID(c))
			}
			if IsAPITokenAuth(c) != tt.viaToken {
				t.Errorf("Expected IsAPITokenAuth=%v", tt.viaToken)
			}
		})
	}
}

func TestDualAuth_JWTOnly_RejectsAPIToken(t *testing.T) {
	dualAuth := newDualAuth(uuid.New(), uuid.New())

	rec, _, called := runAuth(t, dualAuth.JWTOnly(), "Bearer sntl_testtoken123")
	if called {
		t.Error("Handler should not be called")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestDualAuth_JWTOnly_AcceptsJWT(t *testing.T) {
	userID := uuid.New()
	dualAuth := newDualAuth(userID, uuid.New())

	_, c, called := runAuth(t, dualAuth.JWTOnly(), "Bearer jwt-token")
	if !called {
		t.Fatal("Expected handler to be called")
	}
	if GetUserID(c) != userID {
		t.Errorf("Expected user %s, got %s", userID, GetUserID(c))
	}
}

func TestDualAuth_InvalidHeaders(t *testing.T) {
	dualAuth := newDualAuth(uuid.New(), uuid.New())

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"no space", "BearerToken"},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bad jwt", "Bearer forged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, called := runAuth(t, dualAuth.Authenticate(), tt.header)
			if called {
				t.Error("Handler should not be called")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", rec.Code)
			}
		})
	}
}
