package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/google/uuid"
)

// MockAPITokenValidator implements APITokenValidator for testing
type MockAPITokenValidator struct {
	token *domain.APIToken
	err   error
	calls int
}

func (m *MockAPITokenValidator) ValidateToken(ctx context.Context, token string) (*domain.APIToken, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.token, nil
}

func TestAPITokenAuth_Success(t *testing.T) {
	tokenID := uuid.New()
	userID := uuid.New()

	validator := &MockAPITokenValidator{
		token: &domain.APIToken{ID: tokenID, UserID: userID, Scopes: []domain.TokenScope{domain.ScopeRead}},
	}
	mw := NewAPITokenAuthMiddleware(validator)

	rec, c, called := runAuth(t, mw.Authenticate(), "Bearer sntl_testtoken123")
	if !called {
		t.Fatalf("Handler was not called, status %d", rec.Code)
	}
	if GetUserID(c) != userID {
		t.Errorf("Expected user ID %s, got %s", userID, GetUserID(c))
	}
	if GetAPITokenID(c) != tokenID {
		t.Errorf("Expected token ID %s, got %s", tokenID, GetAPITokenID(c))
	}
	if !IsAPITokenAuth(c) {
		t.Error("Expected IsAPITokenAuth to be true")
	}
	if scopes := GetAPITokenScopes(c); len(scopes) != 1 || scopes[0] != domain.ScopeRead {
		t.Errorf("Expected read scope in context, got %v", scopes)
	}
}

func TestAPITokenAuth_Rejections(t *testing.T) {
	tests := []struct {
		name          string
		header        string
		err           error
		wantValidated bool
	}{
		{"missing header", "", nil, false},
		{"invalid format", "sntl_abc", nil, false},
		{"wrong prefix", "Bearer fort_abc", nil, false},
		{"revoked token", "Bearer sntl_revoked", domain.ErrAPITokenNotFound, true},
		{"repository failure", "Bearer sntl_abc", errors.New("db down"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := &MockAPITokenValidator{err: tt.err}
			mw := NewAPITokenAuthMiddleware(validator)

			rec, _, called := runAuth(t, mw.Authenticate(), tt.header)
			if called {
				t.Error("Handler should not be called")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401, got %d", rec.Code)
			}
			if (validator.calls > 0) != tt.wantValidated {
				t.Errorf("Expected validator called=%v, got %d calls", tt.wantValidated, validator.calls)
			}
		})
	}
}
