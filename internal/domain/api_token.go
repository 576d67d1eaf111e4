package domain

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// TokenScope limits what an API token may do.
// Session JWTs are never scoped.
type TokenScope string

const (
	// ScopeRead allows reading categories, budgets, goals, transactions, alerts and reports
	ScopeRead TokenScope = "read"
	// ScopeWrite allows recording transactions, maintaining budgets and goals and managing alerts
	ScopeWrite TokenScope = "write"
	// ScopeAlertCheck allows triggering an alert evaluation
	ScopeAlertCheck TokenScope = "alerts:check"
)

// AllTokenScopes lists every scope a token can be granted
var AllTokenScopes = []TokenScope{ScopeRead, ScopeWrite, ScopeAlertCheck}

// IsValid reports whether the scope is known
func (s TokenScope) IsValid() bool {
	return slices.Contains(AllTokenScopes, s)
}

// NormalizeScopes validates scopes and returns them deduplicated in canonical order.
// An empty list grants read-only access.
func NormalizeScopes(scopes []TokenScope) ([]TokenScope, error) {
	if len(scopes) == 0 {
		return []TokenScope{ScopeRead}, nil
	}
	for _, s := range scopes {
		if !s.IsValid() {
			return nil, ErrInvalidTokenScope
		}
	}
	result := make([]TokenScope, 0, len(scopes))
	for _, s := range AllTokenScopes {
		if slices.Contains(scopes, s) {
			result = append(result, s)
		}
	}
	return result, nil
}

// APIToken is a personal access token for dashboards and automations
type APIToken struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"userId"`
	Description string       `json:"description"`
	Scopes      []TokenScope `json:"scopes"`
	TokenHash   string       `json:"-"`
	TokenPrefix string       `json:"tokenPrefix"`
	LastUsedAt  *time.Time   `json:"lastUsedAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	RevokedAt   *time.Time   `json:"revokedAt,omitempty"`
}

// HasScope reports whether the token was granted scope
func (t *APIToken) HasScope(scope TokenScope) bool {
	return slices.Contains(t.Scopes, scope)
}

// APITokenResponse is a token in list responses, without secrets
type APITokenResponse struct {
	ID          uuid.UUID    `json:"id"`
	Description string       `json:"description"`
	Scopes      []TokenScope `json:"scopes"`
	TokenPrefix string       `json:"tokenPrefix"`
	CreatedAt   time.Time    `json:"createdAt"`
	LastUsedAt  *time.Time   `json:"lastUsedAt,omitempty"`
}

// CreateAPITokenResponse carries the plain token, returned once
type CreateAPITokenResponse struct {
	ID          uuid.UUID    `json:"id"`
	Description string       `json:"description"`
	Scopes      []TokenScope `json:"scopes"`
	TokenPrefix string       `json:"tokenPrefix"`
	Token       string       `json:"token"`
	CreatedAt   time.Time    `json:"createdAt"`
	Warning     string       `json:"warning"`
}

// APITokenRepository defines the interface for API token persistence
type APITokenRepository interface {
	Create(ctx context.Context, token *APIToken) error
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*APIToken, error)
	GetByHash(ctx context.Context, hash string) (*APIToken, error)
	Revoke(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
	UpdateLastUsed(ctx context.Context, id uuid.UUID) error
}
