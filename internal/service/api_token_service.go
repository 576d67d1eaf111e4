package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	tokenPrefix      = "sntl_"
	tokenRandomBytes = 32
	maxTokensPerUser = 10
	// visible characters after the prefix in listings, e.g. "sntl_Ab3dEf9x..."
	tokenHintLength = 8
)

// last_used_at is only rewritten when older than this
const lastUsedResolution = time.Minute

const tokenWarning = "Copy this token now. Sentinel stores only its hash and cannot show it again."

// APITokenService issues and validates scoped personal access tokens
type APITokenService struct {
	repo domain.APITokenRepository
	now  func() time.Time
}

// NewAPITokenService creates a new APITokenService
func NewAPITokenService(repo domain.APITokenRepository) *APITokenService {
	return &APITokenService{repo: repo, now: time.Now}
}

// Create issues a token with the given scopes; without scopes the token is read-only.
// The plain token is only part of this response.
func (s *APITokenService) Create(ctx context.Context, userID uuid.UUID, description string, scopes ...domain.TokenScope) (*domain.CreateAPITokenResponse, error) {
	granted, err := domain.NormalizeScopes(scopes)
	if err != nil {
		return nil, err
	}

	active, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(active) >= maxTokensPerUser {
		return nil, domain.ErrTooManyAPITokens
	}

	secret, err := generateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	plain := tokenPrefix + secret

	token := &domain.APIToken{
		UserID:      userID,
		Description: description,
		Scopes:      granted,
		TokenHash:   hashToken(plain),
		TokenPrefix: tokenPrefix + secret[:tokenHintLength] + "...",
	}
	if err := s.repo.Create(ctx, token); err != nil {
		return nil, err
	}

	log.Info().
		Str("token_id", token.ID.String()).
		Str("user_id", userID.String()).
		Strs("scopes", scopeStrings(granted)).
		Msg("API token issued")

	return &domain.CreateAPITokenResponse{
		ID:          token.ID,
		Description: token.Description,
		Scopes:      token.Scopes,
		TokenPrefix: token.TokenPrefix,
		Token:       plain,
		CreatedAt:   token.CreatedAt,
		Warning:     tokenWarning,
	}, nil
}

// GetByUser lists the user's active tokens
func (s *APITokenService) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.APITokenResponse, error) {
	tokens, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.APITokenResponse, 0, len(tokens))
	for _, t := range tokens {
		result = append(result, &domain.APITokenResponse{
			ID:          t.ID,
			Description: t.Description,
			Scopes:      t.Scopes,
			TokenPrefix: t.TokenPrefix,
			CreatedAt:   t.CreatedAt,
			LastUsedAt:  t.LastUsedAt,
		})
	}
	return result, nil
}

// Revoke revokes one of the user's tokens
func (s *APITokenService) Revoke(ctx context.Context, userID uuid.UUID, tokenID uuid.UUID) error {
	if err := s.repo.Revoke(ctx, userID, tokenID); err != nil {
		return err
	}
	log.Info().Str("user_id", userID.String()).Str("token_id", tokenID.String()).Msg("API token revoked")
	return nil
}

// ValidateToken resolves an active token from its plain form
func (s *APITokenService) ValidateToken(ctx context.Context, token string) (*domain.APIToken, error) {
	if !strings.HasPrefix(token, tokenPrefix) {
		return nil, domain.ErrAPITokenNotFound
	}

	apiToken, err := s.repo.GetByHash(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}

	// automations poll reports every few seconds; one write per minute is enough
	if needsTouch(apiToken.LastUsedAt, s.now()) {
		id := apiToken.ID
		go func() {
			if err := s.repo.UpdateLastUsed(context.Background(), id); err != nil {
				log.Warn().Err(err).Str("token_id", id.String()).Msg("Failed to record API token use")
			}
		}()
	}

	return apiToken, nil
}

func needsTouch(lastUsed *time.Time, now time.Time) bool {
	return lastUsed == nil || now.Sub(*lastUsed) >= lastUsedResolution
}

func generateSecureToken() (string, error) {
	buf := make([]byte, tokenRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func scopeStrings(scopes []domain.TokenScope) []string {
	out := make([]string, len(scopes))
	for i, s := range scopes {
		out[i] = string(s)
	}
	return out
}
