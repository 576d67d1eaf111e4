package postgres

import (
	"context"
	"fmt"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const apiTokenColumns = `id, user_id, description, scopes, token_hash, token_prefix, last_used_at, created_at, revoked_at`

// APITokenRepository implements domain.APITokenRepository using PostgreSQL
type APITokenRepository struct {
	pool *pgxpool.Pool
}

// NewAPITokenRepository creates a new APITokenRepository
func NewAPITokenRepository(pool *pgxpool.Pool) *APITokenRepository {
	return &APITokenRepository{pool: pool}
}

// Create creates a new API token and fills in the generated ID
func (r *APITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO api_tokens (user_id, description, scopes, token_hash, token_prefix)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		token.UserID,
		token.Description,
		scopesToText(token.Scopes),
		token.TokenHash,
		token.TokenPrefix,
	).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		return fmt.Errorf("create api token: %w", err)
	}
	return nil
}

// GetByUser retrieves all active API tokens of a user
func (r *APITokenRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.APIToken, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apiTokenColumns+`
		FROM api_tokens
		WHERE user_id = $1 AND revoked_at IS NULL
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list api tokens: %w", err)
	}
	return collect(rows, scanAPIToken)
}

// GetByHash retrieves an active API token by its hash (for authentication)
func (r *APITokenRepository) GetByHash(ctx context.Context, hash string) (*domain.APIToken, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+apiTokenColumns+` FROM api_tokens WHERE token_hash = $1 AND revoked_at IS NULL`, hash)
	token, err := scanAPIToken(row)
	if err != nil {
		return nil, notFound(err, domain.ErrAPITokenNotFound, "get api token")
	}
	return token, nil
}

// Revoke marks an API token as revoked
func (r *APITokenRepository) Revoke(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE api_tokens SET revoked_at = NOW()
		WHERE id = $1 AND user_id = $2 AND revoked_at IS NULL`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("revoke api token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAPITokenNotFound
	}
	return nil
}

// UpdateLastUsed updates the last_used_at timestamp for a token
func (r *APITokenRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE api_tokens SET last_used_at = NOW() WHERE id = $1`, id)
	return err
}

func scanAPIToken(row rowScanner) (*domain.APIToken, error) {
	token := &domain.APIToken{}
	var lastUsed, revoked pgtype.Timestamptz
	var scopes []string
	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.Description,
		&scopes,
		&token.TokenHash,
		&token.TokenPrefix,
		&lastUsed,
		&token.CreatedAt,
		&revoked,
	)
	if err != nil {
		return nil, err
	}
	token.Scopes = make([]domain.TokenScope, len(scopes))
	for i, s := range scopes {
		token.Scopes[i] = domain.TokenScope(s)
	}
	token.LastUsedAt = pgTimestamptzToTimePtr(lastUsed)
	token.RevokedAt = pgTimestamptzToTimePtr(revoked)
	return token, nil
}

func scopesToText(scopes []domain.TokenScope) []string {
	out := make([]string, len(scopes))
	for i, s := range scopes {
		out[i] = string(s)
	}
	return out
}
