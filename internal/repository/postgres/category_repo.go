package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const categoryColumns = `id, user_id, name, type, description, icon, is_default, created_at, updated_at`

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		INSERT INTO categories (user_id, name, type, description, icon, is_default)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + categoryColumns

	row := r.pool.QueryRow(ctx, query,
		category.UserID,
		category.Name,
		string(category.Type),
		category.Description,
		category.Icon,
		category.IsDefault,
	)
	created, err := scanCategory(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrCategoryAlreadyExists
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// GetByID returns a category owned by the user or a system default
func (r *CategoryRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND (user_id = $2 OR user_id IS NULL)`
	category, err := scanCategory(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, notFound(err, domain.ErrCategoryNotFound, "get category")
	}
	return category, nil
}

// GetByName looks a category up case-insensitively within the user's scope
func (r *CategoryRepository) GetByName(ctx context.Context, userID uuid.UUID, name string, categoryType domain.CategoryType) (*domain.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE (user_id = $1 OR user_id IS NULL) AND type = $2 AND LOWER(name) = LOWER($3)
		ORDER BY user_id NULLS LAST
		LIMIT 1`
	category, err := scanCategory(r.pool.QueryRow(ctx, query, userID, string(categoryType), name))
	if err != nil {
		return nil, notFound(err, domain.ErrCategoryNotFound, "get category by name")
	}
	return category, nil
}

// GetAllByUser returns the user's categories plus system defaults, ordered by name
func (r *CategoryRepository) GetAllByUser(ctx context.Context, userID uuid.UUID, filters *domain.CategoryFilters) ([]*domain.Category, error) {
	conditions := []string{"(user_id = $1 OR user_id IS NULL)"}
	args := []any{userID}

	if filters != nil {
		if filters.Type != nil {
			args = append(args, string(*filters.Type))
			conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
		}
		if filters.IsDefault != nil {
			args = append(args, *filters.IsDefault)
			conditions = append(conditions, fmt.Sprintf("is_default = $%d", len(args)))
		}
		if search := strings.TrimSpace(filters.Search); search != "" {
			args = append(args, "%"+search+"%")
			conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
		}
	}

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY name, id`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return collect(rows, scanCategory)
}

// Update updates a user-owned category; system defaults are never matched
func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		UPDATE categories
		SET name = $3, type = $4, description = $5, icon = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + categoryColumns

	row := r.pool.QueryRow(ctx, query,
		category.ID,
		category.UserID,
		category.Name,
		string(category.Type),
		category.Description,
		category.Icon,
	)
	updated, err := scanCategory(row)
	if err != nil {
		if isPgUniqueViolation(err) {
			return nil, domain.ErrCategoryAlreadyExists
		}
		return nil, notFound(err, domain.ErrCategoryNotFound, "update category")
	}
	return updated, nil
}

// Delete deletes a user-owned category
func (r *CategoryRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	category := &domain.Category{}
	var categoryType string
	err := row.Scan(
		&category.ID,
		&category.UserID,
		&category.Name,
		&categoryType,
		&category.Description,
		&category.Icon,
		&category.IsDefault,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	category.Type = domain.CategoryType(categoryType)
	return category, nil
}
