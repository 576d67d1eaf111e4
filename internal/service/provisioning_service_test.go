package service

import (
	"context"
	"testing"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisionUser_CreatesDefaults(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewProvisioningService(repo)
	userID := uuid.New()

	created, err := service.ProvisionUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 15, created)

	incomeType := domain.CategoryTypeIncome
	incomes, err := repo.GetAllByUser(context.Background(), userID, &domain.CategoryFilters{Type: &incomeType})
	require.NoError(t, err)
	assert.Len(t, incomes, 5)

	groceries, err := repo.GetByName(context.Background(), userID, "Groceries", domain.CategoryTypeExpense)
	require.NoError(t, err)
	assert.True(t, groceries.IsDefault)
	require.NotNil(t, groceries.UserID)
	assert.Equal(t, userID, *groceries.UserID)
}

func TestProvisionUser_Idempotent(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewProvisioningService(repo)
	userID := uuid.New()

	_, err := service.ProvisionUser(context.Background(), userID)
	require.NoError(t, err)

	created, err := service.ProvisionUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, repo.Categories, 15)
}

func TestProvisionUser_SkipsExistingNames(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewProvisioningService(repo)
	userID := uuid.New()

	repo.AddCategory(&domain.Category{UserID: &userID, Name: "Salary", Type: domain.CategoryTypeIncome})
	repo.AddCategory(&domain.Category{UserID: &userID, Name: "Dining", Type: domain.CategoryTypeExpense})

	created, err := service.ProvisionUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 13, created)
}

func TestProvisionUser_UsersAreIndependent(t *testing.T) {
	repo := testutil.NewMockCategoryRepository()
	service := NewProvisioningService(repo)

	first, err := service.ProvisionUser(context.Background(), uuid.New())
	require.NoError(t, err)
	second, err := service.ProvisionUser(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
