package service

import (
	"context"
	"testing"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/testutil"
	"github.com/google/uuid"
)

func newAuthService() (*AuthService, *testutil.MockUserRepository, *testutil.MockCategoryRepository) {
	userRepo := testutil.NewMockUserRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	return NewAuthService(userRepo, NewProvisioningService(categoryRepo)), userRepo, categoryRepo
}

func TestAuthenticateUser_NewUser(t *testing.T) {
	service, _, categoryRepo := newAuthService()

	auth0ID := "auth0|12345"
	email := "test@example.com"
	name := "Test User"

	result, err := service.AuthenticateUser(context.Background(), auth0ID, email, &name, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !result.IsNewUser {
		t.Error("Expected IsNewUser to be true for new user")
	}
	if result.User.Auth0ID != auth0ID {
		t.Errorf("Expected auth0ID %s, got %s", auth0ID, result.User.Auth0ID)
	}
	if result.User.Email != email {
		t.Errorf("Expected email %s, got %s", email, result.User.Email)
	}
	if result.User.BaseCurrency != domain.DefaultBaseCurrency {
		t.Errorf("Expected base currency %s, got %s", domain.DefaultBaseCurrency, result.User.BaseCurrency)
	}

	expected := len(DefaultIncomeCategories) + len(DefaultExpenseCategories)
	if result.CategoriesCreated != expected {
		t.Errorf("Expected %d categories created, got %d", expected, result.CategoriesCreated)
	}
	categories, _ := categoryRepo.GetAllByUser(context.Background(), result.User.ID, nil)
	if len(categories) != expected {
		t.Errorf("Expected %d categories stored, got %d", expected, len(categories))
	}
}

func TestAuthenticateUser_ExistingUser(t *testing.T) {
	service, userRepo, categoryRepo := newAuthService()

	existing := &domain.User{ID: uuid.New(), Auth0ID: "auth0|existing", Email: "existing@example.com"}
	userRepo.AddUser(existing)

	result, err := service.AuthenticateUser(context.Background(), "auth0|existing", "existing@example.com", nil, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.IsNewUser {
		t.Error("Expected IsNewUser to be false for existing user")
	}
	if result.User.ID != existing.ID {
		t.Errorf("Expected user ID %s, got %s", existing.ID, result.User.ID)
	}
	if len(categoryRepo.Categories) != 0 {
		t.Errorf("Existing users must not be re-provisioned, got %d categories", len(categoryRepo.Categories))
	}
}

func TestGetUserByAuth0ID_NotFound(t *testing.T) {
	service, _, _ := newAuthService()

	_, err := service.GetUserByAuth0ID(context.Background(), "auth0|missing")
	if err != domain.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}
