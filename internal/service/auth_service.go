package service

import (
	"context"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuthService handles authentication-related business logic
type AuthService struct {
	userRepo     domain.UserRepository
	provisioning *ProvisioningService
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, provisioning *ProvisioningService) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		provisioning: provisioning,
	}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	User              *domain.User
	IsNewUser         bool
	CategoriesCreated int
}

// AuthenticateUser handles the authentication flow after Auth0 callback.
// New users are provisioned with the default categories.
func (s *AuthService) AuthenticateUser(ctx context.Context, auth0ID, email string, name, pictureURL *string) (*AuthResult, error) {
	user, created, err := s.userRepo.CreateOrGetByAuth0ID(ctx, auth0ID, email, name, pictureURL)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to create or get user")
		return nil, err
	}

	if !created {
		log.Info().Str("user_id", user.ID.String()).Msg("Existing user authenticated")
		return &AuthResult{User: user}, nil
	}

	count, err := s.provisioning.ProvisionUser(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to provision new user")
		return nil, err
	}

	log.Info().Str("user_id", user.ID.String()).Msg("Created new user")
	return &AuthResult{
		User:              user,
		IsNewUser:         true,
		CategoriesCreated: count,
	}, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetUserByAuth0ID retrieves a user by their Auth0 ID
func (s *AuthService) GetUserByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(ctx, auth0ID)
}
