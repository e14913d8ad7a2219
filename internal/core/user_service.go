package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"residentbook-backend-go/internal/db"
	"residentbook-backend-go/internal/models"
	"residentbook-backend-go/pkg/cache"
)

// userService implements the UserService interface.
type userService struct {
	userRepo db.UserRepository
	identity IdentityProvider
	cache    cache.Cache
	cacheTTL time.Duration
	audit    AuditService
	logger   *zap.Logger
}

// NewUserService creates a new UserService instance. A nil cache disables
// role caching.
func NewUserService(userRepo db.UserRepository, identity IdentityProvider, c cache.Cache, cacheTTL time.Duration, as AuditService, logger *zap.Logger) UserService {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &userService{
		userRepo: userRepo,
		identity: identity,
		cache:    c,
		cacheTTL: cacheTTL,
		audit:    as,
		logger:   logger,
	}
}

func roleKey(userID string) string { return "user:role:" + userID }

// Signup creates the identity account, then the users/{uid} role document.
func (s *userService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := Validate(req); err != nil {
		return nil, err
	}

	uid, err := s.identity.CreateAccount(ctx, req.Email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	user := &models.User{ID: uid, Email: req.Email, Role: req.Role}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// The account exists without a role; login will report ErrNoRole.
		s.logger.Error("Account created but role document write failed",
			zap.String("userId", uid), zap.Error(err))
		return nil, fmt.Errorf("failed to store role for user '%s': %w", uid, err)
	}
	s.cacheRole(ctx, uid, user.Role)

	s.logger.Info("User signed up", zap.String("userId", uid), zap.String("role", user.Role))
	recordAudit(ctx, s.audit, s.logger, models.AuditLog{
		UserID: uid, Action: models.AuditUserSignup,
		TargetType: models.TargetUser, TargetID: uid,
		Details: map[string]interface{}{"role": user.Role},
	})
	return user, nil
}

// Login verifies the password and loads the role. A user without a role
// document cannot log in.
func (s *userService) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := Validate(req); err != nil {
		return nil, err
	}

	tokens, err := s.identity.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	role, err := s.Role(ctx, tokens.UserID)
	if err != nil {
		return nil, err
	}

	email := tokens.Email
	if email == "" {
		email = req.Email
	}
	return &models.Session{
		UserID:       tokens.UserID,
		Email:        email,
		Role:         role,
		IDToken:      tokens.IDToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	}, nil
}

// Logout revokes the user's refresh tokens and drops the cached role.
func (s *userService) Logout(ctx context.Context, userID string) error {
	if err := s.identity.SignOut(ctx, userID); err != nil {
		return fmt.Errorf("failed to sign out user '%s': %w", userID, err)
	}
	if err := s.cache.Delete(ctx, roleKey(userID)); err != nil {
		s.logger.Debug("Failed to evict cached role", zap.String("userId", userID), zap.Error(err))
	}
	return nil
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	return user, nil
}

func (s *userService) Role(ctx context.Context, userID string) (string, error) {
	if role, err := s.cache.Get(ctx, roleKey(userID)); err == nil {
		return role, nil
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNoRole, userID)
		}
		return "", err
	}
	if user.Role != models.RoleAdmin && user.Role != models.RoleResident {
		return "", fmt.Errorf("%w: %s has role %q", ErrNoRole, userID, user.Role)
	}
	s.cacheRole(ctx, userID, user.Role)
	return user.Role, nil
}

func (s *userService) cacheRole(ctx context.Context, userID, role string) {
	if err := s.cache.Set(ctx, roleKey(userID), role, s.cacheTTL); err != nil {
		s.logger.Debug("Failed to cache role", zap.String("userId", userID), zap.Error(err))
	}
}
