package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"residentbook-backend-go/internal/core"
	"residentbook-backend-go/internal/models"
)

// Context keys set by VerifyToken.
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextUserRole  = "userRole"
)

// ErrorResponse mirrors api.ErrorResponse; it is redeclared here to avoid an
// import cycle.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TokenVerifier checks a bearer ID token.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, idToken string) (*models.TokenClaims, error)
}

// RoleResolver looks up the role stored for a user.
type RoleResolver interface {
	Role(ctx context.Context, userID string) (string, error)
}

// AuthMiddleware authenticates requests and authorizes them by role.
type AuthMiddleware struct {
	verifier TokenVerifier
	roles    RoleResolver
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier TokenVerifier, roles RoleResolver, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil || roles == nil {
		panic("AuthMiddleware requires a token verifier and a role resolver")
	}
	return &AuthMiddleware{verifier: verifier, roles: roles, logger: logger}
}

// VerifyToken verifies the ID token from the Authorization header, resolves
// the caller's role and stores both in the Gin context.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}

		scheme, idToken, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(idToken) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		claims, err := m.verifier.VerifyToken(c.Request.Context(), strings.TrimSpace(idToken))
		if err != nil {
			m.logger.Debug("ID token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		role, err := m.roles.Role(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, core.ErrNoRole) {
				c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: core.ErrNoRole.Error()})
				return
			}
			m.logger.Error("Failed to resolve user role", zap.String("userId", claims.UserID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to resolve user role"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, role)
		c.Next()
	}
}

// RequireRole allows the request only when the caller holds one of roles.
// It must run after VerifyToken.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		if !slices.Contains(roles, role) {
			m.logger.Info("Role not permitted",
				zap.String("userId", c.GetString(ContextUserID)), zap.String("role", role), zap.Strings("allowed", roles))
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "You do not have permission to perform this action"})
			return
		}
		c.Next()
	}
}

// ActorFrom returns the authenticated caller stored by VerifyToken.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	uid := c.GetString(ContextUserID)
	if uid == "" {
		return models.Actor{}, false
	}
	return models.Actor{
		UserID: uid,
		Email:  c.GetString(ContextUserEmail),
		Role:   c.GetString(ContextUserRole),
	}, true
}
