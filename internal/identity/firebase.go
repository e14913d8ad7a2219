// Package identity adapts Firebase Authentication to core.IdentityProvider.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"residentbook-backend-go/internal/core"
	"residentbook-backend-go/internal/models"
)

// Firebase creates accounts and verifies tokens with the Admin SDK, and signs
// users in with the Identity Toolkit REST API, which needs the project's web
// API key.
type Firebase struct {
	auth    *auth.Client
	toolkit *identitytoolkit.Service
	logger  *zap.Logger
}

// NewFirebase builds the provider. Extra options are passed to the Identity
// Toolkit client.
func NewFirebase(ctx context.Context, authClient *auth.Client, webAPIKey string, logger *zap.Logger, opts ...option.ClientOption) (*Firebase, error) {
	if webAPIKey == "" {
		return nil, errors.New("identity: FIREBASE_WEB_API_KEY must be set for password sign-in")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(webAPIKey)}, opts...)
	toolkit, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("identitytoolkit.NewService: %w", err)
	}
	return &Firebase{auth: authClient, toolkit: toolkit, logger: logger}, nil
}

var _ core.IdentityProvider = (*Firebase)(nil)

func (f *Firebase) CreateAccount(ctx context.Context, email, password string) (string, error) {
	params := (&auth.UserToCreate{}).Email(email).Password(password)
	record, err := f.auth.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", fmt.Errorf("%w: %s", core.ErrEmailTaken, email)
		}
		return "", fmt.Errorf("auth.CreateUser: %w", err)
	}
	f.logger.Debug("Firebase account created", zap.String("userId", record.UID))
	return record.UID, nil
}

func (f *Firebase) Authenticate(ctx context.Context, email, password string) (*models.AuthTokens, error) {
	req := &identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}
	resp, err := f.toolkit.Relyingparty.VerifyPassword(req).Context(ctx).Do()
	if err != nil {
		return nil, mapSignInError(err)
	}
	return &models.AuthTokens{
		UserID:       resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}, nil
}

// mapSignInError reports rejected credentials (unknown email, wrong password,
// disabled account) as core.ErrInvalidCredentials.
func mapSignInError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
		return fmt.Errorf("%w: %s", core.ErrInvalidCredentials, apiErr.Message)
	}
	return fmt.Errorf("verifyPassword: %w", err)
}

// SignOut revokes every refresh token of the user. ID tokens issued before
// the revocation fail VerifyToken.
func (f *Firebase) SignOut(ctx context.Context, userID string) error {
	if err := f.auth.RevokeRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("auth.RevokeRefreshTokens: %w", err)
	}
	return nil
}

func (f *Firebase) VerifyToken(ctx context.Context, idToken string) (*models.TokenClaims, error) {
	token, err := f.auth.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidCredentials, err)
	}
	claims := &models.TokenClaims{UserID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		claims.Email = email
	}
	return claims, nil
}
