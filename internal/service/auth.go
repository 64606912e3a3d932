package service

import (
	"context"
	"crypto/subtle"
	"sync"

	"go.uber.org/zap"

	"EstateLink/config"
	"EstateLink/pkg/errors"
	"EstateLink/pkg/logger"
	"EstateLink/pkg/token"
)

// AuthService issues admin API tokens. There is no admin table; operators
// authenticate with the deployment-wide API key and get short-lived JWTs.
type AuthService struct{}

var (
	authService *AuthService
	authOnce    sync.Once
)

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = &AuthService{}
	})
	return authService
}

// TokenPair is the login/refresh response payload.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Login exchanges the admin API key for a token pair.
func (s *AuthService) Login(ctx context.Context, adminID, apiKey string) (*TokenPair, error) {
	if adminID == "" {
		return nil, errors.InvalidAdminID
	}

	configured := config.Cfg.AdminAPIKey
	if configured == "" {
		logger.Logger.Warn("Admin login attempted but ADMIN_API_KEY is not configured")
		return nil, errors.Unauthorized
	}

	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(configured)) != 1 {
		logger.Logger.Warn("Admin login rejected", zap.String("admin_id", adminID))
		return nil, errors.Unauthorized
	}

	access, refresh, expiresIn, err := token.GenerateTokenPair(adminID)
	if err != nil {
		return nil, err
	}

	logger.Logger.Info("Admin logged in", zap.String("admin_id", adminID))

	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: expiresIn}, nil
}

// Refresh validates a refresh token and issues a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	adminID, err := token.ValidateRefreshToken(refreshToken)
	if err != nil {
		logger.Logger.Warn("Refresh token rejected", zap.Error(err))
		return nil, errors.Unauthorized
	}

	access, refresh, expiresIn, err := token.GenerateTokenPair(adminID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: expiresIn}, nil
}
