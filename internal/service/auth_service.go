package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-attend-api/internal/models"
	appErrors "github.com/noah-isme/campus-attend-api/pkg/errors"
)

// AuthConfig defines configuration for token validation.
type AuthConfig struct {
	JWTSecret   string
	AllowGuest  bool
	GuestUserID string
}

// AuthService validates bearer tokens issued by the external identity
// provider. There is no login flow here; the API only needs to resolve a
// request to a user id. When guest access is enabled, unauthenticated
// requests map onto a fixed guest identity.
type AuthService struct {
	logger *zap.Logger
	config AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(config AuthConfig, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.GuestUserID == "" {
		config.GuestUserID = "guest"
	}
	return &AuthService{logger: logger, config: config}
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token missing user id")
	}
	return claims, nil
}

// GuestClaims returns the guest identity, or nil when guest access is off.
func (s *AuthService) GuestClaims() *models.JWTClaims {
	if !s.config.AllowGuest {
		return nil
	}
	return &models.JWTClaims{UserID: s.config.GuestUserID}
}
