package service

import (
	"errors"

	"github.com/forgo/jobs/api/internal/model"
	"github.com/forgo/jobs/api/pkg/jwt"
)

// TokenService issues and validates session tokens
type TokenService struct {
	jwtService *jwt.Service
}

// TokenServiceConfig holds configuration for the token service
type TokenServiceConfig struct {
	JWTService *jwt.Service
}

// NewTokenService creates a new token service
func NewTokenService(cfg TokenServiceConfig) *TokenService {
	return &TokenService{jwtService: cfg.JWTService}
}

// IssueToken signs a token for the user
func (s *TokenService) IssueToken(user *model.User) (string, error) {
	return s.jwtService.Issue(user.ID, user.Name)
}

// ValidateAccessToken verifies a token and returns its claims.
// Failures are ErrTokenExpired or ErrInvalidToken.
func (s *TokenService) ValidateAccessToken(token string) (*jwt.Claims, error) {
	claims, err := s.jwtService.Verify(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExpiresIn returns the token lifetime in seconds
func (s *TokenService) ExpiresIn() int {
	return int(s.jwtService.GetExpiration().Seconds())
}
