package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/confengine/internal/config"
	"github.com/phrazzld/confengine/internal/platform/logger"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// minSecretLength matches the production requirement for SECRET_KEY.
const minSecretLength = 32

// Claims holds the validated contents of a token.
type Claims struct {
	UserID    uuid.UUID
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

type tokenClaims struct {
	UserID    uuid.UUID `json:"uid"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

// TokenService signs and validates HMAC tokens.
type TokenService struct {
	signingKey []byte
	method     jwt.SigningMethod
	lifetimes  map[string]time.Duration
	timeFunc   func() time.Time // Injectable for testing
	clockSkew  time.Duration
}

// NewTokenService creates a TokenService from the security configuration. It
// refuses placeholder secrets and secrets shorter than 32 characters, so a
// development setup without SECRET_KEY fails here instead of signing with a
// sentinel.
func NewTokenService(cfg config.SecurityConfig) (*TokenService, error) {
	secret := cfg.JWTSecretKey()
	if cfg.IsPlaceholder() || len(secret) < minSecretLength {
		return nil, fmt.Errorf("%w: set SECRET_KEY or JWT_SECRET_KEY to at least %d characters",
			ErrUnusableSecret, minSecretLength)
	}

	method := cfg.SigningMethod()
	if method == nil {
		return nil, fmt.Errorf("unsupported signing method")
	}

	return &TokenService{
		signingKey: []byte(secret),
		method:     method,
		lifetimes: map[string]time.Duration{
			TokenTypeAccess:  cfg.AccessTokenTTL(),
			TokenTypeRefresh: cfg.RefreshTokenTTL(),
		},
		timeFunc:  time.Now,
		clockSkew: 2 * time.Minute,
	}, nil
}

// GenerateToken creates a signed access token for userID.
func (s *TokenService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.generate(ctx, userID, TokenTypeAccess)
}

// GenerateRefreshToken creates a signed refresh token for userID.
func (s *TokenService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.generate(ctx, userID, TokenTypeRefresh)
}

// ValidateToken validates an access token and returns its claims.
func (s *TokenService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.validate(ctx, tokenString, TokenTypeAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims.
func (s *TokenService) ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.validate(ctx, tokenString, TokenTypeRefresh)
}

func (s *TokenService) generate(ctx context.Context, userID uuid.UUID, tokenType string) (string, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	claims := tokenClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetimes[tokenType])),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign token",
			"error", err,
			"user_id", userID,
			"token_type", tokenType,
			"signing_method", s.method.Alg())
		return "", fmt.Errorf("failed to sign %s token with %s: %w", tokenType, s.method.Alg(), err)
	}
	return signed, nil
}

func (s *TokenService) validate(ctx context.Context, tokenString, tokenType string) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		log.Debug("token validation failed", "error", err, "token_type", tokenType)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		log.Debug("token validation failed: wrong token type",
			"expected", tokenType,
			"actual", claims.TokenType)
		return nil, ErrWrongTokenType
	}

	return &Claims{
		UserID:    claims.UserID,
		TokenType: claims.TokenType,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}
