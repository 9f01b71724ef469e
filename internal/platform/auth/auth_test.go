package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/confengine/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "thisisasecretkeythatis32charslong!!"

func securityConfig(t *testing.T, vars ...string) config.SecurityConfig {
	t.Helper()

	environ := append([]string{"APP_ENV=testing"}, vars...)
	m := config.NewManager(config.ManagerOptions{
		Environ: func() []string { return environ },
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	_, err := m.Resolve()
	require.NoError(t, err)

	cfg, err := config.NewSecurityConfig(m)
	require.NoError(t, err)
	return cfg
}

func TestNewTokenServiceRejectsUnusableSecrets(t *testing.T) {
	t.Run("placeholder secret", func(t *testing.T) {
		_, err := NewTokenService(securityConfig(t))
		require.ErrorIs(t, err, ErrUnusableSecret)
	})

	t.Run("short secret", func(t *testing.T) {
		_, err := NewTokenService(securityConfig(t, "SECRET_KEY=short-but-set"))
		require.ErrorIs(t, err, ErrUnusableSecret)
	})

	t.Run("jwt secret overrides short secret key", func(t *testing.T) {
		svc, err := NewTokenService(securityConfig(t, "SECRET_KEY=short", "JWT_SECRET_KEY="+testSecret))
		require.NoError(t, err)
		assert.Equal(t, []byte(testSecret), svc.signingKey)
	})
}

func TestTokenRoundTrip(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		t.Run(alg, func(t *testing.T) {
			svc, err := NewTokenService(securityConfig(t, "SECRET_KEY="+testSecret, "JWT_ALGORITHM="+alg))
			require.NoError(t, err)

			ctx := context.Background()
			userID := uuid.New()

			access, err := svc.GenerateToken(ctx, userID)
			require.NoError(t, err)
			claims, err := svc.ValidateToken(ctx, access)
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
			assert.Equal(t, TokenTypeAccess, claims.TokenType)

			refresh, err := svc.GenerateRefreshToken(ctx, userID)
			require.NoError(t, err)
			claims, err = svc.ValidateRefreshToken(ctx, refresh)
			require.NoError(t, err)
			assert.Equal(t, TokenTypeRefresh, claims.TokenType)

			_, err = svc.ValidateToken(ctx, refresh)
			assert.ErrorIs(t, err, ErrWrongTokenType)
			_, err = svc.ValidateRefreshToken(ctx, access)
			assert.ErrorIs(t, err, ErrWrongTokenType)
		})
	}
}

func TestTokenLifetimeFollowsConfig(t *testing.T) {
	svc, err := NewTokenService(securityConfig(t, "SECRET_KEY="+testSecret))
	require.NoError(t, err)

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.timeFunc = func() time.Time { return issued }

	ctx := context.Background()
	token, err := svc.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	// testing environment default for JWT_ACCESS_TOKEN_EXPIRES
	assert.True(t, issued.Add(5*time.Minute).Equal(claims.ExpiresAt), "expires at %v", claims.ExpiresAt)

	svc.timeFunc = func() time.Time { return issued.Add(5*time.Minute + 3*time.Minute) }
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, err := NewTokenService(securityConfig(t, "SECRET_KEY="+testSecret))
	require.NoError(t, err)
	other, err := NewTokenService(securityConfig(t, "SECRET_KEY=another-secret-that-is-long-enough-32"))
	require.NoError(t, err)

	ctx := context.Background()
	token, err := other.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHasher(t *testing.T) {
	hasher, err := NewPasswordHasher(securityConfig(t, "BCRYPT_COST=5"))
	require.NoError(t, err)
	assert.Equal(t, 5, hasher.cost)

	hashed, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NoError(t, hasher.Compare(hashed, "correct horse battery staple"))
	assert.Error(t, hasher.Compare(hashed, "wrong"))
}
