package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitmanager/backend/internal/infrastructure/auth"
	"github.com/fitmanager/backend/internal/infrastructure/config"
)

const (
	testSecret = "test-secret-key-with-enough-length!"
	testIssuer = "fitmanager-auth"
)

func newTestService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret: testSecret,
		Issuer: testIssuer,
	})
}

type tokenOptions struct {
	secret    string
	issuer    string
	tokenType auth.TokenType
	tenantID  string
	userID    string
	expiresAt time.Time
	notBefore time.Time
}

func defaultTokenOptions() tokenOptions {
	now := time.Now()
	return tokenOptions{
		secret:    testSecret,
		issuer:    testIssuer,
		tokenType: auth.TokenTypeAccess,
		tenantID:  uuid.New().String(),
		userID:    uuid.New().String(),
		expiresAt: now.Add(15 * time.Minute),
		notBefore: now,
	}
}

func signToken(t *testing.T, opts tokenOptions) string {
	t.Helper()

	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    opts.issuer,
			Subject:   opts.userID,
			ExpiresAt: jwt.NewNumericDate(opts.expiresAt),
			NotBefore: jwt.NewNumericDate(opts.notBefore),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		TenantID:  opts.tenantID,
		UserID:    opts.userID,
		TokenType: opts.tokenType,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(opts.secret))
	require.NoError(t, err)
	return token
}

func TestValidateAccessToken(t *testing.T) {
	svc := newTestService()
	opts := defaultTokenOptions()

	claims, err := svc.ValidateAccessToken(signToken(t, opts))

	require.NoError(t, err)
	assert.Equal(t, opts.tenantID, claims.TenantID)
	assert.Equal(t, opts.userID, claims.UserID)
	assert.Equal(t, auth.TokenTypeAccess, claims.TokenType)
}

func TestValidateAccessTokenFailures(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name     string
		mutate   func(*tokenOptions)
		expected error
	}{
		{
			name:     "expired token",
			mutate:   func(o *tokenOptions) { o.expiresAt = time.Now().Add(-time.Minute) },
			expected: auth.ErrExpiredToken,
		},
		{
			name:     "not yet valid",
			mutate:   func(o *tokenOptions) { o.notBefore = time.Now().Add(time.Hour) },
			expected: auth.ErrTokenNotYetValid,
		},
		{
			name:     "wrong secret",
			mutate:   func(o *tokenOptions) { o.secret = "another-secret-key-with-enough-len" },
			expected: auth.ErrInvalidToken,
		},
		{
			name:     "wrong issuer",
			mutate:   func(o *tokenOptions) { o.issuer = "someone-else" },
			expected: auth.ErrInvalidIssuer,
		},
		{
			name:     "refresh token rejected",
			mutate:   func(o *tokenOptions) { o.tokenType = auth.TokenTypeRefresh },
			expected: auth.ErrInvalidTokenType,
		},
		{
			name:     "missing tenant id",
			mutate:   func(o *tokenOptions) { o.tenantID = "" },
			expected: auth.ErrMissingTenantID,
		},
		{
			name:     "missing user id",
			mutate:   func(o *tokenOptions) { o.userID = "" },
			expected: auth.ErrMissingUserID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultTokenOptions()
			tt.mutate(&opts)

			claims, err := svc.ValidateAccessToken(signToken(t, opts))

			assert.ErrorIs(t, err, tt.expected)
			assert.Nil(t, claims)
		})
	}
}

func TestValidateAccessTokenGarbage(t *testing.T) {
	svc := newTestService()

	claims, err := svc.ValidateAccessToken("not.a.token")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestClaimsUUIDAccessors(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	claims := &auth.Claims{TenantID: tenantID.String(), UserID: userID.String()}

	gotTenant, err := claims.GetTenantUUID()
	require.NoError(t, err)
	assert.Equal(t, tenantID, gotTenant)

	gotUser, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, gotUser)
}

func TestClaimsUUIDAccessorsInvalid(t *testing.T) {
	claims := &auth.Claims{TenantID: "not-a-uuid", UserID: "also-not"}

	_, err := claims.GetTenantUUID()
	assert.Error(t, err)

	_, err = claims.GetUserUUID()
	assert.Error(t, err)
}

func TestClaimsRemainingTTL(t *testing.T) {
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(10 * time.Minute)),
		},
	}
	assert.Greater(t, claims.GetRemainingTTL(), 9*time.Minute)

	expired := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	assert.Equal(t, time.Duration(0), expired.GetRemainingTTL())

	noExpiry := &auth.Claims{}
	assert.Equal(t, time.Duration(0), noExpiry.GetRemainingTTL())
}

func TestClaimsIssuedAtTime(t *testing.T) {
	issued := time.Now().Truncate(time.Second)
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(issued),
		},
	}
	assert.Equal(t, issued.Unix(), claims.GetIssuedAtTime().Unix())

	assert.True(t, (&auth.Claims{}).GetIssuedAtTime().IsZero())
}
