package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pulse-crm/crm-api/internal/auth"
	"github.com/pulse-crm/crm-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret: testSecret,
		Issuer:    "https://id.pulse.test",
		Audience:  "authenticated",
		ClockSkew: 30,
	}
}

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func validClaims(sub string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   sub,
		"iss":   "https://id.pulse.test",
		"aud":   "authenticated",
		"email": "ann@example.com",
		"name":  "Ann",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
}

func TestJWTValidator_ValidateToken(t *testing.T) {
	v := auth.NewJWTValidator(testAuthConfig())

	claims, err := v.ValidateToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("user-1")))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.Equal(t, "Ann", claims.Name)
}

func TestJWTValidator_Rejects(t *testing.T) {
	v := auth.NewJWTValidator(testAuthConfig())

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				return signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims("u"))
			},
			wantErr: auth.ErrInvalidToken,
		},
		{
			name: "expired beyond leeway",
			token: func(t *testing.T) string {
				c := validClaims("u")
				c["exp"] = time.Now().Add(-time.Hour).Unix()
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: auth.ErrExpiredToken,
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				c := validClaims("u")
				delete(c, "exp")
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: auth.ErrInvalidToken,
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				c := validClaims("u")
				c["iss"] = "https://evil.test"
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: auth.ErrInvalidToken,
		},
		{
			name: "wrong audience",
			token: func(t *testing.T) string {
				c := validClaims("u")
				c["aud"] = "someone-else"
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: auth.ErrInvalidToken,
		},
		{
			name: "other algorithm",
			token: func(t *testing.T) string {
				return signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims("u"))
			},
			wantErr: auth.ErrInvalidToken,
		},
		{
			name: "no subject",
			token: func(t *testing.T) string {
				c := validClaims("u")
				delete(c, "sub")
				return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c)
			},
			wantErr: auth.ErrMissingSub,
		},
		{
			name:    "garbage",
			token:   func(*testing.T) string { return "not.a.jwt" },
			wantErr: auth.ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateToken(tt.token(t))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJWTValidator_Leeway(t *testing.T) {
	v := auth.NewJWTValidator(testAuthConfig())
	c := validClaims("u")
	c["exp"] = time.Now().Add(-10 * time.Second).Unix()

	_, err := v.ValidateToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c))
	assert.NoError(t, err, "expiry within clock skew is accepted")
}

func TestJWTValidator_NoSecret(t *testing.T) {
	v := auth.NewJWTValidator(&config.AuthConfig{})
	_, err := v.ValidateToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("u")))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
