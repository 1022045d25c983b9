package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "studyzone",
	})
	require.NoError(t, err)
	return m
}

var testSubject = Subject{ID: "user-1", Email: "a@x.com", Roles: []string{"user", "mentor"}}

func TestNewTokenManager_RejectsBadConfig(t *testing.T) {
	_, err := NewTokenManager(TokenConfig{AccessSecret: "s", RefreshSecret: "s", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	assert.Error(t, err)

	_, err = NewTokenManager(TokenConfig{AccessSecret: "a", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	assert.Error(t, err)

	_, err = NewTokenManager(TokenConfig{AccessSecret: "a", RefreshSecret: "b", RefreshTTL: time.Hour})
	assert.Error(t, err)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	m := newTestManager(t)

	token, err := m.IssueAccessToken(testSubject)
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, []string{"user", "mentor"}, claims.Roles)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	m := newTestManager(t)

	refresh, err := m.IssueRefreshToken(testSubject)
	require.NoError(t, err)
	_, err = m.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, err := m.IssueAccessToken(testSubject)
	require.NoError(t, err)
	_, err = m.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := m.VerifyRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
}

func TestVerify_Expired(t *testing.T) {
	m := newTestManager(t)
	issuedAt := time.Now().Add(-time.Hour)

	token, err := m.WithClock(func() time.Time { return issuedAt }).IssueAccessToken(testSubject)
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerify_InvalidInputs(t *testing.T) {
	m := newTestManager(t)

	token, err := m.IssueAccessToken(testSubject)
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":      "not-a-jwt",
		"empty":        "",
		"tampered":     token[:len(token)-2] + "xx",
		"wrong secret": signWith(t, "other-secret", jwt.SigningMethodHS256, TokenTypeAccess),
		"wrong alg":    signWith(t, "access-secret", jwt.SigningMethodHS512, TokenTypeAccess),
		"missing typ":  signWith(t, "access-secret", jwt.SigningMethodHS256, ""),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.VerifyAccessToken(raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func signWith(t *testing.T, secret string, method jwt.SigningMethod, typ TokenType) string {
	t.Helper()
	now := time.Now()
	claims := Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "studyzone",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}
