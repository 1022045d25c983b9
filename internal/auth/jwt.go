package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access from refresh tokens inside the claims.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims is the payload of both access and refresh tokens.
type Claims struct {
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	TokenType TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// Subject is the minimal identity a token is issued for.
type Subject struct {
	ID    string
	Email string
	Roles []string
}

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenManager issues and verifies HS256 JWTs.
type TokenManager struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("jwt: access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("jwt: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("jwt: token lifetimes must be positive")
	}
	return &TokenManager{cfg: cfg, now: time.Now}, nil
}

// WithClock replaces the time source. Used by tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	cp := *m
	cp.now = now
	return &cp
}

func (m *TokenManager) AccessTTL() time.Duration {
	return m.cfg.AccessTTL
}

func (m *TokenManager) IssueAccessToken(s Subject) (string, error) {
	return m.issue(s, TokenTypeAccess, m.cfg.AccessSecret, m.cfg.AccessTTL)
}

func (m *TokenManager) IssueRefreshToken(s Subject) (string, error) {
	return m.issue(s, TokenTypeRefresh, m.cfg.RefreshSecret, m.cfg.RefreshTTL)
}

func (m *TokenManager) VerifyAccessToken(token string) (*Claims, error) {
	return m.verify(token, TokenTypeAccess, m.cfg.AccessSecret)
}

func (m *TokenManager) VerifyRefreshToken(token string) (*Claims, error) {
	return m.verify(token, TokenTypeRefresh, m.cfg.RefreshSecret)
}

func (m *TokenManager) issue(s Subject, typ TokenType, secret string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		Email:     s.Email,
		Roles:     s.Roles,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.ID,
			Issuer:    m.cfg.Issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (m *TokenManager) verify(token string, want TokenType, secret string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.cfg.Issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid || claims.TokenType != want || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
