package auth

import (
	"errors"
	"os"
	"time"

	domain "github.com/example/task-assistant/domain/user"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a credential cannot be verified.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a credential has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// tokenKind separates the two token roles so a refresh token can never be
// presented as an access credential and vice versa.
type tokenKind string

const (
	kindAccess  tokenKind = "access"
	kindRefresh tokenKind = "refresh"
)

// TokenConfig holds signing material and lifetimes for issued credentials.
type TokenConfig struct {
	SecretKey  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// LoadTokenConfig builds the token configuration from the environment,
// falling back to development defaults.
func LoadTokenConfig() TokenConfig {
	config := TokenConfig{
		SecretKey:  "dev-secret-change-in-production",
		AccessTTL:  24 * time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
		Issuer:     "task-assistant",
	}
	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		config.Issuer = v
	}
	if v := os.Getenv("JWT_ACCESS_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			config.AccessTTL = d
		}
	}
	if v := os.Getenv("JWT_REFRESH_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			config.RefreshTTL = d
		}
	}
	return config
}

// tokenClaims is the on-the-wire claim set. Kind decides which verify path
// accepts the token.
type tokenClaims struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	Kind   tokenKind `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies the bearer credentials the rest of the
// system treats as opaque.
type TokenIssuer struct {
	config TokenConfig
}

// NewTokenIssuer creates a TokenIssuer with the given configuration.
func NewTokenIssuer(config TokenConfig) *TokenIssuer {
	return &TokenIssuer{config: config}
}

// IssuePair mints an access/refresh token pair for the given identity.
func (t *TokenIssuer) IssuePair(userID, email string) (*domain.TokenPair, error) {
	access, err := t.sign(userID, email, kindAccess, t.config.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := t.sign(userID, email, kindRefresh, t.config.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(t.config.AccessTTL.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

func (t *TokenIssuer) sign(userID, email string, kind tokenKind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID: userID,
		Email:  email,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.config.SecretKey))
}

// VerifyAccess verifies an access credential and resolves the owning
// identity. Refresh tokens are rejected.
func (t *TokenIssuer) VerifyAccess(token string) (*domain.Claims, error) {
	return t.verify(token, kindAccess)
}

// VerifyRefresh verifies a refresh credential. Access tokens are rejected.
func (t *TokenIssuer) VerifyRefresh(token string) (*domain.Claims, error) {
	return t.verify(token, kindRefresh)
}

func (t *TokenIssuer) verify(token string, kind tokenKind) (*domain.Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(t.config.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid || claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	return &domain.Claims{UserID: claims.UserID, Email: claims.Email}, nil
}
