package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indicates a token that failed signature or structural checks.
var ErrInvalidToken = errors.New("jwt: invalid token")

// ErrExpiredToken indicates a token past its expiry.
var ErrExpiredToken = errors.New("jwt: token expired")

const defaultSessionTTL = 7 * 24 * time.Hour

// SessionClaims carries the marketplace session context inside the JWT.
type SessionClaims struct {
	UserID   string `json:"uid"`
	Email    string `json:"email"`
	IsSeller bool   `json:"is_seller"`
	jwt.RegisteredClaims
}

// TokenManager signs and parses HS256 session tokens with a single shared
// secret.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager constructs a TokenManager. TTL defaults to seven days.
func NewTokenManager(secret, issuer string, ttl time.Duration) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt: signing secret is required")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// TTL returns the configured session lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a session token for the supplied account.
func (m *TokenManager) Issue(userID, email string, isSeller bool) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("jwt: user id is required")
	}

	now := time.Now().UTC()
	claims := SessionClaims{
		UserID:   userID,
		Email:    email,
		IsSeller: isSeller,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// Parse validates a session token and returns its claims. Expiry maps to
// ErrExpiredToken; every other failure maps to ErrInvalidToken.
func (m *TokenManager) Parse(token string) (*SessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("jwt: unexpected signing method %s", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !parsed.Valid || strings.TrimSpace(claims.UserID) == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
