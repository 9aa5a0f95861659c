package video

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims for a call token. The video provider only needs the user_id
// claim plus standard expiry; everything else about the call transport
// is its problem.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	apiKey string
	secret []byte
	ttl    time.Duration
}

var ErrNotConfigured = errors.New("video provider credentials not configured")

func NewTokenManager(apiKey, apiSecret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &TokenManager{
		apiKey: apiKey,
		secret: []byte(apiSecret),
		ttl:    ttl,
	}
}

func (m *TokenManager) APIKey() string {
	return m.apiKey
}

func (m *TokenManager) GenerateCallToken(externalID string) (token string, expiresAt time.Time, err error) {
	if m.apiKey == "" || len(m.secret) == 0 {
		err = ErrNotConfigured
		return
	}

	now := time.Now().UTC()
	expiresAt = now.Add(m.ttl)

	claims := Claims{
		UserID: externalID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   externalID,
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	token, err = t.SignedString(m.secret)

	return
}

func (m *TokenManager) ParseAndValidate(tokenStr string) (claims *Claims, err error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return
	}
	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		err = errors.New("invalid token")
		return
	}
	return
}
