package helpers

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AssertionManager signs and verifies identity assertions issued by a trusted
// federated identity provider.
type AssertionManager struct {
	Issuer string
	Secret []byte
	TTL    time.Duration
}

func NewAssertionManager(issuer, secret string, ttl time.Duration) *AssertionManager {
	return &AssertionManager{Issuer: issuer, Secret: []byte(secret), TTL: ttl}
}

type AssertionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Sign issues an assertion for email. Used by the seeding tool and tests to
// stand in for the external provider.
func (m *AssertionManager) Sign(email, name string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.TTL)
	claims := &AssertionClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Verify checks signature, expiry and issuer and returns the asserted claims.
func (m *AssertionManager) Verify(tokenStr string) (*AssertionClaims, error) {
	if len(m.Secret) == 0 {
		return nil, errors.New("assertion secret not configured")
	}
	claims := &AssertionClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	}, jwt.WithIssuer(m.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid assertion")
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, errors.New("assertion has no email")
	}
	return claims, nil
}
