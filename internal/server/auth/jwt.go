package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinKeyLength is the smallest HMAC key accepted by NewJWTService.
const MinKeyLength = 32

// JWTService mints and verifies HS256 bearer tokens whose subject is the
// username. A token is valid only when its signature verifies under the
// service key and iat <= now < exp.
type JWTService struct {
	key      []byte
	issuer   string
	validity time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

// JWTOption customises a JWTService.
type JWTOption func(*JWTService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) JWTOption {
	return func(s *JWTService) { s.now = now }
}

// NewJWTService returns a service signing with key. The key is copied.
func NewJWTService(key []byte, issuer string, validity time.Duration, opts ...JWTOption) (*JWTService, error) {
	if len(key) < MinKeyLength {
		return nil, fmt.Errorf("signing key must be at least %d bytes", MinKeyLength)
	}
	if validity <= 0 {
		return nil, errors.New("token validity must be positive")
	}

	s := &JWTService{
		key:      append([]byte(nil), key...),
		issuer:   issuer,
		validity: validity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	}
	if issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(issuer))
	}
	s.parser = jwt.NewParser(parserOpts...)

	return s, nil
}

// GenerateToken issues a token for subject valid for the configured window.
func (s *JWTService) GenerateToken(subject string) (string, error) {
	now := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		ID:        uuid.NewString(),
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// VerifyToken returns the subject of a valid token. Failures are reported as
// common.ErrInvalidSignature (bad signature or algorithm),
// common.ErrTokenExpired, or common.ErrMalformedToken for everything else,
// including tokens that are not valid yet.
func (s *JWTService) VerifyToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := s.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return "", common.ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", common.ErrTokenExpired
		default:
			return "", common.ErrMalformedToken
		}
	}

	if claims.Subject == "" {
		return "", common.ErrMalformedToken
	}

	return claims.Subject, nil
}
