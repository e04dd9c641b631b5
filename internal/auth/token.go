package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenMalformed indicates the token string is not a decodable JWT.
	ErrTokenMalformed = errors.New("token is malformed")
	// ErrTokenExpired indicates the token's exp claim is in the past.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid indicates the signature does not match the current secret.
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims carries the registered claims plus the subject email.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Service issues and verifies HS256 bearer tokens. The secret is
// process-wide; rotating it invalidates every outstanding token.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret []byte, ttl time.Duration) *Service {
	return &Service{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for the given email, valid for the configured TTL.
func (s *Service) Issue(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now().Add(s.ttl)),
		},
		Email: email,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string and returns the subject
// email. Failures are reported through the package sentinels so callers
// can distinguish malformed, expired and forged tokens.
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrTokenInvalid
		default:
			return "", fmt.Errorf("%w: %s", ErrTokenInvalid, err)
		}
	}

	if !token.Valid || claims.Email == "" {
		return "", ErrTokenInvalid
	}
	return claims.Email, nil
}
