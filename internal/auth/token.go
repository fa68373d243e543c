package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"droneWatch/models"
)

// TokenTTL is how long an issued session token stays valid. Verification is
// stateless, so a leaked token remains usable until it expires.
const TokenTTL = 7 * 24 * time.Hour

var (
	// ErrNoSecret means the service was constructed without a signing secret.
	ErrNoSecret = errors.New("token signing secret is not configured")
	// ErrInvalidToken covers absent, malformed, tampered and expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Principal identifies the account behind a verified session token.
type Principal struct {
	AccountID string
	Role      models.Role
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed session tokens. The signing secret
// is injected once at construction and never read from the environment per
// call.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue returns a signed HS256 token carrying the account id and role,
// expiring TokenTTL from now.
func (s *TokenService) Issue(accountID string, role models.Role) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := sessionClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify validates the signature and expiry and returns the embedded
// principal. Any failure surfaces as ErrInvalidToken; callers don't learn
// why a token was rejected.
func (s *TokenService) Verify(tokenStr string) (*Principal, error) {
	if len(s.secret) == 0 {
		return nil, ErrNoSecret
	}
	if strings.TrimSpace(tokenStr) == "" {
		return nil, ErrInvalidToken
	}
	tok, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	c, ok := tok.Claims.(*sessionClaims)
	if !ok || c.Subject == "" || !models.Role(c.Role).Valid() {
		return nil, ErrInvalidToken
	}
	return &Principal{AccountID: c.Subject, Role: models.Role(c.Role)}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidToken
	}
	t := strings.TrimSpace(parts[1])
	if t == "" {
		return "", ErrInvalidToken
	}
	return t, nil
}
