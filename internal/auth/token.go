package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/crucial707/postboard/internal/clock"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single failure category of Validate: malformed,
// wrongly signed, signed with another algorithm, expired, or missing claims.
var ErrInvalidToken = errors.New("invalid token")

// tokenPrecision is the resolution of iat and exp. Whole seconds would let a
// token issued at a fractional second expire before issue time plus TTL.
const tokenPrecision = time.Millisecond

func init() {
	jwt.TimePrecision = tokenPrecision
}

// Claims is the payload of an access token.
type Claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService issues and validates stateless HMAC-signed access tokens.
// There is no revocation: expiry is the only way a token stops being valid.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	clock  clock.Clock
}

// NewTokenService builds a service for an HMAC algorithm (HS256, HS384, HS512).
// A nil clock means the real clock.
func NewTokenService(secret []byte, algorithm string, ttl time.Duration, c clock.Clock) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is empty")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	if c == nil {
		c = clock.NewReal()
	}
	return &TokenService{secret: secret, method: method, ttl: ttl, clock: c}, nil
}

// TTL is the default lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for userID that expires after the configured TTL.
func (s *TokenService) Issue(userID int) (string, error) {
	return s.IssueWithTTL(userID, s.ttl)
}

// IssueWithTTL signs a token for userID that expires at now+ttl.
func (s *TokenService) IssueWithTTL(userID int, ttl time.Duration) (string, error) {
	now := s.clock.Now().Truncate(tokenPrecision)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
}

// Validate returns the user id carried by a valid token, or ErrInvalidToken.
func (s *TokenService) Validate(tokenStr string) (int, error) {
	if tokenStr == "" {
		return 0, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}
