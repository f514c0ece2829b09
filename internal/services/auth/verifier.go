package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// ErrInvalidToken is returned for any credential that does not verify:
// bad signature, wrong algorithm, expired, or missing user identity.
var ErrInvalidToken = errors.New("invalid ID token")

const (
	cacheTTL   = 5 * time.Minute
	cacheSweep = 10 * time.Minute
)

// Verifier turns a bearer credential into a trusted user identifier. It is
// constructed once at startup and handed to the middleware; nothing in this
// package keeps process-wide state.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// JWTVerifier validates HMAC-signed ID tokens.
type JWTVerifier struct {
	secret []byte
	cache  *gocache.Cache
	logger *logrus.Logger
}

// NewJWTVerifier creates a verifier from the shared signing secret
func NewJWTVerifier(secret string, logger *logrus.Logger) (*JWTVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}

	return &JWTVerifier{
		secret: []byte(secret),
		cache:  gocache.New(cacheTTL, cacheSweep),
		logger: logger,
	}, nil
}

// Verify parses and validates the token and returns the user ID it carries.
// Verified tokens are cached so repeated requests of the same session skip
// the parse; the cache entry never outlives the token's own expiry.
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (string, error) {
	if uid, found := v.cache.Get(tokenString); found {
		return uid.(string), nil
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		v.logger.WithError(err).Debug("Token verification failed")
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	uid := claimString(claims, "uid")
	if uid == "" {
		uid = claimString(claims, "sub")
	}
	if uid == "" {
		return "", ErrInvalidToken
	}

	ttl := cacheTTL
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		if remaining := time.Until(exp.Time); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl > 0 {
		v.cache.Set(tokenString, uid, ttl)
	}

	return uid, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
