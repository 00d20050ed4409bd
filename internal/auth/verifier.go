package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

type Claims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// ExpiresWithin reports whether the token is expired or will be within d.
func (c *Claims) ExpiresWithin(now time.Time, d time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return c.ExpiresAt.Sub(now) <= d
}

type keySetFunc func(ctx context.Context) (jwk.Set, error)

// TokenVerifier validates Cognito access tokens against the pool's JWKS.
type TokenVerifier struct {
	keys keySetFunc
}

// NewTokenVerifier registers the issuer's JWKS with an auto-refreshing cache.
func NewTokenVerifier(ctx context.Context, issuerURL string) (*TokenVerifier, error) {
	cache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", issuerURL)
	if err := cache.Register(ctx, jwksURL); err != nil {
		return nil, fmt.Errorf("failed to register jwks with cache: %w", err)
	}

	return &TokenVerifier{
		keys: func(ctx context.Context) (jwk.Set, error) {
			return cache.Lookup(ctx, jwksURL)
		},
	}, nil
}

// NewStaticTokenVerifier verifies against a fixed key set.
func NewStaticTokenVerifier(set jwk.Set) *TokenVerifier {
	return &TokenVerifier{
		keys: func(context.Context) (jwk.Set, error) { return set, nil },
	}
}

func (v *TokenVerifier) Verify(ctx context.Context, accessToken string) (*Claims, error) {
	if accessToken == "" {
		return nil, errors.New("empty access token")
	}

	set, err := v.keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(accessToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, errors.New("no subject claim in JWT")
	}

	claims := &Claims{Subject: subject}
	if exp, ok := token.Expiration(); ok {
		claims.ExpiresAt = exp
	}

	// email is optional, access tokens usually omit it
	_ = token.Get("email", &claims.Email)

	return claims, nil
}
