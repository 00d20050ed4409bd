package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSigningKey(t *testing.T) (jwk.Key, jwk.Set) {
	t.Helper()

	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	key, err := jwk.Import(raw)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, "test-kid"))
	require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.RS256()))

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(key))

	public, err := jwk.PublicSetOf(set)
	require.NoError(t, err)

	return key, public
}

func signToken(t *testing.T, key jwk.Key, subject string, exp time.Time) string {
	t.Helper()

	tok, err := jwt.NewBuilder().
		Subject(subject).
		IssuedAt(time.Now().Add(-time.Minute)).
		Expiration(exp).
		Claim("email", "juan@example.com").
		Build()
	require.NoError(t, err)

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256(), key))
	require.NoError(t, err)

	return string(signed)
}

func TestTokenVerifier_Verify(t *testing.T) {
	key, set := testSigningKey(t)
	v := NewStaticTokenVerifier(set)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	claims, err := v.Verify(context.Background(), signToken(t, key, "user-1", exp))
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "juan@example.com", claims.Email)
	assert.WithinDuration(t, exp, claims.ExpiresAt, time.Second)
	assert.False(t, claims.ExpiresWithin(time.Now(), 5*time.Minute))
}

func TestTokenVerifier_RejectsExpired(t *testing.T) {
	key, set := testSigningKey(t)
	v := NewStaticTokenVerifier(set)

	_, err := v.Verify(context.Background(), signToken(t, key, "user-1", time.Now().Add(-time.Hour)))
	assert.Error(t, err)
}

func TestTokenVerifier_RejectsForeignKey(t *testing.T) {
	foreign, _ := testSigningKey(t)
	_, set := testSigningKey(t)
	v := NewStaticTokenVerifier(set)

	_, err := v.Verify(context.Background(), signToken(t, foreign, "user-1", time.Now().Add(time.Hour)))
	assert.Error(t, err)
}

func TestTokenVerifier_RejectsGarbage(t *testing.T) {
	_, set := testSigningKey(t)
	v := NewStaticTokenVerifier(set)

	_, err := v.Verify(context.Background(), "not-a-jwt")
	assert.Error(t, err)

	_, err = v.Verify(context.Background(), "")
	assert.Error(t, err)
}

func TestClaims_ExpiresWithin(t *testing.T) {
	now := time.Now()
	c := &Claims{ExpiresAt: now.Add(2 * time.Minute)}
	assert.True(t, c.ExpiresWithin(now, 5*time.Minute))
	assert.False(t, c.ExpiresWithin(now, time.Minute))
	assert.False(t, (&Claims{}).ExpiresWithin(now, time.Hour))
}
