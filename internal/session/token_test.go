package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", 8)

	token, err := svc.Issue("admin")
	require.NoError(t, err)

	principal, ok := svc.Verify(token)
	require.True(t, ok)
	assert.Equal(t, "admin", principal)
}

func TestTokenExpiry(t *testing.T) {
	svc := NewTokenService("test-secret", 8)
	issued := time.Now()
	svc.now = func() time.Time { return issued }

	token, err := svc.Issue("admin")
	require.NoError(t, err)

	// still valid just before the TTL elapses
	svc.now = func() time.Time { return issued.Add(8*time.Hour - time.Minute) }
	_, ok := svc.Verify(token)
	assert.True(t, ok)

	// rejected once the encoded expiry has passed
	svc.now = func() time.Time { return issued.Add(8*time.Hour + time.Minute) }
	_, ok = svc.Verify(token)
	assert.False(t, ok)
}

func TestTokenTamperRejected(t *testing.T) {
	svc := NewTokenService("test-secret", 8)

	token, err := svc.Issue("admin")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// flip a bit in the signature segment
	sig := []byte(parts[2])
	sig[0] ^= 0x01
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, ok := svc.Verify(tampered)
	assert.False(t, ok)

	// tampering with the payload also invalidates the signature
	payload := []byte(parts[1])
	payload[0] ^= 0x01
	tampered = parts[0] + "." + string(payload) + "." + parts[2]
	_, ok = svc.Verify(tampered)
	assert.False(t, ok)
}

func TestVerifyMalformed(t *testing.T) {
	svc := NewTokenService("test-secret", 8)

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, ok := svc.Verify(tok)
		assert.False(t, ok, "token %q should not verify", tok)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-one", 8)
	verifier := NewTokenService("secret-two", 8)

	token, err := issuer.Issue("admin")
	require.NoError(t, err)

	_, ok := verifier.Verify(token)
	assert.False(t, ok)
}
