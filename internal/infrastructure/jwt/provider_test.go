package jwtinfra

import (
	"errors"
	"testing"
	"time"

	"github.com/go-identity-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_EmptySecret(t *testing.T) {
	_, err := NewProvider("", time.Hour)
	require.Error(t, err)
}

func TestNewProvider_NonPositiveExpiry(t *testing.T) {
	_, err := NewProvider("secret", 0)
	require.Error(t, err)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	p, err := NewProvider("secret", time.Hour)
	require.NoError(t, err)

	phone := "5550001"
	token, err := p.Sign(7, "Ana", &phone)
	require.NoError(t, err)

	claims, err := p.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, "5550001", claims.Phone)
}

func TestSign_NilPhoneOmitted(t *testing.T) {
	p, err := NewProvider("secret", time.Hour)
	require.NoError(t, err)

	token, err := p.Sign(7, "Ana", nil)
	require.NoError(t, err)

	claims, err := p.Verify(token)
	require.NoError(t, err)
	assert.Empty(t, claims.Phone)
}

func TestVerify_FailuresCollapse(t *testing.T) {
	p, err := NewProvider("secret", time.Hour)
	require.NoError(t, err)

	expiredP, err := NewProvider("secret", time.Nanosecond)
	require.NoError(t, err)
	expired, err := expiredP.Sign(1, "Ana", nil)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	otherP, err := NewProvider("other", time.Hour)
	require.NoError(t, err)
	badSig, err := otherP.Sign(1, "Ana", nil)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"malformed":     "not-a-token",
		"expired":       expired,
		"bad signature": badSig,
	} {
		_, err := p.Verify(token)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, domain.ErrUnauthorized), name)
		assert.Equal(t, "invalid or expired token: unauthorized", err.Error(), name)
	}
}
