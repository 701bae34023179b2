package token

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewJWTManager("secret", 1)
	tok, err := m.GenerateToken("session-1")
	require.NoError(t, err)

	claims, err := m.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	tok, err := NewJWTManager("one", 1).GenerateToken("s")
	require.NoError(t, err)
	_, err = NewJWTManager("two", 1).VerifyToken(tok)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewJWTManager("secret", 1).VerifyToken("not-a-jwt")
	assert.Error(t, err)
}

func TestMockIdentityToken(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	tok := MockIdentityToken("reg", now)
	require.True(t, strings.HasPrefix(tok, "reg-token-"))
	n, err := strconv.ParseInt(strings.TrimPrefix(tok, "reg-token-"), 36, 64)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), n)
}
