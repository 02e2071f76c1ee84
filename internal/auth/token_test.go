package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(AgentTokenPrefix)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "agt_"))
	assert.Len(t, token, 4+43) // "agt_" + 32 bytes raw base64url

	other, err := GenerateToken(AgentTokenPrefix)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestLookupKey(t *testing.T) {
	key := LookupKey("adm_example")
	assert.Len(t, key, 64)
	assert.Equal(t, key, LookupKey("adm_example"))
	assert.NotEqual(t, key, LookupKey("adm_example2"))
}

func TestHashToken(t *testing.T) {
	token := "agt_testtoken"

	hash, err := HashToken(token)
	require.NoError(t, err)
	assert.NotEqual(t, token, hash)
	assert.Equal(t, "$2a$", hash[:4])
}

func TestCheckToken(t *testing.T) {
	token := "adm_correcttoken"

	hash, err := HashToken(token)
	require.NoError(t, err)

	assert.True(t, CheckToken(token, hash))
	assert.False(t, CheckToken("adm_wrongtoken", hash))
	assert.False(t, CheckToken("", hash))
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, hasPrefix("agt_x", AgentTokenPrefix))
	assert.False(t, hasPrefix("agt_", AgentTokenPrefix))
	assert.False(t, hasPrefix("adm_x", AgentTokenPrefix))
}
