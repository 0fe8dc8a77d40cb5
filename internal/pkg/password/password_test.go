package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("s3cretpass")
	require.NoError(t, err)

	assert.True(t, Verify("s3cretpass", hash))
	assert.False(t, Verify("wrong", hash))
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("abcdef12"))
	assert.False(t, ValidatePassword("abc12"))
	assert.False(t, ValidatePassword("abcdefgh"))
	assert.False(t, ValidatePassword("12345678"))
}

func TestVerifyKey(t *testing.T) {
	raw, err := bcrypt.GenerateFromPassword([]byte("kiosk-key"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifyKey("kiosk-key", string(raw)))
	assert.False(t, VerifyKey("other", string(raw)))
	assert.False(t, VerifyKey("kiosk-key", ""))
	assert.False(t, VerifyKey("", string(raw)))
}

func TestHashTokenIsStable(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}
