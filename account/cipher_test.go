package account

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipherRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	c, err := NewCipher(key)
	require.NoError(t, err)

	plain := []byte(`{"access_token":"ya29.secret","refresh_token":"1//refresh"}`)
	sealed, err := c.Seal(plain)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "ya29.secret")

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plain, opened)
}

func TestCipherRejectsBadKey(t *testing.T) {
	_, err := NewCipher([]byte("short"))
	assert.Error(t, err)
}

func TestCipherRejectsTamperedBlob(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	c, err := NewCipher(key)
	require.NoError(t, err)

	sealed, err := c.Seal([]byte("credentials"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff

	_, err = c.Open(sealed)
	assert.Error(t, err)

	_, err = c.Open([]byte("too short"))
	assert.Error(t, err)
}

func TestCipherRejectsWrongKey(t *testing.T) {
	c1, err := NewCipher(bytes.Repeat([]byte{0x01}, 32))
	require.NoError(t, err)
	c2, err := NewCipher(bytes.Repeat([]byte{0x02}, 32))
	require.NoError(t, err)

	sealed, err := c1.Seal([]byte("credentials"))
	require.NoError(t, err)
	_, err = c2.Open(sealed)
	assert.Error(t, err)
}
