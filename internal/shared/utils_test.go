package shared

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomHex(t *testing.T) {
	a, err := RandomHex(32)
	require.NoError(t, err)
	assert.Len(t, a, 64)

	_, err = hex.DecodeString(a)
	require.NoError(t, err)

	b, err := RandomHex(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRandomHex_RejectsNonPositive(t *testing.T) {
	for _, n := range []int{0, -4} {
		_, err := RandomHex(n)
		assert.Error(t, err, "size %d", n)
	}
}

func TestWipe(t *testing.T) {
	b := []byte("bearer-token")
	Wipe(b)
	assert.Equal(t, make([]byte, len(b)), b)

	Wipe(nil)
}
