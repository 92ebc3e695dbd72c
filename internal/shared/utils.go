// Package shared holds small helpers used by both binaries: random secrets
// for signing keys and zeroing of token buffers read from a terminal.
package shared

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RandomHex returns n random bytes hex-encoded (2n characters).
func RandomHex(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("random hex: size must be positive, got %d", n)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("random hex: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Wipe zeroes b in place.
func Wipe(b []byte) {
	clear(b)
}
