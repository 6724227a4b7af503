package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateOpaqueSecret returns byteLength cryptographically random bytes as a
// hex string. It shares the random source with token ID generation but is not
// part of the signed-token trust chain; use it for one-time codes and other
// opaque secrets.
func GenerateOpaqueSecret(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", ErrInvalidSecretLength
	}

	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
