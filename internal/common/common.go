package common

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandomString returns 32 random bytes in hex.
func GenerateRandomString() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
