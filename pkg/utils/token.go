package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// ShareTokenBytes is the entropy of a public share token (128 bits).
const ShareTokenBytes = 16

// GenerateShareToken returns a random URL-safe token without padding.
func GenerateShareToken() (string, error) {
	buf := make([]byte, ShareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
