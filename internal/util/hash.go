package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPrompt returns the hex SHA-256 of a prompt. Prompts are never stored in clear.
func HashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
