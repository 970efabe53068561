package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestSize is the length of a hex digest in characters.
const DigestSize = sha256.Size * 2

// Digest returns the lowercase hex SHA-256 of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DigestString is Digest for string input.
func DigestString(s string) string {
	return Digest([]byte(s))
}
