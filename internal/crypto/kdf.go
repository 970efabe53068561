package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	KeySize      = 16     // AES-128 key size
	DefaultIters = 210000 // PBKDF2 iterations for the pbkdf2 scheme
)

const (
	StaticSalt   = "notevault-static-salt"
	SchemeLegacy = "legacy"
	SchemePBKDF2 = "pbkdf2"
)

// KDF turns a verified credential into a symmetric key.
type KDF struct {
	Scheme     string
	Salt       []byte
	Iterations int
}

// NewKDF creates a KDF for the given scheme with the constant salt.
func NewKDF(scheme string, iterations int) (*KDF, error) {
	switch scheme {
	case "", SchemeLegacy:
		scheme = SchemeLegacy
	case SchemePBKDF2:
		if iterations <= 0 {
			iterations = DefaultIters
		}
	default:
		return nil, fmt.Errorf("unknown key derivation scheme %q", scheme)
	}
	return &KDF{
		Scheme:     scheme,
		Salt:       []byte(StaticSalt),
		Iterations: iterations,
	}, nil
}

// DeriveKey derives a KeySize key from secret. The result is deterministic:
// the same secret always yields the same key.
func (k *KDF) DeriveKey(secret []byte) []byte {
	if k.Scheme == SchemePBKDF2 {
		return pbkdf2.Key(secret, k.Salt, k.Iterations, KeySize, sha256.New)
	}

	salted := make([]byte, 0, len(secret)+len(k.Salt))
	salted = append(salted, secret...)
	salted = append(salted, k.Salt...)
	defer ClearBytes(salted)

	// First half of the hex digest is the key material.
	digest := Digest(salted)
	key, _ := hex.DecodeString(digest[:KeySize*2])
	return key
}
